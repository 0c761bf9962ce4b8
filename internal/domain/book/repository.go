package book

import (
	"context"
)

// Repository 图书目录存储
// 单条记录的写操作是原子的，跨表没有事务
type Repository interface {
	// List 按QuerySpec过滤并排序，过滤条件之间为AND
	List(ctx context.Context, spec QuerySpec) ([]*Book, error)

	// FindByID 不存在时返回ErrBookNotFound
	FindByID(ctx context.Context, id string) (*Book, error)

	// Insert 生成新ID并写入，返回ID
	Insert(ctx context.Context, b *Book) (string, error)

	// Update 部分更新，返回受影响行数(0或1)，不会upsert
	Update(ctx context.Context, id string, patch Patch) (int64, error)

	// Delete 返回删除行数(0或1)
	Delete(ctx context.Context, id string) (int64, error)
}
