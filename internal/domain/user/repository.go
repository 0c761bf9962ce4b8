package user

import (
	"context"
)

// Repository 用户仓储接口
type Repository interface {
	// Create 邮箱重复时返回ErrEmailDuplicate
	Create(ctx context.Context, user *User) error

	FindByID(ctx context.Context, id string) (*User, error)

	FindByEmail(ctx context.Context, email string) (*User, error)
}
