package mysql

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

// bookRepository 图书目录存储(MySQL)
// 负责领域实体与GORM模型之间的转换
type bookRepository struct {
	db *gorm.DB
}

// NewBookRepository 创建图书仓储
func NewBookRepository(db *gorm.DB) book.Repository {
	return &bookRepository{db: db}
}

// List 过滤条件之间AND，排序相同时按ID升序
func (r *bookRepository) List(ctx context.Context, spec book.QuerySpec) ([]*book.Book, error) {
	sort := spec.Sort
	if sort.Field == "" {
		sort = book.DefaultSort
	}

	query := applyFilter(r.db.WithContext(ctx).Model(&BookModel{}), spec.Filter)
	query = query.
		Order(clause.OrderByColumn{
			Column: clause.Column{Name: string(sort.Field)},
			Desc:   sort.Direction == book.Desc,
		}).
		Order("id ASC")

	var models []BookModel
	if err := query.Find(&models).Error; err != nil {
		return nil, apperrors.Persistence(err, "failed to list books")
	}

	books := make([]*book.Book, len(models))
	for i := range models {
		books[i] = toBookEntity(&models[i])
	}
	return books, nil
}

func applyFilter(query *gorm.DB, f book.Filter) *gorm.DB {
	if len(f.Terms) > 0 {
		var (
			conds []string
			args  []interface{}
		)
		for _, term := range f.Terms {
			p := containsPattern(term)
			conds = append(conds, "(LOWER(title) LIKE ? ESCAPE '!' OR LOWER(author) LIKE ? ESCAPE '!' OR LOWER(description) LIKE ? ESCAPE '!')")
			args = append(args, p, p, p)
		}
		query = query.Where("("+strings.Join(conds, " OR ")+")", args...)
	}
	if f.Genre != nil {
		query = query.Where("genre = ?", *f.Genre)
	}
	if f.MinPrice != nil {
		query = query.Where("price >= ?", *f.MinPrice)
	}
	if f.MaxPrice != nil {
		query = query.Where("price <= ?", *f.MaxPrice)
	}
	return query
}

// FindByID 根据ID查找图书
func (r *bookRepository) FindByID(ctx context.Context, id string) (*book.Book, error) {
	if !validID(id) {
		return nil, book.NotFound(id)
	}

	var model BookModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, book.NotFound(id)
		}
		return nil, apperrors.Persistence(err, "failed to get book")
	}
	return toBookEntity(&model), nil
}

// Insert 校验后写入，ID由存储层生成
func (r *bookRepository) Insert(ctx context.Context, b *book.Book) (string, error) {
	if err := b.Validate(); err != nil {
		return "", err
	}

	model := toBookModel(b)
	model.ID = uuid.NewString()

	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		return "", apperrors.Persistence(result.Error, "failed to add book")
	}
	if result.RowsAffected != 1 {
		return "", book.ErrBookNotModified
	}
	return model.ID, nil
}

// Update 只更新Patch中提交的字段，空Patch不访问数据库
func (r *bookRepository) Update(ctx context.Context, id string, patch book.Patch) (int64, error) {
	if !validID(id) || patch.IsEmpty() {
		return 0, nil
	}
	if err := patch.Validate(); err != nil {
		return 0, err
	}

	result := r.db.WithContext(ctx).
		Model(&BookModel{}).
		Where("id = ?", id).
		Updates(patchColumns(patch))
	if result.Error != nil {
		return 0, apperrors.Persistence(result.Error, "failed to update book")
	}
	return result.RowsAffected, nil
}

// Delete 物理删除
func (r *bookRepository) Delete(ctx context.Context, id string) (int64, error) {
	if !validID(id) {
		return 0, nil
	}

	result := r.db.WithContext(ctx).Where("id = ?", id).Delete(&BookModel{})
	if result.Error != nil {
		return 0, apperrors.Persistence(result.Error, "failed to delete book")
	}
	return result.RowsAffected, nil
}

func patchColumns(p book.Patch) map[string]interface{} {
	cols := make(map[string]interface{}, 7)
	if p.ISBN != nil {
		cols["isbn"] = *p.ISBN
	}
	if p.Title != nil {
		cols["title"] = *p.Title
	}
	if p.Author != nil {
		cols["author"] = *p.Author
	}
	if p.Genre != nil {
		cols["genre"] = string(*p.Genre)
	}
	if p.PublicationYear != nil {
		cols["publication_year"] = *p.PublicationYear
	}
	if p.Price != nil {
		cols["price"] = *p.Price
	}
	if p.Description != nil {
		cols["description"] = *p.Description
	}
	return cols
}

// =========================================
// 辅助函数:模型转换
// =========================================

func toBookModel(b *book.Book) *BookModel {
	return &BookModel{
		ID:              b.ID,
		ISBN:            b.ISBN,
		Title:           b.Title,
		Author:          b.Author,
		Genre:           string(b.Genre),
		PublicationYear: b.PublicationYear,
		Price:           b.Price,
		Description:     b.Description,
	}
}

func toBookEntity(m *BookModel) *book.Book {
	return &book.Book{
		ID:              m.ID,
		ISBN:            m.ISBN,
		Title:           m.Title,
		Author:          m.Author,
		Genre:           book.Genre(m.Genre),
		PublicationYear: m.PublicationYear,
		Price:           m.Price,
		Description:     m.Description,
	}
}
