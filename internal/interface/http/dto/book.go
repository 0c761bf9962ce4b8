package dto

import (
	"github.com/xiebiao/bookcatalog/internal/domain/book"
)

// AddBookRequest 新增图书请求，所有字段必填
// genre的oneof列表与book.Genres保持一致
type AddBookRequest struct {
	ISBN            string     `json:"isbn" binding:"required,max=32" example:"978-0451524935"`
	Title           string     `json:"title" binding:"required,max=255" example:"1984"`
	Author          string     `json:"author" binding:"required,max=255" example:"George Orwell"`
	Genre           string     `json:"genre" binding:"required,oneof='Fiction' 'Magical Realism' 'Dystopian' 'Mystery' 'Young Adult' 'Non-Fiction'" example:"Dystopian"`
	PublicationYear FlexInt    `json:"publication_year" binding:"required,min=1900,max=2023" example:"1949"`
	Price           *FlexFloat `json:"price" binding:"required,min=0" example:"9.99"`
	Description     string     `json:"description" binding:"required" example:"A dystopian social science fiction novel"`
}

// ToEntity 转换为领域实体
func (r *AddBookRequest) ToEntity() *book.Book {
	b := &book.Book{
		ISBN:            r.ISBN,
		Title:           r.Title,
		Author:          r.Author,
		Genre:           book.Genre(r.Genre),
		PublicationYear: int(r.PublicationYear),
		Description:     r.Description,
	}
	if r.Price != nil {
		b.Price = float64(*r.Price)
	}
	return b
}

// UpdateBookRequest 部分更新请求，未提交的字段保持不变
type UpdateBookRequest struct {
	ISBN            *string    `json:"isbn" binding:"omitempty,min=1,max=32"`
	Title           *string    `json:"title" binding:"omitempty,min=1,max=255"`
	Author          *string    `json:"author" binding:"omitempty,min=1,max=255"`
	Genre           *string    `json:"genre" binding:"omitempty,oneof='Fiction' 'Magical Realism' 'Dystopian' 'Mystery' 'Young Adult' 'Non-Fiction'"`
	PublicationYear *FlexInt   `json:"publication_year" binding:"omitempty,min=1900,max=2023"`
	Price           *FlexFloat `json:"price" binding:"omitempty,min=0"`
	Description     *string    `json:"description" binding:"omitempty,min=1"`
}

// ToPatch 转换为领域Patch
func (r *UpdateBookRequest) ToPatch() book.Patch {
	p := book.Patch{
		ISBN:        r.ISBN,
		Title:       r.Title,
		Author:      r.Author,
		Description: r.Description,
	}
	if r.Genre != nil {
		g := book.Genre(*r.Genre)
		p.Genre = &g
	}
	if r.PublicationYear != nil {
		y := int(*r.PublicationYear)
		p.PublicationYear = &y
	}
	if r.Price != nil {
		v := float64(*r.Price)
		p.Price = &v
	}
	return p
}

// ListBooksQuery 检索参数，全部可选，无法解析的值按未传处理
type ListBooksQuery struct {
	Keywords string `form:"keywords" example:"orwell"`
	MinPrice string `form:"minPrice" example:"5"`
	MaxPrice string `form:"maxPrice" example:"20"`
	Genre    string `form:"genre" example:"Dystopian"`
	SortBy   string `form:"sortBy" example:"price_desc"`
}

// ToParams 转换为领域检索参数
func (q *ListBooksQuery) ToParams() book.SearchParams {
	return book.SearchParams{
		Keywords: q.Keywords,
		MinPrice: q.MinPrice,
		MaxPrice: q.MaxPrice,
		Genre:    q.Genre,
		SortBy:   q.SortBy,
	}
}

// BookEnvelope 单本图书响应
type BookEnvelope struct {
	Book *book.Book `json:"book"`
}
