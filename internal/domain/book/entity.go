package book

import (
	"math"
	"strings"
	"unicode/utf8"
)

// Genre 图书类型
type Genre string

const (
	GenreFiction        Genre = "Fiction"
	GenreMagicalRealism Genre = "Magical Realism"
	GenreDystopian      Genre = "Dystopian"
	GenreMystery        Genre = "Mystery"
	GenreYoungAdult     Genre = "Young Adult"
	GenreNonFiction     Genre = "Non-Fiction"
)

// Genres 全部合法类型
var Genres = []Genre{
	GenreFiction,
	GenreMagicalRealism,
	GenreDystopian,
	GenreMystery,
	GenreYoungAdult,
	GenreNonFiction,
}

// Valid 是否为合法类型
func (g Genre) Valid() bool {
	for _, v := range Genres {
		if g == v {
			return true
		}
	}
	return false
}

const (
	MinISBNLength      = 14
	MaxISBNLength      = 32 // 与isbn列宽一致
	MinPublicationYear = 1900
	MaxPublicationYear = 2023
)

// Book 目录中的一本书
// ID由存储层生成，创建后不可变
type Book struct {
	ID              string  `json:"id"`
	ISBN            string  `json:"isbn"`
	Title           string  `json:"title"`
	Author          string  `json:"author"`
	Genre           Genre   `json:"genre"`
	PublicationYear int     `json:"publication_year"`
	Price           float64 `json:"price"`
	Description     string  `json:"description"`
}

// Validate 校验新建图书的全部字段
func (b *Book) Validate() error {
	if err := validateISBN(b.ISBN); err != nil {
		return err
	}
	if err := validateText("title", b.Title); err != nil {
		return err
	}
	if err := validateText("author", b.Author); err != nil {
		return err
	}
	if err := validateGenre(b.Genre); err != nil {
		return err
	}
	if err := validateYear(b.PublicationYear); err != nil {
		return err
	}
	if err := validatePrice(b.Price); err != nil {
		return err
	}
	return validateText("description", b.Description)
}

// Patch 部分更新，nil字段保持不变
type Patch struct {
	ISBN            *string
	Title           *string
	Author          *string
	Genre           *Genre
	PublicationYear *int
	Price           *float64
	Description     *string
}

// IsEmpty 没有任何字段需要更新
func (p Patch) IsEmpty() bool {
	return p.ISBN == nil && p.Title == nil && p.Author == nil && p.Genre == nil &&
		p.PublicationYear == nil && p.Price == nil && p.Description == nil
}

// Validate 只校验提交了的字段
func (p Patch) Validate() error {
	if p.ISBN != nil {
		if err := validateISBN(*p.ISBN); err != nil {
			return err
		}
	}
	if p.Title != nil {
		if err := validateText("title", *p.Title); err != nil {
			return err
		}
	}
	if p.Author != nil {
		if err := validateText("author", *p.Author); err != nil {
			return err
		}
	}
	if p.Genre != nil {
		if err := validateGenre(*p.Genre); err != nil {
			return err
		}
	}
	if p.PublicationYear != nil {
		if err := validateYear(*p.PublicationYear); err != nil {
			return err
		}
	}
	if p.Price != nil {
		if err := validatePrice(*p.Price); err != nil {
			return err
		}
	}
	if p.Description != nil {
		return validateText("description", *p.Description)
	}
	return nil
}

// Apply 把Patch应用到副本上并返回
func (p Patch) Apply(b Book) Book {
	if p.ISBN != nil {
		b.ISBN = *p.ISBN
	}
	if p.Title != nil {
		b.Title = *p.Title
	}
	if p.Author != nil {
		b.Author = *p.Author
	}
	if p.Genre != nil {
		b.Genre = *p.Genre
	}
	if p.PublicationYear != nil {
		b.PublicationYear = *p.PublicationYear
	}
	if p.Price != nil {
		b.Price = *p.Price
	}
	if p.Description != nil {
		b.Description = *p.Description
	}
	return b
}

func validateISBN(isbn string) error {
	n := utf8.RuneCountInString(strings.TrimSpace(isbn))
	if n < MinISBNLength || n > MaxISBNLength {
		return ErrInvalidISBN
	}
	return nil
}

func validateText(field, v string) error {
	if strings.TrimSpace(v) == "" {
		return invalidField(field, "must not be empty")
	}
	return nil
}

func validateGenre(g Genre) error {
	if !g.Valid() {
		return ErrInvalidGenre
	}
	return nil
}

func validateYear(y int) error {
	if y < MinPublicationYear || y > MaxPublicationYear {
		return ErrInvalidPublicationYear
	}
	return nil
}

func validatePrice(p float64) error {
	if math.IsNaN(p) || math.IsInf(p, 0) || p < 0 {
		return ErrInvalidPrice
	}
	return nil
}
