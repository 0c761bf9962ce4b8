package book

import (
	"math"
	"strconv"
	"strings"
)

// SearchParams 列表接口的原始查询参数，全部可选
type SearchParams struct {
	Keywords string
	MinPrice string
	MaxPrice string
	Genre    string
	SortBy   string
}

// SortField 可排序字段（对应存储列名）
type SortField string

const (
	SortByAuthor          SortField = "author"
	SortByTitle           SortField = "title"
	SortByGenre           SortField = "genre"
	SortByPrice           SortField = "price"
	SortByPublicationYear SortField = "publication_year"
)

// Direction 排序方向
type Direction int

const (
	Asc Direction = iota
	Desc
)

// Sort 排序规则
type Sort struct {
	Field     SortField
	Direction Direction
}

// DefaultSort 作者升序
var DefaultSort = Sort{Field: SortByAuthor, Direction: Asc}

var sortKeys = map[string]Sort{
	"author":     {SortByAuthor, Asc},
	"title":      {SortByTitle, Asc},
	"genre":      {SortByGenre, Asc},
	"price":      {SortByPrice, Asc},
	"price_desc": {SortByPrice, Desc},
	"year":       {SortByPublicationYear, Asc},
	"year_desc":  {SortByPublicationYear, Desc},
}

// Filter 过滤条件，nil/空表示不过滤
type Filter struct {
	// Terms 关键词，任一词命中title/author/description即匹配
	Terms    []string
	Genre    *string
	MinPrice *float64
	MaxPrice *float64
}

// QuerySpec 解析后的过滤+排序
type QuerySpec struct {
	Filter Filter
	Sort   Sort
}

// BuildQuery 把原始参数转换成QuerySpec
// 不会失败：无法解析的价格区间等同于未传，min>max不交换
func BuildQuery(p SearchParams) QuerySpec {
	spec := QuerySpec{Sort: DefaultSort}

	if kw := strings.TrimSpace(p.Keywords); kw != "" {
		spec.Filter.Terms = strings.Fields(kw)
	}
	if g := strings.TrimSpace(p.Genre); g != "" {
		spec.Filter.Genre = &g
	}
	spec.Filter.MinPrice = parseBound(p.MinPrice)
	spec.Filter.MaxPrice = parseBound(p.MaxPrice)

	if s, ok := sortKeys[strings.ToLower(strings.TrimSpace(p.SortBy))]; ok {
		spec.Sort = s
	}
	return spec
}

func parseBound(raw string) *float64 {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

// IsEmpty 没有任何过滤条件
func (f Filter) IsEmpty() bool {
	return len(f.Terms) == 0 && f.Genre == nil && f.MinPrice == nil && f.MaxPrice == nil
}

// Matches 内存中判断一本书是否满足过滤条件
func (f Filter) Matches(b *Book) bool {
	if len(f.Terms) > 0 && !matchesAnyTerm(b, f.Terms) {
		return false
	}
	if f.Genre != nil && string(b.Genre) != *f.Genre {
		return false
	}
	if f.MinPrice != nil && b.Price < *f.MinPrice {
		return false
	}
	if f.MaxPrice != nil && b.Price > *f.MaxPrice {
		return false
	}
	return true
}

func matchesAnyTerm(b *Book, terms []string) bool {
	title := strings.ToLower(b.Title)
	author := strings.ToLower(b.Author)
	desc := strings.ToLower(b.Description)
	for _, t := range terms {
		t = strings.ToLower(t)
		if strings.Contains(title, t) || strings.Contains(author, t) || strings.Contains(desc, t) {
			return true
		}
	}
	return false
}

// Compare 按排序字段比较a和b，返回-1/0/1（已考虑方向）
func (s Sort) Compare(a, b *Book) int {
	var c int
	switch s.Field {
	case SortByTitle:
		c = strings.Compare(a.Title, b.Title)
	case SortByGenre:
		c = strings.Compare(string(a.Genre), string(b.Genre))
	case SortByPrice:
		c = compareNumbers(a.Price, b.Price)
	case SortByPublicationYear:
		c = compareNumbers(float64(a.PublicationYear), float64(b.PublicationYear))
	default:
		c = strings.Compare(a.Author, b.Author)
	}
	if s.Direction == Desc {
		return -c
	}
	return c
}

func compareNumbers(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
