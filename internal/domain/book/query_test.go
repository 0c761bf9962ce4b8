package book

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func ptr[T any](v T) *T { return &v }

func TestBuildQuery(t *testing.T) {
	cases := []struct {
		name   string
		params SearchParams
		want   QuerySpec
	}{
		{
			name:   "空参数匹配全部并按作者升序",
			params: SearchParams{},
			want:   QuerySpec{Sort: DefaultSort},
		},
		{
			name:   "关键词拆分为多个词",
			params: SearchParams{Keywords: "  dune  herbert "},
			want:   QuerySpec{Filter: Filter{Terms: []string{"dune", "herbert"}}, Sort: DefaultSort},
		},
		{
			name:   "类型不校验",
			params: SearchParams{Genre: "Poetry"},
			want:   QuerySpec{Filter: Filter{Genre: ptr("Poetry")}, Sort: DefaultSort},
		},
		{
			name:   "价格双边",
			params: SearchParams{MinPrice: "5", MaxPrice: "15.5"},
			want:   QuerySpec{Filter: Filter{MinPrice: ptr(5.0), MaxPrice: ptr(15.5)}, Sort: DefaultSort},
		},
		{
			name:   "只有下限",
			params: SearchParams{MinPrice: "20"},
			want:   QuerySpec{Filter: Filter{MinPrice: ptr(20.0)}, Sort: DefaultSort},
		},
		{
			name:   "区间颠倒不交换",
			params: SearchParams{MinPrice: "30", MaxPrice: "10"},
			want:   QuerySpec{Filter: Filter{MinPrice: ptr(30.0), MaxPrice: ptr(10.0)}, Sort: DefaultSort},
		},
		{
			name:   "无法解析的价格被忽略",
			params: SearchParams{MinPrice: "cheap", MaxPrice: "NaN"},
			want:   QuerySpec{Sort: DefaultSort},
		},
		{
			name:   "溢出的价格被忽略",
			params: SearchParams{MaxPrice: "1e400"},
			want:   QuerySpec{Sort: DefaultSort},
		},
		{
			name:   "按价格排序",
			params: SearchParams{SortBy: "price"},
			want:   QuerySpec{Sort: Sort{Field: SortByPrice, Direction: Asc}},
		},
		{
			name:   "按年份降序",
			params: SearchParams{SortBy: "YEAR_DESC"},
			want:   QuerySpec{Sort: Sort{Field: SortByPublicationYear, Direction: Desc}},
		},
		{
			name:   "未知排序回退默认",
			params: SearchParams{SortBy: "rating"},
			want:   QuerySpec{Sort: DefaultSort},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, BuildQuery(tc.params))
		})
	}
}

func TestEmptyFilterMatchesEverything(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := genBook().Draw(t, "book")
		spec := BuildQuery(SearchParams{})
		if !spec.Filter.IsEmpty() || !spec.Filter.Matches(b) {
			t.Fatalf("empty filter rejected %+v", b)
		}
	})
}

func TestBuildQueryIsTotal(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := SearchParams{
			Keywords: rapid.String().Draw(t, "keywords"),
			MinPrice: rapid.String().Draw(t, "min"),
			MaxPrice: rapid.String().Draw(t, "max"),
			Genre:    rapid.String().Draw(t, "genre"),
			SortBy:   rapid.String().Draw(t, "sort"),
		}
		spec := BuildQuery(p)
		for _, bound := range []*float64{spec.Filter.MinPrice, spec.Filter.MaxPrice} {
			if bound != nil && (math.IsNaN(*bound) || math.IsInf(*bound, 0)) {
				t.Fatalf("non-finite bound %v from %+v", *bound, p)
			}
		}
		if spec.Sort.Field == "" {
			t.Fatalf("sort field missing for %q", p.SortBy)
		}
	})
}

func TestPriceRangeProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		a := rapid.Float64Range(0, 500).Draw(t, "a")
		b := rapid.Float64Range(a, 1000).Draw(t, "b")
		spec := BuildQuery(SearchParams{
			MinPrice: strconv.FormatFloat(a, 'f', -1, 64),
			MaxPrice: strconv.FormatFloat(b, 'f', -1, 64),
		})
		books := rapid.SliceOf(genBook()).Draw(t, "books")
		for _, bk := range books {
			inRange := bk.Price >= a && bk.Price <= b
			if spec.Filter.Matches(bk) != inRange {
				t.Fatalf("price %v against [%v,%v]: matches=%v", bk.Price, a, b, !inRange)
			}
		}
	})
}

func TestGenreProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		g := rapid.SampledFrom(Genres).Draw(t, "genre")
		spec := BuildQuery(SearchParams{Genre: string(g)})
		for _, bk := range rapid.SliceOf(genBook()).Draw(t, "books") {
			if spec.Filter.Matches(bk) != (bk.Genre == g) {
				t.Fatalf("genre %q vs filter %q", bk.Genre, g)
			}
		}
	})
}

func TestKeywordMatchesAnyField(t *testing.T) {
	b := &Book{Title: "The Name of the Wind", Author: "Patrick Rothfuss", Description: "A musician and arcanist"}

	assert.True(t, BuildQuery(SearchParams{Keywords: "wind"}).Filter.Matches(b))
	assert.True(t, BuildQuery(SearchParams{Keywords: "ROTHFUSS"}).Filter.Matches(b))
	assert.True(t, BuildQuery(SearchParams{Keywords: "arcan"}).Filter.Matches(b))
	assert.True(t, BuildQuery(SearchParams{Keywords: "zzz musician"}).Filter.Matches(b), "任一词命中即可")
	assert.False(t, BuildQuery(SearchParams{Keywords: "dragon"}).Filter.Matches(b))
}

func TestConcreteScenario(t *testing.T) {
	b := &Book{ISBN: "9780000000001", Title: "A", Author: "Z", Genre: GenreFiction, PublicationYear: 2000, Price: 10.0, Description: "d"}

	assert.True(t, BuildQuery(SearchParams{MinPrice: "5", MaxPrice: "15"}).Filter.Matches(b))
	assert.False(t, BuildQuery(SearchParams{MinPrice: "20"}).Filter.Matches(b))
	assert.False(t, BuildQuery(SearchParams{MinPrice: "15", MaxPrice: "5"}).Filter.Matches(b))
}

func TestSortCompare(t *testing.T) {
	books := []*Book{
		{ID: "1", Author: "Orwell", Price: 9, PublicationYear: 1949},
		{ID: "2", Author: "Atwood", Price: 15, PublicationYear: 1985},
		{ID: "3", Author: "Huxley", Price: 12, PublicationYear: 1932},
	}

	ids := func(s Sort) string {
		cp := append([]*Book(nil), books...)
		sort.SliceStable(cp, func(i, j int) bool { return s.Compare(cp[i], cp[j]) < 0 })
		out := ""
		for _, b := range cp {
			out += b.ID
		}
		return out
	}

	assert.Equal(t, "231", ids(DefaultSort))
	assert.Equal(t, "132", ids(Sort{SortByPrice, Asc}))
	assert.Equal(t, "231", ids(Sort{SortByPrice, Desc}))
	assert.Equal(t, "213", ids(Sort{SortByPublicationYear, Desc}))
}

func genBook() *rapid.Generator[*Book] {
	return rapid.Custom(func(t *rapid.T) *Book {
		return &Book{
			ID:              fmt.Sprint(rapid.IntRange(1, 1<<20).Draw(t, "id")),
			ISBN:            rapid.StringMatching(`[0-9]{13}X`).Draw(t, "isbn"),
			Title:           rapid.StringMatching(`[A-Za-z][A-Za-z ]{0,11}`).Draw(t, "title"),
			Author:          rapid.StringMatching(`[A-Za-z][A-Za-z ]{0,11}`).Draw(t, "author"),
			Genre:           rapid.SampledFrom(Genres).Draw(t, "genre"),
			PublicationYear: rapid.IntRange(MinPublicationYear, MaxPublicationYear).Draw(t, "year"),
			Price:           rapid.Float64Range(0, 1000).Draw(t, "price"),
			Description:     rapid.StringMatching(`[a-z][a-z ]{0,19}`).Draw(t, "description"),
		}
	})
}

func TestGenBookIsValid(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		b := genBook().Draw(t, "book")
		require.NoError(t, b.Validate())
	})
}
