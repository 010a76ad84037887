package rerank

import (
	"context"
	"sort"
	"strings"

	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pipeline"
)

// SortKey 是商品列表的排序方式。
type SortKey string

const (
	SortDefault   SortKey = ""           // ID 降序
	SortPopular   SortKey = "popular"    // sold → num_reviews → ocop_rating，降序
	SortNewest    SortKey = "newest"     // createdAt 降序，无该列时 ID 降序
	SortPriceAsc  SortKey = "price_asc"  // 价格升序
	SortPriceDesc SortKey = "price_desc" // 价格降序
)

// ParseSortKey 识别排序参数及其别名，无法识别时返回 SortDefault。
func ParseSortKey(s string) SortKey {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "popular", "popularity":
		return SortPopular
	case "newest":
		return SortNewest
	case "priceasc", "price_asc", "price-asc":
		return SortPriceAsc
	case "pricedesc", "price_desc", "price-desc":
		return SortPriceDesc
	}
	return SortDefault
}

// ColumnSet 报告商品表中存在哪些列，决定热度/新品排序使用的字段。
type ColumnSet interface {
	HasColumn(col string) bool
}

// 与 artifact 包中的列名一致。
const (
	columnSold       = "sold"
	columnNumReviews = "num_reviews"
	columnRating     = "ocop_rating"
	columnCreatedAt  = "createdAt"
)

// SortNode 按 SortKey 对商品稳定排序，空值总是排在最后。
// Item 必须已挂载 Product，未挂载的视为所有字段为空。
type SortNode struct {
	Key     SortKey
	Columns ColumnSet
}

func (n *SortNode) Name() string        { return "rerank.sort" }
func (n *SortNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *SortNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	less := n.less()
	out := make([]*core.Item, len(items))
	copy(out, items)
	sort.SliceStable(out, func(i, j int) bool {
		return less(product(out[i]), product(out[j]))
	})
	return out, nil
}

func (n *SortNode) hasColumn(col string) bool {
	return n.Columns != nil && n.Columns.HasColumn(col)
}

func (n *SortNode) less() func(a, b *core.Product) bool {
	switch n.Key {
	case SortPopular:
		switch {
		case n.hasColumn(columnSold):
			return byIntDesc(func(p *core.Product) *int { return p.Sold })
		case n.hasColumn(columnNumReviews):
			return byIntDesc(func(p *core.Product) *int { return p.NumReviews })
		case n.hasColumn(columnRating):
			return byIntDesc(func(p *core.Product) *int { return p.OCOPRating })
		}
	case SortNewest:
		if n.hasColumn(columnCreatedAt) {
			return byTimeDesc
		}
	case SortPriceAsc:
		return byPrice(true)
	case SortPriceDesc:
		return byPrice(false)
	}
	return byIDDesc
}

var empty = &core.Product{}

func product(it *core.Item) *core.Product {
	if it == nil || it.Product == nil {
		return empty
	}
	return it.Product
}

func byIDDesc(a, b *core.Product) bool {
	return core.CompareIDs(a.ID, b.ID) > 0
}

func byIntDesc(get func(*core.Product) *int) func(a, b *core.Product) bool {
	return func(a, b *core.Product) bool {
		x, y := get(a), get(b)
		switch {
		case x == nil:
			return false
		case y == nil:
			return true
		}
		return *x > *y
	}
}

func byTimeDesc(a, b *core.Product) bool {
	x, y := a.CreatedAt, b.CreatedAt
	switch {
	case x == nil:
		return false
	case y == nil:
		return true
	}
	return x.After(*y)
}

func byPrice(asc bool) func(a, b *core.Product) bool {
	return func(a, b *core.Product) bool {
		x, y := a.Price, b.Price
		switch {
		case x == nil:
			return false
		case y == nil:
			return true
		case asc:
			return *x < *y
		}
		return *x > *y
	}
}
