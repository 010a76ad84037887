package filter

import (
	"context"
	"strings"

	"golang.org/x/text/cases"

	"github.com/rushteam/ocoprec/core"
)

// ActiveFilter 过滤掉明确标记为下架的商品，未标记的视为上架。
type ActiveFilter struct{}

func (f *ActiveFilter) Name() string { return "filter.active" }

func (f *ActiveFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil || item.Product == nil || item.Product.Active == nil {
		return false, nil
	}
	return !*item.Product.Active, nil
}

// field 取商品的某个文本字段。
type field func(*core.Product) string

// ContainsFilter 做大小写不敏感的子串匹配，字段缺失视为不匹配。
// 使用 Unicode case folding，越南语等带变音符号的文本同样适用。
type ContainsFilter struct {
	name  string
	field field
	query string // 已 fold
}

func newContains(name string, f field, query string) *ContainsFilter {
	return &ContainsFilter{name: name, field: f, query: fold(query)}
}

// NewCategoryFilter 按类目子串过滤，query 为空时返回 nil（不过滤）。
func NewCategoryFilter(query string) Filter {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	return newContains("filter.category", func(p *core.Product) string { return p.Category }, query)
}

// NewProvinceFilter 按产地（省份）子串过滤，query 为空时返回 nil。
func NewProvinceFilter(query string) Filter {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	return newContains("filter.province", func(p *core.Product) string { return p.Origin }, query)
}

// NewKeywordFilter 按商品名子串过滤，query 为空时返回 nil。
func NewKeywordFilter(query string) Filter {
	if strings.TrimSpace(query) == "" {
		return nil
	}
	return newContains("filter.keyword", func(p *core.Product) string { return p.Name }, query)
}

func (f *ContainsFilter) Name() string { return f.name }

func (f *ContainsFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil || item.Product == nil {
		return true, nil
	}
	return !strings.Contains(fold(f.field(item.Product)), f.query), nil
}

func fold(s string) string {
	// cases.Caser 有内部状态，不能跨 goroutine 共享
	return cases.Fold().String(strings.TrimSpace(s))
}

// PriceRangeFilter 按闭区间过滤价格，Min/Max 为 nil 表示不限。
// 价格缺失的商品不受价格条件约束。
type PriceRangeFilter struct {
	Min *float64
	Max *float64
}

// NewPriceRangeFilter 在两个边界都为空时返回 nil。
func NewPriceRangeFilter(minPrice, maxPrice *float64) Filter {
	if minPrice == nil && maxPrice == nil {
		return nil
	}
	return &PriceRangeFilter{Min: minPrice, Max: maxPrice}
}

func (f *PriceRangeFilter) Name() string { return "filter.price_range" }

func (f *PriceRangeFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil || item.Product == nil || item.Product.Price == nil {
		return false, nil
	}
	price := *item.Product.Price
	if f.Min != nil && price < *f.Min {
		return true, nil
	}
	if f.Max != nil && price > *f.Max {
		return true, nil
	}
	return false, nil
}
