package filter

import (
	"context"

	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pkg/dsl"
)

// ExprFilter 用 CEL 表达式筛选商品：表达式为 false 的商品被过滤。
// 求值出错的商品（例如对 null 价格做比较）同样被过滤。
type ExprFilter struct {
	Program *dsl.Program
}

// NewExprFilter 编译表达式，expr 为空时返回 (nil, nil)。
func NewExprFilter(expr string) (Filter, error) {
	if expr == "" {
		return nil, nil
	}
	prg, err := dsl.Compile(expr)
	if err != nil {
		return nil, err
	}
	return &ExprFilter{Program: prg}, nil
}

func (f *ExprFilter) Name() string { return "filter.expr" }

func (f *ExprFilter) ShouldFilter(_ context.Context, _ *core.RecommendContext, item *core.Item) (bool, error) {
	if item == nil {
		return true, nil
	}
	ok, err := f.Program.Eval(item)
	if err != nil {
		return true, nil
	}
	return !ok, nil
}
