package filter

import (
	"context"

	"github.com/rushteam/ocoprec/core"
)

// ExposedFilter 过滤掉用户已经交互过的商品（RecommendContext.Interacted），
// 保证推荐结果不包含输入中的任何商品。
type ExposedFilter struct{}

func (f *ExposedFilter) Name() string {
	return "filter.exposed"
}

func (f *ExposedFilter) ShouldFilter(
	_ context.Context,
	rctx *core.RecommendContext,
	item *core.Item,
) (bool, error) {
	if item == nil {
		return false, nil
	}
	return rctx.HasInteracted(item.ID), nil
}
