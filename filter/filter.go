// Package filter 提供候选过滤：已交互剔除、元数据解析、上架状态、
// 类目/产地/关键词子串匹配、价格区间与 CEL 表达式。
package filter

import (
	"context"

	"github.com/rushteam/ocoprec/core"
)

// Filter 是过滤器的抽象接口，用于判断一个 Item 是否应该被过滤掉。
// 返回 true 表示应该过滤（移除），false 表示保留。
type Filter interface {
	// Name 返回过滤器名称
	Name() string

	// ShouldFilter 判断 item 是否应该被过滤
	ShouldFilter(ctx context.Context, rctx *core.RecommendContext, item *core.Item) (bool, error)
}
