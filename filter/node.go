package filter

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pipeline"
	"github.com/rushteam/ocoprec/pkg/utils"
)

// FilterNode 是过滤 Node，可以组合多个过滤器（AND 语义）。
// 如果任何一个过滤器返回 true，该物品就会被过滤掉；保留的物品保持原有顺序。
type FilterNode struct {
	Filters []Filter

	// Logger 记录过滤器错误（可选）。出错的过滤器视为不过滤。
	Logger zerolog.Logger
}

// NewNode 创建 FilterNode，nil 过滤器会被忽略。
func NewNode(filters ...Filter) *FilterNode {
	n := &FilterNode{}
	for _, f := range filters {
		if f != nil {
			n.Filters = append(n.Filters, f)
		}
	}
	return n
}

func (n *FilterNode) Name() string {
	return "filter.node"
}

func (n *FilterNode) Kind() pipeline.Kind {
	return pipeline.KindFilter
}

func (n *FilterNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if len(n.Filters) == 0 || len(items) == 0 {
		return items, nil
	}

	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}

		filtered := ""
		for _, f := range n.Filters {
			ok, err := f.ShouldFilter(ctx, rctx, item)
			if err != nil {
				n.Logger.Debug().Err(err).Str("filter", f.Name()).Str("item", item.ID.String()).Msg("filter error ignored")
				continue
			}
			if ok {
				filtered = f.Name()
				break
			}
		}

		if filtered != "" {
			item.PutLabel("filtered", utils.Label{Value: "true", Source: filtered})
			continue
		}
		out = append(out, item)
	}
	return out, nil
}
