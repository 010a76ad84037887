package filter

import (
	"context"

	"github.com/rushteam/ocoprec/artifact"
	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pipeline"
)

// MetadataNode 用商品元数据补全 Item.Product。
//   - Item 尚无 Product：直接挂载元数据记录
//   - Item 已有 Product（来自商品表）：缺失字段用元数据补齐，生成新记录
//
// Required 为 true 时，没有元数据的 Item 被剔除，节点属于过滤阶段；
// 否则只做补全，属于后处理阶段。
type MetadataNode struct {
	Catalog  *artifact.Catalog
	Required bool
}

func (n *MetadataNode) Name() string        { return "filter.metadata" }
func (n *MetadataNode) Kind() pipeline.Kind {
	if n.Required {
		return pipeline.KindFilter
	}
	return pipeline.KindPostProcess
}

func (n *MetadataNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	out := make([]*core.Item, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		meta, ok := n.Catalog.Product(item.ID)
		switch {
		case !ok && n.Required:
			continue
		case !ok:
		case item.Product == nil:
			item.Product = meta
		default:
			item.Product = item.Product.Merge(meta)
		}
		out = append(out, item)
	}
	return out, nil
}
