package recall

import (
	"context"
	"fmt"

	"github.com/rushteam/ocoprec/artifact"
	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pkg/utils"
)

// ItemToItem 读取目标商品的预计算邻居列表，保持离线排名顺序，不重排。
// 元数据解析与截断由后续的 filter / rerank 节点完成。
type ItemToItem struct {
	Precomputed *artifact.Precomputed
	Catalog     *artifact.Catalog
}

func (r *ItemToItem) Name() string { return "recall.item_to_item" }

// Recall 的三种结果：
//   - 目标商品既没有预计算条目也不在元数据中：PRODUCT_NOT_FOUND
//   - 商品存在但没有预计算条目：空结果，status=no_precomputed
//   - 其余：邻居按原顺序返回，status=ok
func (r *ItemToItem) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil || rctx.ProductID.IsZero() {
		return nil, core.InvalidInput(core.ModuleRecall, "product id is required")
	}
	id := rctx.ProductID

	neighbors, ok := r.Precomputed.Neighbors(id)
	if !ok {
		if !r.Catalog.Has(id) {
			return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeProductNotFound,
				fmt.Sprintf("Product ID '%s' not found in product data.", id))
		}
		rctx.SetStatus(core.StatusNoPrecomputed, r.Name())
		return nil, nil
	}

	rctx.SetStatus(core.StatusOK, r.Name())
	out := make([]*core.Item, 0, len(neighbors))
	for _, nid := range neighbors {
		it := core.NewItem(nid)
		it.PutLabel("recall_source", utils.Label{Value: "precomputed", Source: "recall"})
		out = append(out, it)
	}
	return out, nil
}
