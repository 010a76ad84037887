package recall

import (
	"context"
	"sort"

	"github.com/rushteam/ocoprec/artifact"
	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pkg/utils"
)

// Popular 是热门召回源，用于没有交互历史的用户。
//
// 排序键按优先级：sold 降序，其次 num_reviews 降序，都没有时保持表内顺序；
// 空值排在最后。取前 top_n 行，元数据解析由后续节点完成，因此结果可能少于 top_n。
type Popular struct {
	// Table 为 nil 表示没有商品表，此时返回空结果与 no_history_no_data 状态。
	Table *artifact.Table

	// DefaultTopN 在请求未设置 top_n 时使用。
	DefaultTopN int
}

func (r *Popular) Name() string { return "recall.popular" }

func (r *Popular) Recall(
	_ context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if r.Table == nil || r.Table.Len() == 0 {
		rctx.SetStatus(core.StatusNoHistoryNoData, r.Name())
		return nil, nil
	}

	rows := r.Table.Rows()
	if key := popularityKey(r.Table); key != nil {
		sort.SliceStable(rows, func(i, j int) bool {
			return lessNullsLast(key(rows[i]), key(rows[j]))
		})
	}

	n := rctx.TopN(r.DefaultTopN)
	if n > len(rows) {
		n = len(rows)
	}
	out := make([]*core.Item, 0, n)
	for _, p := range rows[:n] {
		it := core.NewItem(p.ID)
		it.PutLabel("recall_source", utils.Label{Value: "popular", Source: "recall"})
		out = append(out, it)
	}
	rctx.SetStatus(core.StatusPopularFallback, r.Name())
	return out, nil
}

// popularityKey 选出表中第一个可用的热度列。
func popularityKey(t *artifact.Table) func(*core.Product) *int {
	switch {
	case t.HasColumn(artifact.ColumnSold):
		return func(p *core.Product) *int { return p.Sold }
	case t.HasColumn(artifact.ColumnNumReviews):
		return func(p *core.Product) *int { return p.NumReviews }
	}
	return nil
}

// lessNullsLast 是降序比较，nil 排在所有非 nil 之后。
func lessNullsLast(a, b *int) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	}
	return *a > *b
}
