// Package rerank 提供召回/过滤之后的重排阶段：Top-N 截断、商品列表排序与分页。
package rerank

import (
	"context"

	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pipeline"
)

// TopNNode 是 Top-N 截断节点，保留前 N 个物品，不改变顺序。
//
//	p := pipeline.New(
//	    recall.Node(&recall.ItemToItem{...}),
//	    &filter.MetadataNode{Catalog: c, Required: true},
//	    &rerank.TopNNode{N: 10},
//	)
type TopNNode struct {
	// N 要保留的物品数量。N == 0 返回空结果，N < 0 不截断。
	N int
}

func (n *TopNNode) Name() string {
	return "rerank.topn"
}

func (n *TopNNode) Kind() pipeline.Kind {
	return pipeline.KindReRank
}

func (n *TopNNode) Process(
	_ context.Context,
	_ *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	if n.N < 0 || len(items) <= n.N {
		return items, nil
	}
	return items[:n.N], nil
}
