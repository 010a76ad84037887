// Package recall 提供推荐候选的召回源：
//   - ItemToItem：按商品读取离线预计算的邻居列表
//   - UserProfile：按用户交互历史在相似度矩阵上实时打分
//   - Popular：没有交互历史时的热门兜底
//
// 召回源通过 RecommendContext 的 status 标签说明结果来源，
// 并通过 core.DomainError 区分"输入无法计算"与"合法但为空"。
package recall

import (
	"context"

	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pipeline"
)

// Source 表示一个可复用的召回源。
type Source interface {
	Name() string
	Recall(ctx context.Context, rctx *core.RecommendContext) ([]*core.Item, error)
}

// Node 把 Source 适配为 Pipeline 的召回阶段，忽略输入 items。
func Node(src Source) pipeline.Node {
	return &sourceNode{src: src}
}

type sourceNode struct {
	src Source
}

func (n *sourceNode) Name() string        { return n.src.Name() }
func (n *sourceNode) Kind() pipeline.Kind { return pipeline.KindRecall }

func (n *sourceNode) Process(
	ctx context.Context,
	rctx *core.RecommendContext,
	_ []*core.Item,
) ([]*core.Item, error) {
	return n.src.Recall(ctx, rctx)
}
