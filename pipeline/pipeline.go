package pipeline

import (
	"context"
	"fmt"

	"github.com/rushteam/ocoprec/core"
)

// Pipeline 把一次查询拆成可组合的 Node 链，按顺序执行。
type Pipeline struct {
	Nodes []Node

	// Hook 在每个 Node 执行后调用（可选），用于日志与打点。
	Hook func(node Node, in, out int)
}

// New 创建 Pipeline。
func New(nodes ...Node) *Pipeline {
	return &Pipeline{Nodes: nodes}
}

// Run 依次执行各 Node。领域错误原样返回，其他错误附带 Node 名称。
func (p *Pipeline) Run(
	ctx context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	cur := items
	for _, node := range p.Nodes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		next, err := node.Process(ctx, rctx, cur)
		if err != nil {
			if core.IsDomainError(err) {
				return nil, err
			}
			return nil, fmt.Errorf("%s: %w", node.Name(), err)
		}
		if p.Hook != nil {
			p.Hook(node, len(cur), len(next))
		}
		cur = next
	}
	return cur, nil
}
