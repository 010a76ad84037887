package rerank

import (
	"context"

	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pipeline"
)

// ParamTotal 是分页前结果总数写入 RecommendContext.Params 的 key。
const ParamTotal = "total"

// Page 是一页结果。
type Page struct {
	Items   []*core.Item
	Total   int // 分页前的总数
	Page    int
	PerPage int
	Pages   int // ceil(Total / PerPage)
}

// Paginate 取 [(page-1)*perPage, page*perPage) 区间，越界时返回空页而不是错误。
// perPage <= 0 时 Pages 为 0 且不返回任何条目。
func Paginate(items []*core.Item, page, perPage int) Page {
	p := Page{Total: len(items), Page: page, PerPage: perPage}
	if perPage <= 0 {
		return p
	}
	p.Pages = (p.Total + perPage - 1) / perPage
	if page < 1 {
		return p
	}
	start := (page - 1) * perPage
	if start >= p.Total {
		return p
	}
	end := start + perPage
	if end > p.Total {
		end = p.Total
	}
	p.Items = items[start:end]
	return p
}

// PageNode 是分页节点，总数写入 rctx.Params[ParamTotal]。
type PageNode struct {
	Page    int
	PerPage int
}

func (n *PageNode) Name() string        { return "rerank.page" }
func (n *PageNode) Kind() pipeline.Kind { return pipeline.KindReRank }

func (n *PageNode) Process(
	_ context.Context,
	rctx *core.RecommendContext,
	items []*core.Item,
) ([]*core.Item, error) {
	p := Paginate(items, n.Page, n.PerPage)
	if rctx != nil {
		if rctx.Params == nil {
			rctx.Params = make(map[string]any)
		}
		rctx.Params[ParamTotal] = p.Total
	}
	return p.Items, nil
}
