package service

import (
	"context"

	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/filter"
	"github.com/rushteam/ocoprec/pipeline"
	"github.com/rushteam/ocoprec/rerank"
)

const (
	statusSuccess   = "success"
	msgEmptyCatalog = "No product data available from JSON map."
)

// ListProducts 对商品表做过滤、排序与分页。
//
// 没有 CSV 商品表时由元数据合成。存在 isActive 列时下架商品总是被排除；
// 各过滤条件为 AND 关系；页码越界返回空页而不是错误。
// 元数据只在分页之后用来补全当前页缺失的字段。
func (s *Service) ListProducts(
	ctx context.Context,
	req ListProductsRequest,
) (resp *ListProductsResponse, err error) {
	r := s.begin(OpListProducts)
	defer func() {
		status := ""
		if resp != nil {
			status = resp.Status
		}
		s.finish(r, status, err)
	}()

	if err := s.validateRequest(req); err != nil {
		return nil, err
	}
	page := 1
	if req.Page != nil {
		page = *req.Page
	}
	perPage := s.perPage(req.PerPage)
	// 编译失败属于输入错误，先于加载产物报告
	exprFilter, err := filter.NewExprFilter(req.Filter)
	if err != nil {
		return nil, err
	}

	norm := req
	norm.Page, norm.PerPage = &page, &perPage
	key := cacheKey(OpListProducts, norm)
	var cached ListProductsResponse
	if s.loadCached(ctx, r, key, &cached) {
		return &cached, nil
	}

	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	table, err := s.store.ProductTable(ctx)
	if err != nil {
		return nil, err
	}
	if table.Synthesized() && table.Len() == 0 {
		resp = &ListProductsResponse{
			Products: []ProductSummary{},
			Page:     page,
			Status:   statusSuccess,
			Message:  msgEmptyCatalog,
		}
		return resp, nil
	}

	rows := table.Rows()
	items := make([]*core.Item, len(rows))
	for i, row := range rows {
		it := core.NewItem(row.ID)
		it.Product = row
		items[i] = it
	}

	rctx := &core.RecommendContext{RequestID: r.id, Params: map[string]any{}}
	p := pipeline.New(
		filter.NewNode(
			&filter.ActiveFilter{},
			filter.NewCategoryFilter(req.Category),
			filter.NewProvinceFilter(req.Province),
			filter.NewPriceRangeFilter(req.MinPrice, req.MaxPrice),
			filter.NewKeywordFilter(req.Keyword),
			exprFilter,
		),
		&rerank.SortNode{Key: rerank.ParseSortKey(req.SortBy), Columns: table},
		&rerank.PageNode{Page: page, PerPage: perPage},
		&filter.MetadataNode{Catalog: catalog},
	)
	p.Hook = r.hook()
	items, err = p.Run(ctx, rctx, items)
	if err != nil {
		return nil, err
	}

	total, _ := rctx.Params[rerank.ParamTotal].(int)
	resp = &ListProductsResponse{
		Products: make([]ProductSummary, 0, len(items)),
		Count:    total,
		Page:     page,
		Pages:    (total + perPage - 1) / perPage,
		Status:   statusSuccess,
	}
	for _, it := range items {
		resp.Products = append(resp.Products, newSummary(it, s.query.PlaceholderImage))
	}
	s.saveCached(ctx, r, key, resp)
	return resp, nil
}
