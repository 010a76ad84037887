package service

import (
	"context"
	"fmt"
	"sort"

	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/filter"
	"github.com/rushteam/ocoprec/pipeline"
	"github.com/rushteam/ocoprec/recall"
	"github.com/rushteam/ocoprec/rerank"
)

// 与历史调用方约定的提示信息。
const (
	msgNoPrecomputed   = "No precomputed recommendations for Product ID '%s'."
	msgPopularFallback = "Showing popular products due to no interaction history."
	msgNoHistoryNoData = "No interaction history and no popular products data available."
)

// GetProductRecommendations 返回目标商品的预计算推荐，保持离线排序，最多 top_n 条。
//
// 商品既没有预计算列表也不在元数据中时返回 PRODUCT_NOT_FOUND；
// 商品存在但没有列表时返回空结果，status 为 no_precomputed。
func (s *Service) GetProductRecommendations(
	ctx context.Context,
	req ProductRecommendationsRequest,
) (resp *ProductRecommendationsResponse, err error) {
	r := s.begin(OpProductRecommendations)
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
	productID, err := core.NormalizeID(req.ProductID)
	if err != nil {
		return nil, err
	}
	topN := s.topN(req.TopN)

	key := cacheKey(OpProductRecommendations, struct {
		ProductID core.ProductID `json:"product_id"`
		TopN      int            `json:"top_n"`
	}{productID, topN})
	var cached ProductRecommendationsResponse
	if s.loadCached(ctx, r, key, &cached) {
		return &cached, nil
	}

	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	pre, err := s.store.Precomputed(ctx)
	if err != nil {
		return nil, err
	}

	rctx := &core.RecommendContext{RequestID: r.id, ProductID: productID}
	p := pipeline.New(
		recall.Node(&recall.ItemToItem{Precomputed: pre, Catalog: catalog}),
		&filter.MetadataNode{Catalog: catalog, Required: true},
		&rerank.TopNNode{N: topN},
	)
	p.Hook = r.hook()
	items, err := p.Run(ctx, rctx, nil)
	if err != nil {
		return nil, err
	}

	resp = &ProductRecommendationsResponse{
		ProductIDInput:  productID.String(),
		Recommendations: make([]Recommendation, 0, len(items)),
		Status:          rctx.Status(),
	}
	for _, it := range items {
		resp.Recommendations = append(resp.Recommendations, newRecommendation(it, false))
	}
	if resp.Status == core.StatusNoPrecomputed {
		resp.Message = fmt.Sprintf(msgNoPrecomputed, productID)
	}
	s.saveCached(ctx, r, key, resp)
	return resp, nil
}

// GetUserRecommendations 根据用户交互过的商品实时计算推荐。
//
// 交互集合为空时返回热门商品（popular_fallback），没有商品表时返回空结果
// （no_history_no_data）。交互商品全部不在相似度矩阵中时 status 为 no_match，
// Code 为 NO_MATCH，这是一个正常响应而不是 error。无法规范化的交互 ID 与未知商品
// 一样被跳过。结果不包含交互过的商品。
func (s *Service) GetUserRecommendations(
	ctx context.Context,
	req UserRecommendationsRequest,
) (resp *UserRecommendationsResponse, err error) {
	r := s.begin(OpUserRecommendations)
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
	interacted := core.NewIDSet()
	for i, raw := range req.InteractedProductIDs {
		id, err := core.NormalizeID(raw)
		if err != nil {
			// 与不在矩阵中的商品一样跳过，不影响其余 ID
			r.logger.Debug().Int("index", i).Interface("value", raw).Err(err).
				Msg("skip invalid interacted product id")
			continue
		}
		interacted.Add(id)
	}
	if interacted.Len() == 0 && len(req.InteractedProductIDs) > 0 {
		return noMatchResponse(req.UserID, recall.NoMatchMessage), nil
	}
	topN := s.topN(req.TopN)

	// 交互集合与顺序无关
	sortedIDs := interacted.IDs()
	sort.Slice(sortedIDs, func(i, j int) bool {
		return core.CompareIDs(sortedIDs[i], sortedIDs[j]) < 0
	})
	key := cacheKey(OpUserRecommendations, struct {
		UserID     string           `json:"user_id"`
		Interacted []core.ProductID `json:"interacted"`
		TopN       int              `json:"top_n"`
	}{req.UserID, sortedIDs, topN})
	var cached UserRecommendationsResponse
	if s.loadCached(ctx, r, key, &cached) {
		return &cached, nil
	}

	catalog, err := s.catalog(ctx)
	if err != nil {
		return nil, err
	}
	source := &recall.UserProfile{Logger: r.logger}
	if interacted.Len() > 0 {
		// 只有需要打分时才要求矩阵存在
		if source.Similarity, err = s.store.Similarity(ctx); err != nil {
			return nil, err
		}
	} else {
		table, err := s.store.Table(ctx)
		if err != nil {
			return nil, err
		}
		source.Fallback = &recall.Popular{Table: table, DefaultTopN: s.query.TopN}
	}

	rctx := &core.RecommendContext{
		RequestID:  r.id,
		UserID:     req.UserID,
		Interacted: interacted,
		Params:     map[string]any{core.ParamTopN: topN},
	}
	p := pipeline.New(
		recall.Node(source),
		filter.NewNode(&filter.ExposedFilter{}),
		&filter.MetadataNode{Catalog: catalog, Required: true},
		&rerank.TopNNode{N: topN},
	)
	p.Hook = r.hook()
	items, err := p.Run(ctx, rctx, nil)
	switch {
	case core.IsNoMatch(err):
		return noMatchResponse(req.UserID, core.GetDomainError(err).Message), nil
	case err != nil:
		return nil, err
	}

	resp = &UserRecommendationsResponse{
		UserIDInput:     req.UserID,
		Recommendations: make([]Recommendation, 0, len(items)),
		Status:          rctx.Status(),
	}
	scored := resp.Status == core.StatusScoredFromHistory
	for _, it := range items {
		resp.Recommendations = append(resp.Recommendations, newRecommendation(it, scored))
	}
	switch resp.Status {
	case core.StatusPopularFallback:
		resp.Message = msgPopularFallback
	case core.StatusNoHistoryNoData:
		resp.Message = msgNoHistoryNoData
	}
	s.saveCached(ctx, r, key, resp)
	return resp, nil
}

func noMatchResponse(userID, message string) *UserRecommendationsResponse {
	return &UserRecommendationsResponse{
		UserIDInput:     userID,
		Recommendations: []Recommendation{},
		Status:          core.StatusNoMatch,
		Code:            core.ErrorCodeNoMatch,
		Message:         message,
	}
}
