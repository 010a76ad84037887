package service

import (
	"context"
	"sync"
	"testing"

	"github.com/goccy/go-json"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/ocoprec/artifact"
	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pkg/metrics"
	"github.com/rushteam/ocoprec/store"
)

func intp(v int) *int         { return &v }
func fltp(v float64) *float64 { return &v }
func boolp(v bool) *bool      { return &v }

type fixture struct {
	catalog     *artifact.Catalog
	precomputed *artifact.Precomputed
	similarity  *artifact.Similarity
	table       *artifact.Table
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	catalog, err := artifact.NewCatalog(map[string]map[string]any{
		"1":  {"name": "A", "price": 150000.0, "ocop_rating": 4},
		"2":  {"name": "B", "price": "90000"},
		"3":  {"name": "C"},
		"4":  {"name": "Gạo", "image_url": "/img/4.png", "num_reviews": 7},
		"10": {"name": "D"},
	})
	if err != nil {
		t.Fatal(err)
	}
	pre, err := artifact.NewPrecomputed(map[string][]any{
		"1": {"2", "3"},
		"2": {float64(99), "3", 1},
	})
	if err != nil {
		t.Fatal(err)
	}
	index, err := artifact.NewIndexMap(map[string]int{"1": 0, "2": 1, "3": 2})
	if err != nil {
		t.Fatal(err)
	}
	sim, _, err := artifact.NewSimilarity(mat.NewDense(3, 3, []float64{
		1, 0.5, 0.2,
		0.5, 1, 0.3,
		0.2, 0.3, 1,
	}), index)
	if err != nil {
		t.Fatal(err)
	}
	table := artifact.NewTable([]*core.Product{
		{ID: "1", Name: "Trà xanh", Price: fltp(150000), Category: "Đồ uống", Origin: "Thái Nguyên", Sold: intp(10), Active: boolp(true)},
		{ID: "2", Name: "Mật ong", Price: fltp(90000), Category: "Thực phẩm", Origin: "Hà Giang", Sold: intp(50), Active: boolp(true)},
		{ID: "3", Name: "Miến dong", Category: "Thực phẩm", Origin: "Bắc Kạn", Sold: intp(5), Active: boolp(true)},
		{ID: "10", Name: "Cà phê", Price: fltp(200000), Category: "Đồ uống", Origin: "Sơn La", Active: boolp(false)},
		{ID: "4", Price: fltp(50000), Category: "Thực phẩm", Origin: "Hà Giang"},
	}, artifact.ColumnName, artifact.ColumnPrice, artifact.ColumnCategory, artifact.ColumnOrigin,
		artifact.ColumnSold, artifact.ColumnActive)
	return fixture{catalog: catalog, precomputed: pre, similarity: sim, table: table}
}

func (f fixture) store() *artifact.Store {
	return artifact.NewStoreFromData(f.catalog, f.precomputed, f.similarity, f.table)
}

func newService(st *artifact.Store, opts ...Option) *Service {
	opts = append([]Option{WithLogger(zerolog.Nop())}, opts...)
	return New(st, opts...)
}

func recIDs(recs []Recommendation) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ProductID
	}
	return out
}

func summaryIDs(ps []ProductSummary) []string {
	out := make([]string, len(ps))
	for i, p := range ps {
		out[i] = p.ID
	}
	return out
}

func equalStrings(a []string, b ...string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestGetProductRecommendations(t *testing.T) {
	svc := newService(newFixture(t).store())

	tests := []struct {
		name       string
		req        ProductRecommendationsRequest
		wantIDs    []string
		wantInput  string
		wantStatus string
		wantCode   string
	}{
		{"top_n=1 取第一个", ProductRecommendationsRequest{ProductID: "1", TopN: intp(1)}, []string{"2"}, "1", core.StatusOK, ""},
		{"默认 top_n 保持顺序", ProductRecommendationsRequest{ProductID: "1"}, []string{"2", "3"}, "1", core.StatusOK, ""},
		{"数字 ID 且跳过无元数据的邻居", ProductRecommendationsRequest{ProductID: 2, TopN: intp(10)}, []string{"3", "1"}, "2", core.StatusOK, ""},
		{"浮点形式的 ID", ProductRecommendationsRequest{ProductID: "1.0"}, []string{"2", "3"}, "1", core.StatusOK, ""},
		{"top_n=0", ProductRecommendationsRequest{ProductID: "1", TopN: intp(0)}, []string{}, "1", core.StatusOK, ""},
		{"存在但无预计算", ProductRecommendationsRequest{ProductID: "3"}, []string{}, "3", core.StatusNoPrecomputed, ""},
		{"未知商品", ProductRecommendationsRequest{ProductID: "404"}, nil, "", "", core.ErrorCodeProductNotFound},
		{"负的 top_n", ProductRecommendationsRequest{ProductID: "1", TopN: intp(-1)}, nil, "", "", core.ErrorCodeInvalidInput},
		{"缺少 ID", ProductRecommendationsRequest{}, nil, "", "", core.ErrorCodeInvalidInput},
		{"空 ID", ProductRecommendationsRequest{ProductID: "  "}, nil, "", "", core.ErrorCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetProductRecommendations(context.Background(), tt.req)
			if tt.wantCode != "" {
				if core.ErrorCode(err) != tt.wantCode {
					t.Fatalf("错误码 = %q, 期望 %q (%v)", core.ErrorCode(err), tt.wantCode, err)
				}
				if tt.wantCode == core.ErrorCodeProductNotFound && !core.IsProductNotFound(err) {
					t.Errorf("IsProductNotFound 应为 true")
				}
				if resp != nil {
					t.Errorf("出错时不应返回响应")
				}
				return
			}
			if err != nil {
				t.Fatalf("意外错误: %v", err)
			}
			if got := recIDs(resp.Recommendations); !equalStrings(got, tt.wantIDs...) {
				t.Errorf("recommendations = %v, 期望 %v", got, tt.wantIDs)
			}
			if resp.ProductIDInput != tt.wantInput {
				t.Errorf("productIdInput = %q, 期望 %q", resp.ProductIDInput, tt.wantInput)
			}
			if resp.Status != tt.wantStatus {
				t.Errorf("status = %q, 期望 %q", resp.Status, tt.wantStatus)
			}
			for _, r := range resp.Recommendations {
				if r.Score != nil {
					t.Errorf("预计算推荐不应带 score")
				}
			}
		})
	}
}

func TestGetProductRecommendations_Record(t *testing.T) {
	svc := newService(newFixture(t).store())
	resp, err := svc.GetProductRecommendations(context.Background(), ProductRecommendationsRequest{ProductID: "2"})
	if err != nil {
		t.Fatal(err)
	}
	// "1" 的元数据有价格与评级
	var rec Recommendation
	for _, r := range resp.Recommendations {
		if r.ProductID == "1" {
			rec = r
		}
	}
	if rec.Name != "A" || rec.Price == nil || *rec.Price != 150000 || rec.OCOPRating == nil || *rec.OCOPRating != 4 {
		t.Errorf("记录字段错误: %+v", rec)
	}

	resp, err = svc.GetProductRecommendations(context.Background(), ProductRecommendationsRequest{ProductID: "3"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Message != "No precomputed recommendations for Product ID '3'." {
		t.Errorf("message = %q", resp.Message)
	}
	data, err := json.Marshal(resp)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != `{"productIdInput":"3","recommendations":[],"status":"no_precomputed","message":"No precomputed recommendations for Product ID '3'."}` {
		t.Errorf("JSON = %s", data)
	}
}

func TestGetProductRecommendations_MissingArtifacts(t *testing.T) {
	f := newFixture(t)

	svc := newService(artifact.NewStoreFromData(f.catalog, nil, f.similarity, nil))
	_, err := svc.GetProductRecommendations(context.Background(), ProductRecommendationsRequest{ProductID: "1"})
	if !core.IsArtifactNotFound(err) {
		t.Errorf("缺少预计算文件应返回 ARTIFACT_NOT_FOUND，得到 %v", err)
	}

	svc = newService(artifact.NewStoreFromData(nil, f.precomputed, f.similarity, f.table))
	_, err = svc.GetProductRecommendations(context.Background(), ProductRecommendationsRequest{ProductID: "1"})
	if !core.IsArtifactNotFound(err) {
		t.Errorf("缺少元数据应返回 ARTIFACT_NOT_FOUND，得到 %v", err)
	}
}

func TestGetUserRecommendations(t *testing.T) {
	svc := newService(newFixture(t).store())

	tests := []struct {
		name        string
		interacted  []any
		topN        *int
		wantIDs     []string
		wantScores  []float64
		wantStatus  string
		wantCode    string
		wantMessage string
	}{
		{
			name:       "单个交互商品",
			interacted: []any{"1"},
			wantIDs:    []string{"2", "3"},
			wantScores: []float64{0.5, 0.2},
			wantStatus: core.StatusScoredFromHistory,
		},
		{
			name:       "多个交互商品取均值，数字与字符串等价",
			interacted: []any{1.0, "2", 1},
			wantIDs:    []string{"3"},
			wantScores: []float64{0.25},
			wantStatus: core.StatusScoredFromHistory,
		},
		{
			name:       "部分未知商品被跳过",
			interacted: []any{"1", "unknown"},
			topN:       intp(1),
			wantIDs:    []string{"2"},
			wantScores: []float64{0.5},
			wantStatus: core.StatusScoredFromHistory,
		},
		{
			name:        "全部未知",
			interacted:  []any{"x", "y"},
			wantIDs:     []string{},
			wantStatus:  core.StatusNoMatch,
			wantCode:    core.ErrorCodeNoMatch,
			wantMessage: "None of the interacted products found in similarity matrix.",
		},
		{
			name:       "无法规范化的 ID 被跳过",
			interacted: []any{"1", ""},
			wantIDs:    []string{"2", "3"},
			wantScores: []float64{0.5, 0.2},
			wantStatus: core.StatusScoredFromHistory,
		},
		{
			name:       "bool 与 null 被跳过",
			interacted: []any{true, nil, "1"},
			wantIDs:    []string{"2", "3"},
			wantScores: []float64{0.5, 0.2},
			wantStatus: core.StatusScoredFromHistory,
		},
		{
			name:        "全部无法规范化",
			interacted:  []any{"", false, nil},
			wantIDs:     []string{},
			wantStatus:  core.StatusNoMatch,
			wantCode:    core.ErrorCodeNoMatch,
			wantMessage: "None of the interacted products found in similarity matrix.",
		},
		{
			name:        "无交互历史返回热门",
			interacted:  nil,
			topN:        intp(3),
			wantIDs:     []string{"2", "1", "3"},
			wantStatus:  core.StatusPopularFallback,
			wantMessage: "Showing popular products due to no interaction history.",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.GetUserRecommendations(context.Background(), UserRecommendationsRequest{
				UserID:               "u1",
				InteractedProductIDs: tt.interacted,
				TopN:                 tt.topN,
			})
			if err != nil {
				t.Fatalf("意外错误: %v", err)
			}
			if got := recIDs(resp.Recommendations); !equalStrings(got, tt.wantIDs...) {
				t.Errorf("recommendations = %v, 期望 %v", got, tt.wantIDs)
			}
			if resp.Status != tt.wantStatus || resp.Code != tt.wantCode || resp.Message != tt.wantMessage {
				t.Errorf("status/code/message = %q/%q/%q", resp.Status, resp.Code, resp.Message)
			}
			if resp.UserIDInput != "u1" {
				t.Errorf("userIdInput = %q", resp.UserIDInput)
			}
			for i, want := range tt.wantScores {
				got := resp.Recommendations[i].Score
				if got == nil || *got-want > 1e-12 || want-*got > 1e-12 {
					t.Errorf("score[%d] = %v, 期望 %v", i, got, want)
				}
			}
			if tt.wantScores == nil {
				for _, r := range resp.Recommendations {
					if r.Score != nil {
						t.Errorf("非打分结果不应带 score")
					}
				}
			}
		})
	}
}

func TestGetUserRecommendations_NeverRecommendsInteracted(t *testing.T) {
	svc := newService(newFixture(t).store())
	for _, id := range []string{"1", "2", "3"} {
		resp, err := svc.GetUserRecommendations(context.Background(), UserRecommendationsRequest{
			UserID:               "u",
			InteractedProductIDs: []any{id},
			TopN:                 intp(10),
		})
		if err != nil {
			t.Fatal(err)
		}
		for _, r := range resp.Recommendations {
			if r.ProductID == id {
				t.Errorf("交互 %s 的推荐结果包含自身", id)
			}
		}
	}
}

func TestGetUserRecommendations_Errors(t *testing.T) {
	f := newFixture(t)
	svc := newService(f.store())

	tests := []struct {
		name string
		req  UserRecommendationsRequest
	}{
		{"缺少 user_id", UserRecommendationsRequest{InteractedProductIDs: []any{"1"}}},
		{"负的 top_n", UserRecommendationsRequest{UserID: "u", TopN: intp(-3)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.GetUserRecommendations(context.Background(), tt.req); !core.IsInvalidInput(err) {
				t.Errorf("期望 INVALID_INPUT，得到 %v", err)
			}
		})
	}
}

func TestGetUserRecommendations_MissingArtifacts(t *testing.T) {
	f := newFixture(t)
	svc := newService(artifact.NewStoreFromData(f.catalog, f.precomputed, nil, nil))

	_, err := svc.GetUserRecommendations(context.Background(), UserRecommendationsRequest{
		UserID: "u", InteractedProductIDs: []any{"1"},
	})
	if !core.IsArtifactNotFound(err) {
		t.Errorf("有交互历史但缺少矩阵应返回 ARTIFACT_NOT_FOUND，得到 %v", err)
	}

	// 没有交互历史时不需要矩阵；也没有商品表
	resp, err := svc.GetUserRecommendations(context.Background(), UserRecommendationsRequest{UserID: "u"})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Status != core.StatusNoHistoryNoData || len(resp.Recommendations) != 0 {
		t.Errorf("响应 = %+v", resp)
	}
	if resp.Message != "No interaction history and no popular products data available." {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestGetUserRecommendations_Concurrent(t *testing.T) {
	svc := newService(newFixture(t).store())
	var wg sync.WaitGroup
	errs := make(chan string, 32)
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			interacted := []any{"1"}
			want := []string{"2", "3"}
			if i%2 == 1 {
				interacted = []any{"3"}
				want = []string{"2", "1"}
			}
			resp, err := svc.GetUserRecommendations(context.Background(), UserRecommendationsRequest{
				UserID: "u", InteractedProductIDs: interacted,
			})
			if err != nil {
				errs <- err.Error()
				return
			}
			if got := recIDs(resp.Recommendations); !equalStrings(got, want...) {
				errs <- "unexpected order"
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Error(e)
	}
}

func TestListProducts(t *testing.T) {
	svc := newService(newFixture(t).store(), WithQueryConfig(core.QueryDefaults{PerPage: 3}))

	tests := []struct {
		name      string
		req       ListProductsRequest
		wantIDs   []string
		wantCount int
		wantPages int
	}{
		{"默认排序为 ID 降序，排除下架", ListProductsRequest{}, []string{"4", "3", "2"}, 4, 2},
		{"第二页", ListProductsRequest{Page: intp(2)}, []string{"1"}, 4, 2},
		{"越界页返回空", ListProductsRequest{Page: intp(5)}, []string{}, 4, 2},
		{"类目大小写不敏感", ListProductsRequest{Category: "thực PHẨM", PerPage: intp(10)}, []string{"4", "3", "2"}, 3, 1},
		{"省份子串", ListProductsRequest{Province: "giang"}, []string{"4", "2"}, 2, 1},
		{"价格区间，空价格保留", ListProductsRequest{MinPrice: fltp(60000), MaxPrice: fltp(160000)}, []string{"3", "2", "1"}, 3, 1},
		{"价格升序空值在后", ListProductsRequest{SortBy: "priceAsc", PerPage: intp(10)}, []string{"4", "2", "1", "3"}, 4, 1},
		{"价格降序", ListProductsRequest{SortBy: "price_desc", PerPage: intp(10)}, []string{"1", "2", "4", "3"}, 4, 1},
		{"热门", ListProductsRequest{SortBy: "popular", PerPage: intp(10)}, []string{"2", "1", "3", "4"}, 4, 1},
		{"未知排序回退到默认", ListProductsRequest{SortBy: "random", PerPage: intp(10)}, []string{"4", "3", "2", "1"}, 4, 1},
		{"无 createdAt 列时 newest 为 ID 降序", ListProductsRequest{SortBy: "newest", PerPage: intp(10)}, []string{"4", "3", "2", "1"}, 4, 1},
		{"关键字", ListProductsRequest{Keyword: "MẬT"}, []string{"2"}, 1, 1},
		{"表达式", ListProductsRequest{Filter: `product.sold != null && product.sold > 8`}, []string{"2", "1"}, 2, 1},
		{"条件组合", ListProductsRequest{Category: "thực phẩm", Province: "hà giang", MaxPrice: fltp(60000)}, []string{"4"}, 1, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := svc.ListProducts(context.Background(), tt.req)
			if err != nil {
				t.Fatalf("意外错误: %v", err)
			}
			if got := summaryIDs(resp.Products); !equalStrings(got, tt.wantIDs...) {
				t.Errorf("products = %v, 期望 %v", got, tt.wantIDs)
			}
			if resp.Count != tt.wantCount || resp.Pages != tt.wantPages {
				t.Errorf("count/pages = %d/%d, 期望 %d/%d", resp.Count, resp.Pages, tt.wantCount, tt.wantPages)
			}
			if resp.Status != "success" {
				t.Errorf("status = %q", resp.Status)
			}
		})
	}
}

func TestListProducts_PriceBounds(t *testing.T) {
	svc := newService(newFixture(t).store())
	minP, maxP := 80000.0, 150000.0
	resp, err := svc.ListProducts(context.Background(), ListProductsRequest{MinPrice: &minP, MaxPrice: &maxP})
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range resp.Products {
		if p.Price != nil && (*p.Price < minP || *p.Price > maxP) {
			t.Errorf("商品 %s 价格 %v 超出区间", p.ID, *p.Price)
		}
	}
}

func TestListProducts_Record(t *testing.T) {
	svc := newService(newFixture(t).store())
	resp, err := svc.ListProducts(context.Background(), ListProductsRequest{PerPage: intp(10)})
	if err != nil {
		t.Fatal(err)
	}
	byID := make(map[string]ProductSummary)
	for _, p := range resp.Products {
		byID[p.ID] = p
	}

	// 表中缺失的字段由元数据补全
	p4 := byID["4"]
	if p4.Name != "Gạo" || len(p4.Images) != 1 || p4.Images[0] != "/img/4.png" || p4.NumReviews != 7 {
		t.Errorf("商品 4 = %+v", p4)
	}
	p3 := byID["3"]
	if p3.Images[0] != "/images/placeholder-image.png" {
		t.Errorf("无图片时应使用占位图，得到 %v", p3.Images)
	}
	if p3.NumReviews != 0 || p3.CountInStock != 1 || p3.Price != nil {
		t.Errorf("商品 3 默认值错误: %+v", p3)
	}
	if byID["2"].Province != "Hà Giang" || byID["2"].Name != "Mật ong" {
		t.Errorf("商品 2 = %+v", byID["2"])
	}
}

func TestListProducts_SynthesizedTable(t *testing.T) {
	f := newFixture(t)
	svc := newService(artifact.NewStoreFromData(f.catalog, nil, nil, nil))
	resp, err := svc.ListProducts(context.Background(), ListProductsRequest{})
	if err != nil {
		t.Fatal(err)
	}
	// 元数据中的 5 个商品，ID 降序
	if got := summaryIDs(resp.Products); !equalStrings(got, "10", "4", "3", "2", "1") {
		t.Errorf("products = %v", got)
	}

	empty, err := artifact.NewCatalog(map[string]map[string]any{})
	if err != nil {
		t.Fatal(err)
	}
	svc = newService(artifact.NewStoreFromData(empty, nil, nil, nil))
	resp, err = svc.ListProducts(context.Background(), ListProductsRequest{Page: intp(2)})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Products) != 0 || resp.Count != 0 || resp.Pages != 0 || resp.Page != 2 {
		t.Errorf("空目录响应 = %+v", resp)
	}
	if resp.Message != "No product data available from JSON map." {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestListProducts_InvalidInput(t *testing.T) {
	svc := newService(newFixture(t).store())
	tests := []struct {
		name string
		req  ListProductsRequest
	}{
		{"page 为 0", ListProductsRequest{Page: intp(0)}},
		{"per_page 为 0", ListProductsRequest{PerPage: intp(0)}},
		{"per_page 为负", ListProductsRequest{PerPage: intp(-5)}},
		{"表达式语法错误", ListProductsRequest{Filter: "product.price <"}},
		{"表达式不是 bool", ListProductsRequest{Filter: "'a' + 'b'"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.ListProducts(context.Background(), tt.req); !core.IsInvalidInput(err) {
				t.Errorf("期望 INVALID_INPUT，得到 %v", err)
			}
		})
	}
}

func TestService_CacheAndMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	cache := store.NewMemoryStore()
	defer cache.Close()

	svc := newService(newFixture(t).store(), WithCache(cache, 60), WithMetrics(m))
	req := ProductRecommendationsRequest{ProductID: "1", TopN: intp(2)}

	first, err := svc.GetProductRecommendations(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	// 数字形式的同一商品命中同一个缓存 key
	second, err := svc.GetProductRecommendations(context.Background(), ProductRecommendationsRequest{ProductID: 1, TopN: intp(2)})
	if err != nil {
		t.Fatal(err)
	}
	if !equalStrings(recIDs(second.Recommendations), recIDs(first.Recommendations)...) {
		t.Errorf("缓存结果不一致: %v vs %v", recIDs(second.Recommendations), recIDs(first.Recommendations))
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")); got != 1 {
		t.Errorf("cache hit = %v, 期望 1", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")); got != 1 {
		t.Errorf("cache miss = %v, 期望 1", got)
	}

	// 错误结果不缓存
	before := cache.Len()
	for i := 0; i < 2; i++ {
		if _, err := svc.GetProductRecommendations(context.Background(), ProductRecommendationsRequest{ProductID: "404"}); err == nil {
			t.Fatal("期望错误")
		}
	}
	if cache.Len() != before {
		t.Errorf("错误结果不应写入缓存")
	}

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(OpProductRecommendations, core.StatusOK)); got != 2 {
		t.Errorf("requests ok = %v, 期望 2", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues(OpProductRecommendations, core.ErrorCodeProductNotFound)); got != 2 {
		t.Errorf("requests PRODUCT_NOT_FOUND = %v, 期望 2", got)
	}
	if got := testutil.ToFloat64(m.CatalogItems); got != 5 {
		t.Errorf("catalog items = %v, 期望 5", got)
	}
}

func TestGetUserRecommendations_CacheKeyIgnoresOrder(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	cache := store.NewMemoryStore()
	defer cache.Close()
	svc := newService(newFixture(t).store(), WithCache(cache, 60), WithMetrics(m))

	for _, interacted := range [][]any{{"1", "2"}, {"2", "1"}, {2, "1.0"}} {
		resp, err := svc.GetUserRecommendations(context.Background(), UserRecommendationsRequest{
			UserID: "u1", InteractedProductIDs: interacted,
		})
		if err != nil {
			t.Fatal(err)
		}
		if got := recIDs(resp.Recommendations); !equalStrings(got, "3") {
			t.Errorf("%v: recommendations = %v", interacted, got)
		}
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("miss")); got != 1 {
		t.Errorf("cache miss = %v, 期望 1", got)
	}
	if got := testutil.ToFloat64(m.CacheLookups.WithLabelValues("hit")); got != 2 {
		t.Errorf("cache hit = %v, 期望 2", got)
	}
}

func TestErrorBody(t *testing.T) {
	body := ErrorBody(core.NewDomainError(core.ModuleRecall, core.ErrorCodeProductNotFound, "Product ID '9' not found in product data."))
	if body.Code != core.ErrorCodeProductNotFound || body.Error != "Product ID '9' not found in product data." {
		t.Errorf("body = %+v", body)
	}
	body = ErrorBody(context.Canceled)
	if body.Code != core.ErrorCodeInternalError {
		t.Errorf("非领域错误应为 INTERNAL_ERROR，得到 %q", body.Code)
	}
}
