package service

import "github.com/rushteam/ocoprec/core"

// ProductRecommendationsRequest 按商品推荐的请求。
type ProductRecommendationsRequest struct {
	// ProductID 可以是字符串或数字，查询前会被规范化
	ProductID any  `json:"product_id" validate:"required"`
	TopN      *int `json:"top_n,omitempty" validate:"omitempty,gte=0"`
}

// UserRecommendationsRequest 按用户推荐的请求。
type UserRecommendationsRequest struct {
	UserID string `json:"user_id" validate:"required"`

	// InteractedProductIDs 元素可以是字符串或数字，顺序无关，可重复
	InteractedProductIDs []any `json:"interacted_product_ids"`
	TopN                 *int  `json:"top_n,omitempty" validate:"omitempty,gte=0"`
}

// ListProductsRequest 商品列表请求，nil 字段使用默认值或不过滤。
type ListProductsRequest struct {
	Page     *int     `json:"page,omitempty" validate:"omitempty,gte=1"`
	PerPage  *int     `json:"per_page,omitempty" validate:"omitempty,gte=1"`
	Category string   `json:"category,omitempty"`
	Province string   `json:"province,omitempty"`
	MinPrice *float64 `json:"min_price,omitempty"`
	MaxPrice *float64 `json:"max_price,omitempty"`
	SortBy   string   `json:"sort_by,omitempty"`
	Keyword  string   `json:"keyword,omitempty"`

	// Filter 是可选的 CEL 表达式，例如 `product.ocop_rating >= 4`
	Filter string `json:"filter,omitempty"`
}

// Recommendation 是一条推荐记录。
type Recommendation struct {
	ProductID  string   `json:"productId"`
	Name       string   `json:"name"`
	Price      *float64 `json:"price"`
	ImageURL   string   `json:"imageUrl"`
	ProductURL string   `json:"productUrl"`
	OCOPRating *int     `json:"ocopRating"`

	// Score 只在基于交互历史计算时给出
	Score *float64 `json:"score,omitempty"`
}

// ProductRecommendationsResponse 按商品推荐的响应。
type ProductRecommendationsResponse struct {
	ProductIDInput  string           `json:"productIdInput"`
	Recommendations []Recommendation `json:"recommendations"`
	Status          string           `json:"status"`
	Message         string           `json:"message,omitempty"`
}

// UserRecommendationsResponse 按用户推荐的响应。
// Status 为 no_match 时 Code 为 NO_MATCH，用来与"合法但为空"区分。
type UserRecommendationsResponse struct {
	UserIDInput     string           `json:"userIdInput"`
	Recommendations []Recommendation `json:"recommendations"`
	Status          string           `json:"status"`
	Code            string           `json:"code,omitempty"`
	Message         string           `json:"message,omitempty"`
}

// ProductSummary 是商品列表中的一条记录。
type ProductSummary struct {
	ID           string   `json:"id"`
	Name         string   `json:"name"`
	Images       []string `json:"images"`
	Price        *float64 `json:"price"`
	Category     string   `json:"category"`
	Province     string   `json:"province"`
	Rating       *int     `json:"rating"`
	NumReviews   int      `json:"numReviews"`
	CountInStock int      `json:"countInStock"`
}

// ListProductsResponse 商品列表响应。
type ListProductsResponse struct {
	Products []ProductSummary `json:"products"`
	Count    int              `json:"count"`
	Page     int              `json:"page"`
	Pages    int              `json:"pages"`
	Status   string           `json:"status"`
	Message  string           `json:"message,omitempty"`
}

const notAvailable = "N/A"

func newRecommendation(it *core.Item, withScore bool) Recommendation {
	p := it.Product
	if p == nil {
		p = &core.Product{ID: it.ID}
	}
	rec := Recommendation{
		ProductID:  it.ID.String(),
		Name:       p.Name,
		Price:      p.Price,
		ImageURL:   p.ImageURL,
		ProductURL: p.ProductURL,
		OCOPRating: p.OCOPRating,
	}
	if rec.Name == "" {
		rec.Name = notAvailable
	}
	if withScore {
		score := it.Score
		rec.Score = &score
	}
	return rec
}

func newSummary(it *core.Item, placeholder string) ProductSummary {
	p := it.Product
	if p == nil {
		p = &core.Product{ID: it.ID}
	}
	s := ProductSummary{
		ID:           it.ID.String(),
		Name:         p.Name,
		Images:       []string{placeholder},
		Price:        p.Price,
		Category:     p.Category,
		Province:     p.Origin,
		Rating:       p.OCOPRating,
		NumReviews:   0,
		CountInStock: 1,
	}
	if s.Name == "" {
		s.Name = notAvailable
	}
	if p.ImageURL != "" {
		s.Images = []string{p.ImageURL}
	}
	if p.NumReviews != nil {
		s.NumReviews = *p.NumReviews
	}
	if p.CountInStock != nil {
		s.CountInStock = *p.CountInStock
	}
	return s
}
