package core

import (
	"time"

	"github.com/rushteam/ocoprec/pkg/conv"
)

// Product 是一条商品记录，字段均可缺失。
// 缺失字段以中性默认值传播（空字符串 / nil 数值），从不产生错误。
type Product struct {
	ID           ProductID
	Name         string
	Price        *float64
	ImageURL     string
	ProductURL   string
	Category     string
	Origin       string // 产地 / 省份
	OCOPRating   *int
	NumReviews   *int
	Sold         *int
	CountInStock *int
	Active       *bool
	CreatedAt    *time.Time
}

// 元数据 / 表格中识别的字段名（兼容训练管线与文档库两种命名）。
var (
	nameKeys       = []string{"name"}
	priceKeys      = []string{"price"}
	imageKeys      = []string{"image_url", "image"}
	productURLKeys = []string{"product_url"}
	categoryKeys   = []string{"category"}
	originKeys     = []string{"origin", "province"}
	ratingKeys     = []string{"ocop_rating"}
	reviewsKeys    = []string{"num_reviews", "numReviews"}
	soldKeys       = []string{"sold"}
	stockKeys      = []string{"countInStock", "stock_count", "count_in_stock"}
	activeKeys     = []string{"isActive", "is_active", "active"}
	createdKeys    = []string{"createdAt", "created_at"}
)

// ProductFromMap 按尽力而为的方式把一条元数据（JSON object）转换为 Product。
// 数值字段接受数字或数字字符串，解析失败时为 nil。
func ProductFromMap(id ProductID, m map[string]any) *Product {
	p := &Product{ID: id}
	if m == nil {
		return p
	}
	p.Name = firstString(m, nameKeys)
	p.Price = firstFloat(m, priceKeys)
	p.ImageURL = firstString(m, imageKeys)
	p.ProductURL = firstString(m, productURLKeys)
	p.Category = firstString(m, categoryKeys)
	p.Origin = firstString(m, originKeys)
	p.OCOPRating = firstInt(m, ratingKeys)
	p.NumReviews = firstInt(m, reviewsKeys)
	p.Sold = firstInt(m, soldKeys)
	p.CountInStock = firstInt(m, stockKeys)
	for _, k := range activeKeys {
		if b, ok := conv.ToBool(m[k]); ok {
			p.Active = &b
			break
		}
	}
	for _, k := range createdKeys {
		if s, ok := conv.ToString(m[k]); ok {
			if t, ok := conv.ParseTime(s); ok {
				p.CreatedAt = &t
				break
			}
		}
	}
	return p
}

// Merge 用 fallback 填充 p 中缺失的字段，返回新的记录，p 与 fallback 均不被修改。
func (p *Product) Merge(fallback *Product) *Product {
	if p == nil {
		return fallback
	}
	out := *p
	if fallback == nil {
		return &out
	}
	if out.Name == "" {
		out.Name = fallback.Name
	}
	if out.Price == nil {
		out.Price = fallback.Price
	}
	if out.ImageURL == "" {
		out.ImageURL = fallback.ImageURL
	}
	if out.ProductURL == "" {
		out.ProductURL = fallback.ProductURL
	}
	if out.Category == "" {
		out.Category = fallback.Category
	}
	if out.Origin == "" {
		out.Origin = fallback.Origin
	}
	if out.OCOPRating == nil {
		out.OCOPRating = fallback.OCOPRating
	}
	if out.NumReviews == nil {
		out.NumReviews = fallback.NumReviews
	}
	if out.Sold == nil {
		out.Sold = fallback.Sold
	}
	if out.CountInStock == nil {
		out.CountInStock = fallback.CountInStock
	}
	if out.Active == nil {
		out.Active = fallback.Active
	}
	if out.CreatedAt == nil {
		out.CreatedAt = fallback.CreatedAt
	}
	return &out
}

// Fields 返回用于表达式过滤的扁平视图，缺失的数值为 nil。
func (p *Product) Fields() map[string]any {
	m := map[string]any{
		"id":             string(p.ID),
		"name":           p.Name,
		"category":       p.Category,
		"origin":         p.Origin,
		"price":          nil,
		"ocop_rating":    nil,
		"num_reviews":    nil,
		"sold":           nil,
		"count_in_stock": nil,
		"active":         p.Active == nil || *p.Active,
	}
	if p.Price != nil {
		m["price"] = *p.Price
	}
	if p.OCOPRating != nil {
		m["ocop_rating"] = int64(*p.OCOPRating)
	}
	if p.NumReviews != nil {
		m["num_reviews"] = int64(*p.NumReviews)
	}
	if p.Sold != nil {
		m["sold"] = int64(*p.Sold)
	}
	if p.CountInStock != nil {
		m["count_in_stock"] = int64(*p.CountInStock)
	}
	return m
}

func firstString(m map[string]any, keys []string) string {
	for _, k := range keys {
		if s, ok := conv.ToString(m[k]); ok && s != "" {
			return s
		}
	}
	return ""
}

func firstFloat(m map[string]any, keys []string) *float64 {
	for _, k := range keys {
		if f, ok := conv.ParseFloat(m[k]); ok {
			return &f
		}
	}
	return nil
}

func firstInt(m map[string]any, keys []string) *int {
	for _, k := range keys {
		if n, ok := conv.ParseInt(m[k]); ok {
			return &n
		}
	}
	return nil
}
