package core

// QueryDefaults 是查询层的默认参数。
type QueryDefaults struct {
	TopN             int    // 推荐条数默认值
	MaxTopN          int    // 推荐条数上限，0 表示不限制
	PerPage          int    // 商品列表每页默认条数
	MaxPerPage       int    // 每页条数上限，0 表示不限制
	PlaceholderImage string // 商品无图片时使用的占位图
}

// DefaultQueryDefaults 返回默认查询参数。
func DefaultQueryDefaults() QueryDefaults {
	return QueryDefaults{
		TopN:             10,
		MaxTopN:          100,
		PerPage:          20,
		MaxPerPage:       100,
		PlaceholderImage: "/images/placeholder-image.png",
	}
}
