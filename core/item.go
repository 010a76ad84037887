package core

import "github.com/rushteam/ocoprec/pkg/utils"

// Item 是推荐链路中的统一承载结构：商品 ID、分数、元数据记录、标签。
// Labels 用于解释与状态透传；Score 用于排序决策。
type Item struct {
	ID      ProductID
	Score   float64
	Product *Product // 由元数据解析后挂载，未解析时为 nil
	Labels  map[string]utils.Label
}

func NewItem(id ProductID) *Item {
	return &Item{
		ID:     id,
		Labels: make(map[string]utils.Label),
	}
}

// PutLabel 写入 Label；若已存在同名 key，则按默认 Merge 规则累积。
func (it *Item) PutLabel(key string, lbl utils.Label) {
	if it.Labels == nil {
		it.Labels = make(map[string]utils.Label)
	}
	if old, ok := it.Labels[key]; ok {
		it.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	it.Labels[key] = lbl
}
