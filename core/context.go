package core

import (
	"github.com/rushteam/ocoprec/pkg/conv"
	"github.com/rushteam/ocoprec/pkg/utils"
)

// LabelStatus 是请求级状态标签的 key，召回源通过它说明"空结果"的原因。
const LabelStatus = "status"

// 召回状态，随响应返回，用来区分"空但成功"的不同原因。
const (
	StatusOK                = "ok"                  // 正常结果
	StatusNoPrecomputed     = "no_precomputed"      // 商品存在但没有预计算推荐
	StatusScoredFromHistory = "scored_from_history" // 基于交互历史计算
	StatusPopularFallback   = "popular_fallback"    // 无交互历史，返回热门
	StatusNoHistoryNoData   = "no_history_no_data"  // 无交互历史且没有商品表
	StatusNoMatch           = "no_match"            // 交互商品都不在矩阵中
)

// ParamTopN 是请求级结果条数参数的 key。
const ParamTopN = "top_n"

// RecommendContext 承载单次请求的输入，贯穿整个 Pipeline 透传。
// 它只属于一次请求，不在请求之间共享。
type RecommendContext struct {
	RequestID string
	UserID    string // 不做校验，本层没有用户库

	// ProductID 是商品维度推荐的目标商品（已规范化）
	ProductID ProductID

	// Interacted 是用户交互过的商品集合（已规范化、去重）
	Interacted *IDSet

	// Labels 是请求级标签，例如 status（召回结果说明）
	Labels map[string]utils.Label

	// Params 请求级参数，例如 top_n
	Params map[string]any
}

// PutLabel 写入请求级 Label。
func (rctx *RecommendContext) PutLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	if old, ok := rctx.Labels[key]; ok {
		rctx.Labels[key] = utils.MergeLabel(old, lbl)
		return
	}
	rctx.Labels[key] = lbl
}

// SetLabel 覆盖写入请求级 Label，不做合并。
func (rctx *RecommendContext) SetLabel(key string, lbl utils.Label) {
	if rctx.Labels == nil {
		rctx.Labels = make(map[string]utils.Label)
	}
	rctx.Labels[key] = lbl
}

// GetLabel 获取请求级 Label。
func (rctx *RecommendContext) GetLabel(key string) (utils.Label, bool) {
	if rctx.Labels == nil {
		return utils.Label{}, false
	}
	lbl, ok := rctx.Labels[key]
	return lbl, ok
}

// SetStatus 记录召回结果的状态。
func (rctx *RecommendContext) SetStatus(status, source string) {
	rctx.SetLabel(LabelStatus, utils.Label{Value: status, Source: source})
}

// Status 返回最近一次记录的状态，没有时为空。
func (rctx *RecommendContext) Status() string {
	if rctx == nil {
		return ""
	}
	lbl, _ := rctx.GetLabel(LabelStatus)
	return lbl.LastValue()
}

// TopN 读取请求的结果条数，未设置或为负时返回 def。
func (rctx *RecommendContext) TopN(def int) int {
	if rctx == nil || rctx.Params == nil {
		return def
	}
	if n, ok := conv.ToInt(rctx.Params[ParamTopN]); ok && n >= 0 {
		return n
	}
	return def
}

// HasInteracted 判断商品是否在用户交互集合中。
func (rctx *RecommendContext) HasInteracted(id ProductID) bool {
	if rctx == nil {
		return false
	}
	return rctx.Interacted.Has(id)
}
