package recall

import (
	"context"
	"math"
	"sort"

	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/floats"

	"github.com/rushteam/ocoprec/artifact"
	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pkg/utils"
)

// NoMatchMessage 是交互商品全部无法在相似度矩阵中找到时的提示。
const NoMatchMessage = "None of the interacted products found in similarity matrix."

// UserProfile 是基于内容的用户召回源。
//
// 把用户交互过的商品在相似度矩阵中的行取平均，得到用户画像向量，
// 再按画像分数对全部商品排序。画像向量只属于一次请求，用完即弃。
//
// 已交互商品的剔除由 filter.Exposed 完成，元数据解析由 filter.Metadata 完成。
type UserProfile struct {
	Similarity *artifact.Similarity

	// Fallback 在交互集合为空时调用（通常是 Popular），为 nil 时返回空结果。
	Fallback Source

	Logger zerolog.Logger
}

func (r *UserProfile) Name() string { return "recall.user_profile" }

func (r *UserProfile) Recall(
	ctx context.Context,
	rctx *core.RecommendContext,
) ([]*core.Item, error) {
	if rctx == nil {
		return nil, core.InvalidInput(core.ModuleRecall, "recommend context is required")
	}
	if rctx.Interacted.Len() == 0 {
		if r.Fallback != nil {
			return r.Fallback.Recall(ctx, rctx)
		}
		rctx.SetStatus(core.StatusNoHistoryNoData, r.Name())
		return nil, nil
	}
	if r.Similarity == nil {
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeArtifactNotFound,
			"similarity matrix is not available")
	}

	profile, matched := r.profile(rctx)
	if matched == 0 {
		rctx.SetStatus(core.StatusNoMatch, r.Name())
		return nil, core.NewDomainError(core.ModuleRecall, core.ErrorCodeNoMatch, NoMatchMessage)
	}

	order := rank(profile)
	out := make([]*core.Item, 0, len(order))
	for _, idx := range order {
		id, ok := r.Similarity.ID(idx)
		if !ok {
			continue
		}
		it := core.NewItem(id)
		it.Score = profile[idx]
		it.PutLabel("recall_source", utils.Label{Value: "user_profile", Source: "recall"})
		out = append(out, it)
	}
	rctx.SetStatus(core.StatusScoredFromHistory, r.Name())
	return out, nil
}

// profile 计算交互商品所在行的均值，返回向量与命中的商品数。
// 不在映射中的商品被跳过；命中数为 0 时向量为 nil。
func (r *UserProfile) profile(rctx *core.RecommendContext) ([]float64, int) {
	rows, cols := r.Similarity.Dims()
	var (
		sum     []float64
		matched int
	)
	for _, id := range rctx.Interacted.IDs() {
		idx, ok := r.Similarity.Index(id)
		if !ok || idx < 0 || idx >= rows {
			r.Logger.Debug().
				Str("request_id", rctx.RequestID).
				Str("product_id", id.String()).
				Msg("interacted product not in similarity index")
			continue
		}
		if sum == nil {
			sum = make([]float64, cols)
		}
		floats.Add(sum, r.Similarity.Row(idx))
		matched++
	}
	if matched == 0 {
		return nil, 0
	}
	floats.Scale(1/float64(matched), sum)
	return sum, matched
}

// rank 返回按分数降序排列的下标，分数相同时下标小的在前。NaN 视为最小。
func rank(scores []float64) []int {
	order := make([]int, len(scores))
	for i := range order {
		order[i] = i
	}
	key := func(i int) float64 {
		if s := scores[i]; !math.IsNaN(s) {
			return s
		}
		return math.Inf(-1)
	}
	sort.SliceStable(order, func(a, b int) bool {
		return key(order[a]) > key(order[b])
	})
	return order
}
