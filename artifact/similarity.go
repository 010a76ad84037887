package artifact

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/rushteam/ocoprec/core"
)

// Similarity 把方阵与行号映射绑在一起。构建后 IndexMap 中的每个行号都小于矩阵行数。
type Similarity struct {
	matrix *mat.Dense
	index  *IndexMap
}

// NewSimilarity 校验矩阵为方阵，并丢弃越界的映射条目，dropped 返回被丢弃的 ID。
// 矩阵的对称性不做检查。
func NewSimilarity(m *mat.Dense, index *IndexMap) (s *Similarity, dropped []core.ProductID, err error) {
	if m == nil || m.IsEmpty() {
		return nil, nil, fmt.Errorf("similarity matrix is empty")
	}
	rows, cols := m.Dims()
	if rows != cols {
		return nil, nil, fmt.Errorf("similarity matrix must be square, got %dx%d", rows, cols)
	}
	restricted, dropped := index.Restrict(rows)
	return &Similarity{matrix: m, index: restricted}, dropped, nil
}

// Dims 返回矩阵的行数与列数。
func (s *Similarity) Dims() (rows, cols int) {
	return s.matrix.Dims()
}

// Row 返回第 i 行的只读视图，调用方不得修改。
func (s *Similarity) Row(i int) []float64 {
	return s.matrix.RawRowView(i)
}

// Index 返回商品的行号，越界或未知的商品返回 false。
func (s *Similarity) Index(id core.ProductID) (int, bool) {
	return s.index.Index(id)
}

// ID 返回行号对应的商品。
func (s *Similarity) ID(i int) (core.ProductID, bool) {
	return s.index.ID(i)
}

// IndexMap 返回已按矩阵大小裁剪的映射。
func (s *Similarity) IndexMap() *IndexMap {
	return s.index
}
