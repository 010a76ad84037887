package artifact

import (
	"fmt"

	"github.com/goccy/go-json"

	"github.com/rushteam/ocoprec/core"
)

// Precomputed 是离线排好序的邻居列表（ProductID → []ProductID）。
// 列表顺序即离线排名，本层只读不重排。
type Precomputed struct {
	neighbors map[core.ProductID][]core.ProductID
}

// NewPrecomputed 规范化 key 与邻居 ID；无法规范化的邻居会被跳过，顺序保持不变。
func NewPrecomputed(raw map[string][]any) (*Precomputed, error) {
	p := &Precomputed{neighbors: make(map[core.ProductID][]core.ProductID, len(raw))}
	origin := make(map[core.ProductID]string, len(raw))
	for key, list := range raw {
		id, err := core.NormalizeID(key)
		if err != nil {
			return nil, fmt.Errorf("precomputed key %q: %w", key, err)
		}
		if prev, dup := origin[id]; dup {
			return nil, fmt.Errorf("precomputed keys %q and %q normalize to the same id %q", prev, key, id)
		}
		origin[id] = key
		ids := make([]core.ProductID, 0, len(list))
		for _, v := range list {
			nid, err := core.NormalizeID(v)
			if err != nil {
				continue
			}
			ids = append(ids, nid)
		}
		p.neighbors[id] = ids
	}
	return p, nil
}

// LoadPrecomputed 从 JSON 文件（{id: [neighborID, ...]}）加载预计算推荐。
func LoadPrecomputed(path string) (*Precomputed, error) {
	data, err := readFile("precomputed recommendations", path)
	if err != nil {
		return nil, err
	}
	var raw map[string][]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, invalid("precomputed recommendations", path, err)
	}
	p, err := NewPrecomputed(raw)
	if err != nil {
		return nil, invalid("precomputed recommendations", path, err)
	}
	return p, nil
}

// Neighbors 返回商品的邻居列表；ok 为 false 表示该商品没有预计算条目。
// 返回的切片不可修改。
func (p *Precomputed) Neighbors(id core.ProductID) ([]core.ProductID, bool) {
	if p == nil {
		return nil, false
	}
	ids, ok := p.neighbors[id]
	return ids, ok
}

func (p *Precomputed) Len() int {
	if p == nil {
		return 0
	}
	return len(p.neighbors)
}
