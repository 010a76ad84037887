package artifact

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/goccy/go-json"

	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/pkg/conv"
)

// IndexMap 是 ProductID 与相似度矩阵行号之间的双射。
// 正向 key 在构建时规范化一次，反向映射同时建好，之后只读。
type IndexMap struct {
	forward map[core.ProductID]int
	reverse map[int]core.ProductID
}

// NewIndexMap 由原始映射构建双射。以下情况返回错误：
// 行号为负、两个 ID 指向同一行、两个原始 key 规范化后相同。
func NewIndexMap(raw map[string]int) (*IndexMap, error) {
	m := &IndexMap{
		forward: make(map[core.ProductID]int, len(raw)),
		reverse: make(map[int]core.ProductID, len(raw)),
	}
	// 固定遍历顺序，使错误信息可复现
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	origin := make(map[core.ProductID]string, len(raw))
	for _, key := range keys {
		idx := raw[key]
		id, err := core.NormalizeID(key)
		if err != nil {
			return nil, fmt.Errorf("index map key %q: %w", key, err)
		}
		if idx < 0 {
			return nil, fmt.Errorf("index map key %q: negative row index %d", key, idx)
		}
		if prev, dup := origin[id]; dup {
			return nil, fmt.Errorf("index map keys %q and %q normalize to the same id %q", prev, key, id)
		}
		if other, dup := m.reverse[idx]; dup {
			return nil, fmt.Errorf("row index %d is mapped by both %q and %q", idx, other, id)
		}
		origin[id] = key
		m.forward[id] = idx
		m.reverse[idx] = id
	}
	return m, nil
}

// LoadIndexMap 读取 JSON 形式的映射文件。支持两种形状：
//   - object：{"12731": 0, "12732": 1}，行号可为数字或整数字符串
//   - array：["12731", "12732"]，元素位置即行号
func LoadIndexMap(path string) (*IndexMap, error) {
	data, err := readFile("index map", path)
	if err != nil {
		return nil, err
	}
	raw, err := decodeIndexMap(data)
	if err != nil {
		return nil, invalid("index map", path, err)
	}
	m, err := NewIndexMap(raw)
	if err != nil {
		return nil, invalid("index map", path, err)
	}
	return m, nil
}

func decodeIndexMap(data []byte) (map[string]int, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var list []any
		if err := json.Unmarshal(data, &list); err != nil {
			return nil, err
		}
		raw := make(map[string]int, len(list))
		for i, v := range list {
			id, err := core.NormalizeID(v)
			if err != nil {
				return nil, fmt.Errorf("index map element %d: %w", i, err)
			}
			if _, dup := raw[string(id)]; dup {
				return nil, fmt.Errorf("index map element %d: duplicate id %q", i, id)
			}
			raw[string(id)] = i
		}
		return raw, nil
	}

	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	raw := make(map[string]int, len(doc))
	for k, v := range doc {
		f, ok := conv.ParseFloat(v)
		if !ok || f != float64(int(f)) {
			return nil, fmt.Errorf("index map key %q: row index %v is not an integer", k, v)
		}
		raw[k] = int(f)
	}
	return raw, nil
}

// Index 返回商品对应的矩阵行号。
func (m *IndexMap) Index(id core.ProductID) (int, bool) {
	if m == nil {
		return 0, false
	}
	idx, ok := m.forward[id]
	return idx, ok
}

// ID 返回行号对应的商品。
func (m *IndexMap) ID(idx int) (core.ProductID, bool) {
	if m == nil {
		return "", false
	}
	id, ok := m.reverse[idx]
	return id, ok
}

func (m *IndexMap) Len() int {
	if m == nil {
		return 0
	}
	return len(m.forward)
}

// Restrict 丢弃行号 >= rows 的条目，返回新的映射与被丢弃的 ID（升序）。
func (m *IndexMap) Restrict(rows int) (*IndexMap, []core.ProductID) {
	out := &IndexMap{
		forward: make(map[core.ProductID]int, m.Len()),
		reverse: make(map[int]core.ProductID, m.Len()),
	}
	var dropped []core.ProductID
	if m == nil {
		return out, nil
	}
	for id, idx := range m.forward {
		if idx >= rows {
			dropped = append(dropped, id)
			continue
		}
		out.forward[id] = idx
		out.reverse[idx] = id
	}
	sort.Slice(dropped, func(i, j int) bool { return core.CompareIDs(dropped[i], dropped[j]) < 0 })
	return out, dropped
}
