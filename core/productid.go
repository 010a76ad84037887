package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// ProductID 是商品的规范化标识。
//
// 上游会以十进制整数（CSV / 训练管线）或文档库 ObjectId 字符串的形式给出同一个商品，
// 任何 map 查找或相等比较之前都必须先经过 NormalizeID，数字形式与字符串形式规范化后相等。
type ProductID string

func (id ProductID) String() string { return string(id) }

// IsZero 表示空 ID。
func (id ProductID) IsZero() bool { return id == "" }

// Int 在 ID 为十进制整数时返回其数值。
func (id ProductID) Int() (int64, bool) {
	n, err := strconv.ParseInt(string(id), 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// NormalizeID 将任意表示的商品 ID 转为规范字符串形式：
//   - 整数（含 "12731"、"12731.0"、"+007"、JSON 数字 12731）→ "12731"
//   - 其他字符串（如 ObjectId）→ 去除首尾空白后原样保留
//
// 规则是幂等的：NormalizeID(NormalizeID(x)) == NormalizeID(x)。
func NormalizeID(v any) (ProductID, error) {
	switch val := v.(type) {
	case nil:
		return "", InvalidInput(ModuleRecall, "product id is empty")
	case ProductID:
		return normalizeIDString(string(val))
	case string:
		return normalizeIDString(val)
	case json.Number:
		return normalizeIDString(val.String())
	case int:
		return ProductID(strconv.FormatInt(int64(val), 10)), nil
	case int32:
		return ProductID(strconv.FormatInt(int64(val), 10)), nil
	case int64:
		return ProductID(strconv.FormatInt(val, 10)), nil
	case uint32:
		return ProductID(strconv.FormatUint(uint64(val), 10)), nil
	case uint64:
		return ProductID(strconv.FormatUint(val, 10)), nil
	case float32:
		return normalizeIDFloat(float64(val))
	case float64:
		return normalizeIDFloat(val)
	default:
		return "", InvalidInput(ModuleRecall, "unsupported product id type")
	}
}

// MustNormalizeID 用于测试和常量数据，非法输入返回空 ID。
func MustNormalizeID(v any) ProductID {
	id, err := NormalizeID(v)
	if err != nil {
		return ""
	}
	return id
}

func normalizeIDString(s string) (ProductID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", InvalidInput(ModuleRecall, "product id is empty")
	}
	if n, ok := parseIntegral(s); ok {
		return ProductID(strconv.FormatInt(n, 10)), nil
	}
	return ProductID(s), nil
}

func normalizeIDFloat(f float64) (ProductID, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || math.Abs(f) > 1<<53 {
		return "", InvalidInput(ModuleRecall, "product id must be an integer or a string")
	}
	return ProductID(strconv.FormatInt(int64(f), 10)), nil
}

// parseIntegral 识别 "123"、"-5"、"+007"、"123.0"、"123.000" 等整数写法。
func parseIntegral(s string) (int64, bool) {
	body := s
	if dot := strings.IndexByte(body, '.'); dot >= 0 {
		frac := body[dot+1:]
		if frac == "" || strings.Trim(frac, "0") != "" {
			return 0, false
		}
		body = body[:dot]
	}
	digits := strings.TrimLeft(body, "+-")
	if digits == "" || len(body)-len(digits) > 1 {
		return 0, false
	}
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, false
		}
	}
	n, err := strconv.ParseInt(body, 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

// CompareIDs 比较两个规范 ID：都为整数时按数值比较，否则按字典序。
func CompareIDs(a, b ProductID) int {
	ai, aok := a.Int()
	bi, bok := b.Int()
	switch {
	case aok && bok:
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	case aok:
		return -1
	case bok:
		return 1
	}
	return strings.Compare(string(a), string(b))
}

// IDSet 是规范 ID 的集合，保留首次插入顺序。
type IDSet struct {
	order []ProductID
	index map[ProductID]struct{}
}

// NewIDSet 由已规范化的 ID 构建集合，重复项只保留一次。
func NewIDSet(ids ...ProductID) *IDSet {
	s := &IDSet{index: make(map[ProductID]struct{}, len(ids))}
	for _, id := range ids {
		s.Add(id)
	}
	return s
}

// Add 加入一个 ID，返回是否为新元素。
func (s *IDSet) Add(id ProductID) bool {
	if s.index == nil {
		s.index = make(map[ProductID]struct{})
	}
	if _, ok := s.index[id]; ok {
		return false
	}
	s.index[id] = struct{}{}
	s.order = append(s.order, id)
	return true
}

func (s *IDSet) Has(id ProductID) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[id]
	return ok
}

func (s *IDSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// IDs 返回插入顺序的副本。
func (s *IDSet) IDs() []ProductID {
	if s == nil {
		return nil
	}
	out := make([]ProductID, len(s.order))
	copy(out, s.order)
	return out
}
