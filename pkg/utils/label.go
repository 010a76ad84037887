package utils

// Label 用于解释推荐结果与透传请求状态：可解释、可追踪。
// Value 与 Source 的语义由调用方定义，这里只提供标准化的合并规则。
type Label struct {
	Value  string `json:"value"`
	Source string `json:"source"` // recall.* / filter.* / rerank.* ...
}

// MergeLabel 用于合并同名 Label，保留历史：
// - Value: 以 '|' 累积
// - Source: 以 ',' 累积
func MergeLabel(existing Label, incoming Label) Label {
	if existing.Value == "" {
		return incoming
	}
	if incoming.Value == "" {
		return existing
	}

	merged := existing
	merged.Value = existing.Value + "|" + incoming.Value
	switch {
	case existing.Source == "":
		merged.Source = incoming.Source
	case incoming.Source == "":
		merged.Source = existing.Source
	default:
		merged.Source = existing.Source + "," + incoming.Source
	}
	return merged
}

// LastValue 返回累积 Value 中最后一次写入的部分。
func (l Label) LastValue() string {
	for i := len(l.Value) - 1; i >= 0; i-- {
		if l.Value[i] == '|' {
			return l.Value[i+1:]
		}
	}
	return l.Value
}
