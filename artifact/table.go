package artifact

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/rushteam/ocoprec/core"
)

// 商品表中识别的列（规范名）。
const (
	ColumnProductID  = "product_id"
	ColumnName       = "name"
	ColumnPrice      = "price"
	ColumnImage      = "image_url"
	ColumnProductURL = "product_url"
	ColumnCategory   = "category"
	ColumnOrigin     = "origin"
	ColumnRating     = "ocop_rating"
	ColumnNumReviews = "num_reviews"
	ColumnSold       = "sold"
	ColumnStock      = "countInStock"
	ColumnActive     = "isActive"
	ColumnCreatedAt  = "createdAt"
)

// columnAliases 将表头别名映射到规范列名。
var columnAliases = map[string]string{
	"product_id":     ColumnProductID,
	"id":             ColumnProductID,
	"_id":            ColumnProductID,
	"name":           ColumnName,
	"price":          ColumnPrice,
	"image_url":      ColumnImage,
	"image":          ColumnImage,
	"product_url":    ColumnProductURL,
	"category":       ColumnCategory,
	"origin":         ColumnOrigin,
	"province":       ColumnOrigin,
	"ocop_rating":    ColumnRating,
	"num_reviews":    ColumnNumReviews,
	"numreviews":     ColumnNumReviews,
	"sold":           ColumnSold,
	"countinstock":   ColumnStock,
	"count_in_stock": ColumnStock,
	"stock_count":    ColumnStock,
	"isactive":       ColumnActive,
	"is_active":      ColumnActive,
	"active":         ColumnActive,
	"createdat":      ColumnCreatedAt,
	"created_at":     ColumnCreatedAt,
}

// Table 是商品的表格视图，每行一个商品，行序即文件顺序。
// 可以来自 CSV，也可以由 Catalog.Table 从元数据合成。
type Table struct {
	rows        []*core.Product
	columns     map[string]bool
	synthesized bool
}

// NewTable 由行与列集合构建表，主要用于测试和嵌入。
func NewTable(rows []*core.Product, columns ...string) *Table {
	t := &Table{rows: rows, columns: make(map[string]bool, len(columns))}
	for _, c := range columns {
		t.columns[c] = true
	}
	return t
}

// LoadTable 读取带表头的 CSV，product_id 列必需，未识别的列忽略。
// product_id 无法规范化的行会被跳过。
func LoadTable(path string) (*Table, error) {
	data, err := readFile("product table", path)
	if err != nil {
		return nil, err
	}
	t, err := DecodeTable(bytes.NewReader(data))
	if err != nil {
		return nil, invalid("product table", path, err)
	}
	return t, nil
}

// DecodeTable 从 CSV 流解码商品表。
func DecodeTable(r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("missing header row")
		}
		return nil, err
	}

	t := &Table{columns: make(map[string]bool)}
	// 列位置 → 规范列名，未识别的列为空
	names := make([]string, len(header))
	idCol := -1
	for i, h := range header {
		h = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
		col, ok := columnAliases[strings.ToLower(h)]
		if !ok {
			continue
		}
		if t.columns[col] {
			// 同一列的多个别名只取第一个
			continue
		}
		names[i] = col
		t.columns[col] = true
		if col == ColumnProductID {
			idCol = i
		}
	}
	if idCol < 0 {
		return nil, fmt.Errorf("missing %s column", ColumnProductID)
	}

	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if idCol >= len(record) {
			continue
		}
		id, err := core.NormalizeID(record[idCol])
		if err != nil {
			continue
		}
		fields := make(map[string]any, len(names))
		for i, col := range names {
			if col == "" || col == ColumnProductID || i >= len(record) {
				continue
			}
			if v := strings.TrimSpace(record[i]); v != "" {
				fields[col] = v
			}
		}
		t.rows = append(t.rows, core.ProductFromMap(id, fields))
	}
	return t, nil
}

// Rows 返回全部行（切片副本，记录本身只读）。
func (t *Table) Rows() []*core.Product {
	if t == nil {
		return nil
	}
	out := make([]*core.Product, len(t.rows))
	copy(out, t.rows)
	return out
}

func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.rows)
}

// HasColumn 判断表中是否存在某个规范列。
func (t *Table) HasColumn(col string) bool {
	if t == nil {
		return false
	}
	return t.columns[col]
}

// Synthesized 表示该表由元数据合成而不是读自 CSV。
func (t *Table) Synthesized() bool {
	return t != nil && t.synthesized
}
