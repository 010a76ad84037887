package artifact

import (
	"fmt"
	"sort"

	"github.com/goccy/go-json"

	"github.com/rushteam/ocoprec/core"
)

// Catalog 是商品元数据映射（ProductID → Product），加载后只读。
type Catalog struct {
	products map[core.ProductID]*core.Product
	ids      []core.ProductID // 按 ID 升序，保证遍历确定
}

// NewCatalog 由原始元数据构建 Catalog，key 会被规范化；
// 两个原始 key 规范化后相同时返回错误。
func NewCatalog(raw map[string]map[string]any) (*Catalog, error) {
	c := &Catalog{products: make(map[core.ProductID]*core.Product, len(raw))}
	origin := make(map[core.ProductID]string, len(raw))
	for key, fields := range raw {
		id, err := core.NormalizeID(key)
		if err != nil {
			return nil, fmt.Errorf("metadata key %q: %w", key, err)
		}
		if prev, dup := origin[id]; dup {
			return nil, fmt.Errorf("metadata keys %q and %q normalize to the same id %q", prev, key, id)
		}
		origin[id] = key
		c.products[id] = core.ProductFromMap(id, fields)
		c.ids = append(c.ids, id)
	}
	sort.Slice(c.ids, func(i, j int) bool { return core.CompareIDs(c.ids[i], c.ids[j]) < 0 })
	return c, nil
}

// LoadCatalog 从 JSON 文件（{id: {name, price, ...}}）加载元数据。
func LoadCatalog(path string) (*Catalog, error) {
	data, err := readFile("metadata", path)
	if err != nil {
		return nil, err
	}
	var doc map[string]any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, invalid("metadata", path, err)
	}
	raw := make(map[string]map[string]any, len(doc))
	for k, v := range doc {
		// 非 object 的条目按空记录处理
		fields, _ := v.(map[string]any)
		raw[k] = fields
	}
	c, err := NewCatalog(raw)
	if err != nil {
		return nil, invalid("metadata", path, err)
	}
	return c, nil
}

// Product 按规范 ID 查找元数据。
func (c *Catalog) Product(id core.ProductID) (*core.Product, bool) {
	if c == nil {
		return nil, false
	}
	p, ok := c.products[id]
	return p, ok
}

// Has 判断商品是否存在于元数据中。
func (c *Catalog) Has(id core.ProductID) bool {
	_, ok := c.Product(id)
	return ok
}

func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.ids)
}

// IDs 返回升序排列的全部商品 ID（副本）。
func (c *Catalog) IDs() []core.ProductID {
	if c == nil {
		return nil
	}
	out := make([]core.ProductID, len(c.ids))
	copy(out, c.ids)
	return out
}

// Table 从元数据合成商品表，用于没有 CSV 表格时的列表与排序。
func (c *Catalog) Table() *Table {
	t := &Table{
		columns: map[string]bool{
			ColumnName:       true,
			ColumnPrice:      true,
			ColumnCategory:   true,
			ColumnOrigin:     true,
			ColumnRating:     true,
			ColumnNumReviews: true,
			ColumnSold:       true,
		},
		synthesized: true,
	}
	if c == nil {
		return t
	}
	t.rows = make([]*core.Product, 0, len(c.ids))
	for _, id := range c.ids {
		p := c.products[id]
		if p.Active != nil {
			t.columns[ColumnActive] = true
		}
		if p.CreatedAt != nil {
			t.columns[ColumnCreatedAt] = true
		}
		t.rows = append(t.rows, p)
	}
	return t
}
