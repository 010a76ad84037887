// Package dsl 用 CEL (Common Expression Language) 实现商品行的过滤表达式。
//
// 表达式可访问两个变量：
//   - product：商品字段 map（id, name, category, origin, price, ocop_rating,
//     num_reviews, sold, count_in_stock, active），缺失的数值为 null
//   - label：Item 的标签值（map[string]string）
//
// 示例：
//   - `product.price < 100000 && product.ocop_rating >= 4`
//   - `product.name.contains("Trà")`
//   - `product.sold != null && product.sold > 100`
//   - `label.recall_source == "popular"`
package dsl

import (
	"fmt"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/rushteam/ocoprec/core"
)

var (
	// celEnv 是全局的 CEL 环境，线程安全，可复用
	celEnv     *cel.Env
	celEnvErr  error
	celEnvOnce sync.Once
)

func getCELEnv() (*cel.Env, error) {
	celEnvOnce.Do(func() {
		celEnv, celEnvErr = cel.NewEnv(
			cel.Variable("product", cel.MapType(cel.StringType, cel.DynType)),
			cel.Variable("label", cel.MapType(cel.StringType, cel.StringType)),
			cel.CrossTypeNumericComparisons(true),
		)
	})
	return celEnv, celEnvErr
}

// Program 是编译后的表达式，可被多个 goroutine 并发求值。
type Program struct {
	expr string
	prg  cel.Program
}

// Compile 编译表达式。语法错误或结果不是 bool 时返回 INVALID_INPUT。
func Compile(expr string) (*Program, error) {
	env, err := getCELEnv()
	if err != nil {
		return nil, fmt.Errorf("init cel env: %w", err)
	}
	ast, issues := env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
			"invalid filter expression", issues.Err())
	}
	if t := ast.OutputType(); !t.IsExactType(cel.BoolType) && !t.IsExactType(cel.DynType) {
		return nil, core.InvalidInput(core.ModuleCatalog,
			fmt.Sprintf("filter expression must return bool, got %s", t))
	}
	prg, err := env.Program(ast)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleCatalog, core.ErrorCodeInvalidInput,
			"invalid filter expression", err)
	}
	return &Program{expr: expr, prg: prg}, nil
}

// String 返回原始表达式。
func (p *Program) String() string { return p.expr }

// Eval 对一个 Item 求值。Item 未挂载 Product 时 product 为空 map。
func (p *Program) Eval(item *core.Item) (bool, error) {
	product := map[string]any{}
	if item.Product != nil {
		product = item.Product.Fields()
	}
	labels := make(map[string]string, len(item.Labels))
	for k, v := range item.Labels {
		labels[k] = v.Value
	}

	out, _, err := p.prg.Eval(map[string]any{
		"product": product,
		"label":   labels,
	})
	if err != nil {
		// 访问不存在的 key 或对 null 做比较都会在这里报错
		return false, fmt.Errorf("eval %q: %w", p.expr, err)
	}
	result, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("expression must return boolean, got %T", out.Value())
	}
	return result, nil
}
