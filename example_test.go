package ocoprec_test

import (
	"context"
	"fmt"

	"github.com/rushteam/ocoprec"
	"github.com/rushteam/ocoprec/artifact"
	"github.com/rushteam/ocoprec/core"
	"github.com/rushteam/ocoprec/filter"
	"github.com/rushteam/ocoprec/pipeline"
	"github.com/rushteam/ocoprec/recall"
	"github.com/rushteam/ocoprec/rerank"
)

func Example() {
	catalog, _ := artifact.NewCatalog(map[string]map[string]any{
		"1": {"name": "Trà xanh"},
		"2": {"name": "Mật ong"},
		"3": {"name": "Miến dong"},
	})
	pre, _ := artifact.NewPrecomputed(map[string][]any{"1": {"3", "404", "2"}})

	var p *ocoprec.Pipeline = pipeline.New(
		recall.Node(&recall.ItemToItem{Precomputed: pre, Catalog: catalog}),
		&filter.MetadataNode{Catalog: catalog, Required: true},
		&rerank.TopNNode{N: 2},
	)
	p.Hook = func(node ocoprec.Node, in, out int) {
		fmt.Printf("%s(%s) %d -> %d\n", node.Name(), node.Kind(), in, out)
	}

	rctx := &core.RecommendContext{ProductID: core.MustNormalizeID(1)}
	items, err := p.Run(context.Background(), rctx, nil)
	if err != nil {
		fmt.Println(err)
		return
	}
	for _, it := range items {
		fmt.Println(it.ID, it.Product.Name)
	}
	fmt.Println("status:", rctx.Status())
	// Output:
	// recall.item_to_item(recall) 0 -> 3
	// filter.metadata(filter) 3 -> 2
	// rerank.topn(rerank) 2 -> 2
	// 3 Miến dong
	// 2 Mật ong
	// status: ok
}
