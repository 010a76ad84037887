package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetrics_Observe(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	start := time.Now()
	m.ObserveRequest("get_recommendations", "ok", start)
	m.ObserveRequest("get_recommendations", "ok", start)
	m.ObserveRequest("get_user_recommendations", "no_match", start)
	m.CacheLookup("hit")
	m.CacheLookup("miss")
	m.SetCatalogItems(42)

	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("get_recommendations", "ok")); got != 2 {
		t.Errorf("requests ok = %v, 期望 2", got)
	}
	if got := testutil.ToFloat64(m.RequestsTotal.WithLabelValues("get_user_recommendations", "no_match")); got != 1 {
		t.Errorf("requests no_match = %v, 期望 1", got)
	}
	if got := testutil.ToFloat64(m.CatalogItems); got != 42 {
		t.Errorf("catalog items = %v, 期望 42", got)
	}
	if got := testutil.CollectAndCount(m.RequestDuration); got != 2 {
		t.Errorf("duration series = %d, 期望 2", got)
	}

	expected := `
# HELP ocoprec_cache_lookups_total Total number of result cache lookups by result
# TYPE ocoprec_cache_lookups_total counter
ocoprec_cache_lookups_total{result="hit"} 1
ocoprec_cache_lookups_total{result="miss"} 1
`
	if err := testutil.GatherAndCompare(reg, strings.NewReader(expected), "ocoprec_cache_lookups_total"); err != nil {
		t.Error(err)
	}
}

func TestMetrics_Lint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)
	m.ObserveRequest("get_products", "ok", time.Now())

	problems, err := testutil.GatherAndLint(reg)
	if err != nil {
		t.Fatal(err)
	}
	for _, p := range problems {
		t.Errorf("lint: %s: %s", p.Metric, p.Text)
	}
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	m.ObserveRequest("x", "ok", time.Now())
	m.CacheLookup("hit")
	m.SetCatalogItems(1)
}
