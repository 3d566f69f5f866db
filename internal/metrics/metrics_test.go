package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestObserveCacheLookup_RecordsHitsAndMisses(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.ObserveCacheLookup("contract", true)
	r.ObserveCacheLookup("contract", true)
	r.ObserveCacheLookup("contract", false)

	if got := counterValue(t, r.CacheHits.WithLabelValues("contract")); got != 2 {
		t.Errorf("hits = %v, want 2", got)
	}
	if got := counterValue(t, r.CacheMisses.WithLabelValues("contract")); got != 1 {
		t.Errorf("misses = %v, want 1", got)
	}
}

func TestObserveCacheLookup_NilRegistry_NoPanic(t *testing.T) {
	var r *Registry
	r.ObserveCacheLookup("contract", true)
}

func TestNew_RegistersDistinctCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("Gather() error = %v", err)
	}
	if len(families) == 0 {
		t.Fatal("expected at least one registered metric family")
	}
}

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	m := &dto.Metric{}
	if err := c.Write(m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetCounter().GetValue()
}
