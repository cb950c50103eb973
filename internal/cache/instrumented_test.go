package cache

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

// counterValue reads the current value of a CounterVec for the given label.
func counterValue(cv *prometheus.CounterVec, label string) float64 {
	c, err := cv.GetMetricWithLabelValues(label)
	if err != nil {
		return 0
	}
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		return 0
	}
	return m.GetCounter().GetValue()
}

// isolateRegistry points the entries collectors at a fresh registry for the test.
func isolateRegistry(t *testing.T) *prometheus.Registry {
	t.Helper()
	reg := prometheus.NewRegistry()
	orig := registerer
	registerer = reg
	t.Cleanup(func() { registerer = orig })
	return reg
}

func TestInstrumentedCache_HitsAndMisses(t *testing.T) {
	isolateRegistry(t)
	c, err := New("memory", BackendConfig{Size: 10, TTL: time.Hour, Group: "test-hits"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	hits := counterValue(HitsTotal, "test-hits")
	misses := counterValue(MissesTotal, "test-hits")

	c.Set("k", []byte("v"))
	_, _ = c.Get("k")
	_, _ = c.Get("absent")
	_, _ = c.Get("absent")

	if d := counterValue(HitsTotal, "test-hits") - hits; d != 1 {
		t.Errorf("Expected 1 hit, got %.0f", d)
	}
	if d := counterValue(MissesTotal, "test-hits") - misses; d != 2 {
		t.Errorf("Expected 2 misses, got %.0f", d)
	}
}

func TestInstrumentedCache_Evictions(t *testing.T) {
	isolateRegistry(t)
	var evicted []string
	c, err := New("memory", BackendConfig{
		Size:    1,
		TTL:     time.Hour,
		Group:   "test-evict",
		OnEvict: func(key string, _ []byte) { evicted = append(evicted, key) },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer c.Close()

	before := counterValue(EvictionsTotal, "test-evict")
	c.Set("a", []byte("1"))
	c.Set("b", []byte("2"))

	if d := counterValue(EvictionsTotal, "test-evict") - before; d != 1 {
		t.Errorf("Expected 1 eviction, got %.0f", d)
	}
	if len(evicted) != 1 || evicted[0] != "a" {
		t.Errorf("Expected caller OnEvict to fire for a, got %v", evicted)
	}
}

func TestInstrumentedCache_EntriesGauge(t *testing.T) {
	reg := isolateRegistry(t)
	c, err := New("memory", BackendConfig{Size: 10, TTL: time.Hour, Group: "test-entries"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	entries := func() float64 {
		mfs, _ := reg.Gather()
		for _, mf := range mfs {
			if mf.GetName() != "animeproviders_cache_entries" {
				continue
			}
			for _, m := range mf.GetMetric() {
				for _, lp := range m.GetLabel() {
					if lp.GetName() == "cache" && lp.GetValue() == "test-entries" {
						return m.GetGauge().GetValue()
					}
				}
			}
		}
		return -1
	}

	if v := entries(); v != 0 {
		t.Fatalf("Expected 0 entries, got %.0f", v)
	}
	c.Set("x", []byte("1"))
	c.Set("y", []byte("2"))
	if v := entries(); v != 2 {
		t.Errorf("Expected 2 entries, got %.0f", v)
	}

	_ = c.Close()
	if v := entries(); v != -1 {
		t.Errorf("Expected the gauge to disappear after Close, got %.0f", v)
	}
}
