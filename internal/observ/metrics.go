package observ

import (
	"sort"
	"strings"
	"sync"
)

// In-process metrics registry. Simulator components record counters and
// gauges as they run; callers dump a Snapshot at the end of a run instead of
// scraping an endpoint.

type registry struct {
	mu       sync.Mutex
	counters map[string]map[string]int64
	gauges   map[string]map[string]float64
}

var reg = &registry{
	counters: map[string]map[string]int64{},
	gauges:   map[string]map[string]float64{},
}

// canonicalize label map so key order is stable
func canonLabels(lbl map[string]string) string {
	if len(lbl) == 0 {
		return ""
	}
	keys := make([]string, 0, len(lbl))
	for k := range lbl {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	for i, k := range keys {
		if i > 0 {
			b.WriteString(",")
		}
		b.WriteString(k)
		b.WriteString("=")
		b.WriteString(lbl[k])
	}
	return b.String()
}

func IncCounter(name string, labels map[string]string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	m, ok := reg.counters[name]
	if !ok {
		m = map[string]int64{}
		reg.counters[name] = m
	}
	m[canonLabels(labels)]++
}

func SetGauge(name string, value float64, labels map[string]string) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	m, ok := reg.gauges[name]
	if !ok {
		m = map[string]float64{}
		reg.gauges[name] = m
	}
	m[canonLabels(labels)] = value
}

// Snapshot holds a point-in-time copy of every counter and gauge.
type Snapshot struct {
	Counters map[string]map[string]int64   `json:"counters"`
	Gauges   map[string]map[string]float64 `json:"gauges"`
}

// Snap copies the registry so callers can log or serialize it safely.
func Snap() Snapshot {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	s := Snapshot{
		Counters: make(map[string]map[string]int64, len(reg.counters)),
		Gauges:   make(map[string]map[string]float64, len(reg.gauges)),
	}
	for name, byLabel := range reg.counters {
		m := make(map[string]int64, len(byLabel))
		for k, v := range byLabel {
			m[k] = v
		}
		s.Counters[name] = m
	}
	for name, byLabel := range reg.gauges {
		m := make(map[string]float64, len(byLabel))
		for k, v := range byLabel {
			m[k] = v
		}
		s.Gauges[name] = m
	}
	return s
}

// ResetMetrics clears the registry. Intended for tests.
func ResetMetrics() {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	reg.counters = map[string]map[string]int64{}
	reg.gauges = map[string]map[string]float64{}
}
