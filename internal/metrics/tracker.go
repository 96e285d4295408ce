package metrics

import (
	"sort"
	"sync"
	"time"
)

const defaultSampleWindow = 128

// Stats summarizes recorded latencies for one component.
type Stats struct {
	Component string
	Count     int64
	Min       time.Duration
	Max       time.Duration
	Avg       time.Duration
	P95       time.Duration
}

type componentSamples struct {
	count   int64
	total   time.Duration
	min     time.Duration
	max     time.Duration
	recent  []time.Duration
	nextIdx int
}

// Tracker records per-component operation latencies reported by the
// backend (component_timing events) and serves rolling statistics to the
// metrics panel.
type Tracker struct {
	mu         sync.RWMutex
	components map[string]*componentSamples
	window     int
}

func NewTracker() *Tracker {
	return &Tracker{
		components: make(map[string]*componentSamples),
		window:     defaultSampleWindow,
	}
}

func (t *Tracker) Record(component string, d time.Duration) {
	if component == "" || d < 0 {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	cs, ok := t.components[component]
	if !ok {
		cs = &componentSamples{min: d, max: d}
		t.components[component] = cs
	}

	cs.count++
	cs.total += d
	if d < cs.min {
		cs.min = d
	}
	if d > cs.max {
		cs.max = d
	}

	if len(cs.recent) < t.window {
		cs.recent = append(cs.recent, d)
	} else {
		cs.recent[cs.nextIdx] = d
		cs.nextIdx = (cs.nextIdx + 1) % t.window
	}
}

// Stats returns statistics for one component, with ok=false when nothing
// was recorded for it.
func (t *Tracker) Stats(component string) (Stats, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	cs, ok := t.components[component]
	if !ok {
		return Stats{}, false
	}
	return cs.stats(component), true
}

// Snapshot returns statistics for every tracked component, sorted by name.
func (t *Tracker) Snapshot() []Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]Stats, 0, len(t.components))
	for name, cs := range t.components {
		out = append(out, cs.stats(name))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Component < out[j].Component })
	return out
}

func (cs *componentSamples) stats(name string) Stats {
	s := Stats{
		Component: name,
		Count:     cs.count,
		Min:       cs.min,
		Max:       cs.max,
	}
	if cs.count > 0 {
		s.Avg = cs.total / time.Duration(cs.count)
	}
	s.P95 = percentile95(cs.recent)
	return s
}

// percentile95 computes p95 over the recent sample window.
func percentile95(samples []time.Duration) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	sorted := make([]time.Duration, len(samples))
	copy(sorted, samples)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	idx := (len(sorted) * 95) / 100
	if idx >= len(sorted) {
		idx = len(sorted) - 1
	}
	return sorted[idx]
}
