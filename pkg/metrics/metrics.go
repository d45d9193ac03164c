// Run metrics for the post processor
//
// Counters, gauges and histograms keyed by label sets, rendered in the
// Prometheus text exposition format or as a flat snapshot for tables.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package metrics

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MetricType represents the type of metric
type MetricType int

const (
	TypeCounter MetricType = iota
	TypeGauge
	TypeHistogram
)

func (t MetricType) String() string {
	switch t {
	case TypeCounter:
		return "counter"
	case TypeGauge:
		return "gauge"
	case TypeHistogram:
		return "histogram"
	default:
		return "unknown"
	}
}

// Labels represents metric labels as key-value pairs
type Labels map[string]string

// Key returns a stable key for the label set.
func (l Labels) Key() string {
	if len(l) == 0 {
		return ""
	}
	keys := l.keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + "=" + l[k]
	}
	return strings.Join(parts, ",")
}

// String returns labels in Prometheus format
func (l Labels) String() string {
	if len(l) == 0 {
		return ""
	}
	keys := l.keys()
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + `="` + escapeLabel(l[k]) + `"`
	}
	return "{" + strings.Join(parts, ",") + "}"
}

// Clone creates a copy of the labels
func (l Labels) Clone() Labels {
	result := make(Labels, len(l))
	for k, v := range l {
		result[k] = v
	}
	return result
}

func (l Labels) keys() []string {
	keys := make([]string, 0, len(l))
	for k := range l {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func escapeLabel(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`).Replace(s)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

// Sample is one labelled value of a metric.
type Sample struct {
	Name   string
	Labels Labels
	Value  float64
}

// Metric is the interface for all metric types
type Metric interface {
	Name() string
	Help() string
	Type() MetricType
	Samples() []Sample
}

// series holds the per-label-set values of one metric.
type series struct {
	name string
	help string

	mu     sync.Mutex
	values map[string]*value
}

type value struct {
	labels  Labels
	v       float64
	count   uint64
	buckets []uint64
}

func newSeries(name, help string) series {
	return series{name: name, help: help, values: make(map[string]*value)}
}

func (s *series) Name() string { return s.name }
func (s *series) Help() string { return s.help }

// get returns the value for labels, creating it. Callers hold s.mu.
func (s *series) get(labels Labels) *value {
	key := labels.Key()
	v, ok := s.values[key]
	if !ok {
		v = &value{labels: labels.Clone()}
		s.values[key] = v
	}
	return v
}

func (s *series) load(labels Labels) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.values[labels.Key()]; ok {
		return v.v
	}
	return 0
}

// sorted returns the values ordered by label key. Callers hold s.mu.
func (s *series) sorted() []*value {
	keys := make([]string, 0, len(s.values))
	for k := range s.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*value, len(keys))
	for i, k := range keys {
		out[i] = s.values[k]
	}
	return out
}

func (s *series) samples() []Sample {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []Sample
	for _, v := range s.sorted() {
		out = append(out, Sample{Name: s.name, Labels: v.labels.Clone(), Value: v.v})
	}
	return out
}

// Counter is a monotonically increasing metric
type Counter struct{ series }

// NewCounter creates a new counter metric
func NewCounter(name, help string) *Counter {
	return &Counter{newSeries(name, help)}
}

func (c *Counter) Type() MetricType { return TypeCounter }

// Inc increments the counter by 1
func (c *Counter) Inc(labels Labels) {
	c.Add(labels, 1)
}

// Add increments the counter by delta.
func (c *Counter) Add(labels Labels, delta uint64) {
	c.mu.Lock()
	c.get(labels).v += float64(delta)
	c.mu.Unlock()
}

// Get returns the current counter value for labels
func (c *Counter) Get(labels Labels) uint64 {
	return uint64(c.load(labels))
}

// Total sums the counter over all label sets.
func (c *Counter) Total() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	var sum float64
	for _, v := range c.values {
		sum += v.v
	}
	return uint64(sum)
}

func (c *Counter) Samples() []Sample { return c.samples() }

// Gauge is a metric that can go up and down
type Gauge struct{ series }

// NewGauge creates a new gauge metric
func NewGauge(name, help string) *Gauge {
	return &Gauge{newSeries(name, help)}
}

func (g *Gauge) Type() MetricType { return TypeGauge }

// Set sets the gauge to the given value
func (g *Gauge) Set(labels Labels, v float64) {
	g.mu.Lock()
	g.get(labels).v = v
	g.mu.Unlock()
}

// Add adds delta to the gauge.
func (g *Gauge) Add(labels Labels, delta float64) {
	g.mu.Lock()
	g.get(labels).v += delta
	g.mu.Unlock()
}

// Max raises the gauge to v if v is larger.
func (g *Gauge) Max(labels Labels, v float64) {
	g.mu.Lock()
	if val := g.get(labels); v > val.v {
		val.v = v
	}
	g.mu.Unlock()
}

// Get returns the current gauge value for labels
func (g *Gauge) Get(labels Labels) float64 {
	return g.load(labels)
}

func (g *Gauge) Samples() []Sample { return g.samples() }

// Histogram tracks the distribution of observations
type Histogram struct {
	series
	bounds []float64
}

// NewHistogram creates a new histogram metric with the given bucket bounds.
func NewHistogram(name, help string, bounds []float64) *Histogram {
	sorted := append([]float64(nil), bounds...)
	sort.Float64s(sorted)
	return &Histogram{series: newSeries(name, help), bounds: sorted}
}

// LinearBuckets creates count buckets starting at start with width intervals
func LinearBuckets(start, width float64, count int) []float64 {
	buckets := make([]float64, count)
	for i := range buckets {
		buckets[i] = start + float64(i)*width
	}
	return buckets
}

func (h *Histogram) Type() MetricType { return TypeHistogram }

// Observe records a value in the histogram. The value field holds the sum.
func (h *Histogram) Observe(labels Labels, v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	val := h.get(labels)
	if val.buckets == nil {
		val.buckets = make([]uint64, len(h.bounds))
	}
	val.count++
	val.v += v
	for i, bound := range h.bounds {
		if v <= bound {
			val.buckets[i]++
		}
	}
}

// Timer returns a function that records the elapsed seconds when called.
func (h *Histogram) Timer(labels Labels) func() {
	start := time.Now()
	return func() {
		h.Observe(labels, time.Since(start).Seconds())
	}
}

// Count returns the number of observations for labels.
func (h *Histogram) Count(labels Labels) uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if v, ok := h.values[labels.Key()]; ok {
		return v.count
	}
	return 0
}

// Samples reports the _count and _sum series.
func (h *Histogram) Samples() []Sample {
	h.mu.Lock()
	defer h.mu.Unlock()
	var out []Sample
	for _, v := range h.sorted() {
		out = append(out,
			Sample{Name: h.name + "_count", Labels: v.labels.Clone(), Value: float64(v.count)},
			Sample{Name: h.name + "_sum", Labels: v.labels.Clone(), Value: v.v})
	}
	return out
}

func (h *Histogram) writeBuckets(sb *strings.Builder) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for _, v := range h.sorted() {
		for i, bound := range h.bounds {
			l := v.labels.Clone()
			l["le"] = formatFloat(bound)
			fmt.Fprintf(sb, "%s_bucket%s %d\n", h.name, l, v.buckets[i])
		}
		l := v.labels.Clone()
		l["le"] = "+Inf"
		fmt.Fprintf(sb, "%s_bucket%s %d\n", h.name, l, v.count)
	}
}

// Registry holds all registered metrics
type Registry struct {
	mu      sync.RWMutex
	metrics map[string]Metric
	order   []string
}

// NewRegistry creates a new metrics registry
func NewRegistry() *Registry {
	return &Registry{metrics: make(map[string]Metric)}
}

// Register adds a metric to the registry
func (r *Registry) Register(metric Metric) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := metric.Name()
	if _, exists := r.metrics[name]; exists {
		return fmt.Errorf("metric %q already registered", name)
	}
	r.metrics[name] = metric
	r.order = append(r.order, name)
	return nil
}

// MustRegister adds a metric and panics on error
func (r *Registry) MustRegister(metrics ...Metric) {
	for _, m := range metrics {
		if err := r.Register(m); err != nil {
			panic(err)
		}
	}
}

// Get returns a metric by name
func (r *Registry) Get(name string) Metric {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.metrics[name]
}

// Snapshot returns every sample in registration order.
func (r *Registry) Snapshot() []Sample {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Sample
	for _, name := range r.order {
		out = append(out, r.metrics[name].Samples()...)
	}
	return out
}

// Gather renders all metrics in Prometheus text format
func (r *Registry) Gather() string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var sb strings.Builder
	for _, name := range r.order {
		m := r.metrics[name]
		fmt.Fprintf(&sb, "# HELP %s %s\n# TYPE %s %s\n", m.Name(), m.Help(), m.Name(), m.Type())
		if h, ok := m.(*Histogram); ok {
			h.writeBuckets(&sb)
		}
		for _, s := range m.Samples() {
			fmt.Fprintf(&sb, "%s%s %s\n", s.Name, s.Labels, formatFloat(s.Value))
		}
	}
	return sb.String()
}
