package metrics

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dcm51/Brutus/internal/observability/tracing"
)

type collector interface {
	write(sb *strings.Builder)
	reset()
}

type counterVec struct {
	name   string
	help   string
	labels []string

	mu     sync.RWMutex
	values map[string]float64
}

type gaugeVec struct {
	name   string
	help   string
	labels []string

	mu     sync.RWMutex
	values map[string]float64
}

type histogramVec struct {
	name    string
	help    string
	labels  []string
	buckets []float64

	mu     sync.RWMutex
	values map[string]*histogramValue
}

type histogramValue struct {
	counts   []uint64
	sum      float64
	total    uint64
	exemplar *metricExemplar
}

type metricExemplar struct {
	traceID string
	value   float64
}

var (
	searches       = newCounterVec("brutus_searches_total", "Number of key searches run, by strategy and outcome.", []string{"mode", "outcome"})
	keysScored     = newCounterVec("brutus_keys_scored_total", "Number of candidate keys scored.", []string{"mode"})
	searchLatency  = newHistogramVec("brutus_search_duration_seconds", "Wall-clock time spent searching the key space.", []string{"mode"})
	searchWorkers  = newGaugeVec("brutus_search_workers", "Worker count used by the most recent search.", []string{"mode"})
	decodeFailures = newCounterVec("brutus_decode_failures_total", "Number of inputs rejected by the hex decoder.", []string{"reason"})

	collectors = []collector{searches, keysScored, searchLatency, searchWorkers, decodeFailures}
)

func newCounterVec(name, help string, labels []string) *counterVec {
	return &counterVec{name: name, help: help, labels: labels, values: make(map[string]float64)}
}

func newGaugeVec(name, help string, labels []string) *gaugeVec {
	return &gaugeVec{name: name, help: help, labels: labels, values: make(map[string]float64)}
}

func newHistogramVec(name, help string, labels []string) *histogramVec {
	buckets := []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5}
	return &histogramVec{
		name:    name,
		help:    help,
		labels:  labels,
		buckets: buckets,
		values:  make(map[string]*histogramValue),
	}
}

func labelKey(labels, values []string) string {
	if len(values) != len(labels) {
		panic(fmt.Sprintf("expected %d labels, got %d", len(labels), len(values)))
	}
	return strings.Join(values, ",")
}

func (cv *counterVec) AddWith(delta float64, values ...string) {
	key := labelKey(cv.labels, values)
	cv.mu.Lock()
	cv.values[key] += delta
	cv.mu.Unlock()
}

func (cv *counterVec) IncWith(values ...string) {
	cv.AddWith(1, values...)
}

func (cv *counterVec) value(values ...string) float64 {
	key := labelKey(cv.labels, values)
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	return cv.values[key]
}

func (cv *counterVec) write(sb *strings.Builder) {
	writeHeader(sb, cv.name, cv.help, "counter")
	cv.mu.RLock()
	defer cv.mu.RUnlock()
	for _, key := range sortedKeys(cv.values) {
		sb.WriteString(cv.name)
		writeLabels(sb, cv.labels, key, "")
		fmt.Fprintf(sb, " %g\n", cv.values[key])
	}
}

func (cv *counterVec) reset() {
	cv.mu.Lock()
	cv.values = make(map[string]float64)
	cv.mu.Unlock()
}

func (gv *gaugeVec) Set(values []string, v float64) {
	key := labelKey(gv.labels, values)
	gv.mu.Lock()
	gv.values[key] = v
	gv.mu.Unlock()
}

func (gv *gaugeVec) write(sb *strings.Builder) {
	writeHeader(sb, gv.name, gv.help, "gauge")
	gv.mu.RLock()
	defer gv.mu.RUnlock()
	for _, key := range sortedKeys(gv.values) {
		sb.WriteString(gv.name)
		writeLabels(sb, gv.labels, key, "")
		fmt.Fprintf(sb, " %g\n", gv.values[key])
	}
}

func (gv *gaugeVec) reset() {
	gv.mu.Lock()
	gv.values = make(map[string]float64)
	gv.mu.Unlock()
}

func (hv *histogramVec) ObserveWithContext(ctx context.Context, values []string, sample float64) {
	key := labelKey(hv.labels, values)
	ex := exemplarFromContext(ctx, sample)

	hv.mu.Lock()
	defer hv.mu.Unlock()
	entry, ok := hv.values[key]
	if !ok {
		entry = &histogramValue{counts: make([]uint64, len(hv.buckets)+1)}
		hv.values[key] = entry
	}
	entry.sum += sample
	entry.total++
	idx := sort.SearchFloat64s(hv.buckets, sample)
	entry.counts[idx]++
	if ex != nil {
		entry.exemplar = ex
	}
}

func (hv *histogramVec) write(sb *strings.Builder) {
	writeHeader(sb, hv.name, hv.help, "histogram")
	hv.mu.RLock()
	defer hv.mu.RUnlock()
	keys := make([]string, 0, len(hv.values))
	for k := range hv.values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		entry := hv.values[key]
		cumulative := uint64(0)
		for i, upper := range hv.buckets {
			cumulative += entry.counts[i]
			sb.WriteString(hv.name)
			sb.WriteString("_bucket")
			writeLabels(sb, hv.labels, key, fmt.Sprintf("le=\"%g\"", upper))
			fmt.Fprintf(sb, " %d\n", cumulative)
		}
		cumulative += entry.counts[len(hv.buckets)]
		sb.WriteString(hv.name)
		sb.WriteString("_bucket")
		writeLabels(sb, hv.labels, key, "le=\"+Inf\"")
		fmt.Fprintf(sb, " %d\n", cumulative)

		sb.WriteString(hv.name)
		sb.WriteString("_sum")
		writeLabels(sb, hv.labels, key, "")
		fmt.Fprintf(sb, " %g", entry.sum)
		if entry.exemplar != nil {
			fmt.Fprintf(sb, " # {trace_id=\"%s\"} %g", escapeLabel(entry.exemplar.traceID), entry.exemplar.value)
		}
		sb.WriteString("\n")

		sb.WriteString(hv.name)
		sb.WriteString("_count")
		writeLabels(sb, hv.labels, key, "")
		fmt.Fprintf(sb, " %d\n", entry.total)
	}
}

func (hv *histogramVec) reset() {
	hv.mu.Lock()
	hv.values = make(map[string]*histogramValue)
	hv.mu.Unlock()
}

func sortedKeys(values map[string]float64) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// writeLabels renders {a="x",b="y"} for the joined label key, appending extra
// (already formatted) when non-empty.
func writeLabels(sb *strings.Builder, labels []string, key, extra string) {
	if len(labels) == 0 && extra == "" {
		return
	}
	parts := strings.Split(key, ",")
	sb.WriteString("{")
	for i, label := range labels {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(label)
		sb.WriteString("=\"")
		sb.WriteString(escapeLabel(parts[i]))
		sb.WriteString("\"")
	}
	if extra != "" {
		if len(labels) > 0 {
			sb.WriteString(",")
		}
		sb.WriteString(extra)
	}
	sb.WriteString("}")
}

func writeHeader(sb *strings.Builder, name, help, metricType string) {
	sb.WriteString("# HELP ")
	sb.WriteString(name)
	sb.WriteString(" ")
	sb.WriteString(help)
	sb.WriteString("\n# TYPE ")
	sb.WriteString(name)
	sb.WriteString(" ")
	sb.WriteString(metricType)
	sb.WriteString("\n")
}

func exemplarFromContext(ctx context.Context, sample float64) *metricExemplar {
	traceID := tracing.TraceIDFromContext(ctx)
	if traceID == "" {
		return nil
	}
	return &metricExemplar{traceID: traceID, value: sample}
}

func escapeLabel(value string) string {
	value = strings.ReplaceAll(value, "\\", "\\\\")
	value = strings.ReplaceAll(value, "\n", "\\n")
	value = strings.ReplaceAll(value, "\"", "\\\"")
	return value
}

// Snapshot renders every collector in the Prometheus text exposition format.
func Snapshot() string {
	var sb strings.Builder
	for _, c := range collectors {
		c.write(&sb)
	}
	return sb.String()
}

// WriteTo writes the current snapshot to w.
func WriteTo(w io.Writer) error {
	_, err := io.WriteString(w, Snapshot())
	return err
}

// WriteFile replaces path with the current snapshot.
func WriteFile(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create metrics directory: %w", err)
		}
	}
	return os.WriteFile(path, []byte(Snapshot()), 0o644)
}

// Reset clears every recorded value.
func Reset() {
	for _, c := range collectors {
		c.reset()
	}
}

// RecordSearch records one completed key search.
func RecordSearch(ctx context.Context, mode string, workers, keys int, dur time.Duration, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	searches.IncWith(mode, outcome)
	if keys > 0 {
		keysScored.AddWith(float64(keys), mode)
	}
	searchWorkers.Set([]string{mode}, float64(workers))
	searchLatency.ObserveWithContext(ctx, []string{mode}, dur.Seconds())
}

// RecordDecodeFailure counts inputs rejected by the hex decoder.
func RecordDecodeFailure(reason string) {
	reason = strings.TrimSpace(strings.ToLower(reason))
	if reason == "" {
		reason = "unspecified"
	}
	decodeFailures.IncWith(reason)
}

// KeysScored returns the keys-scored counter for mode.
func KeysScored(mode string) float64 {
	return keysScored.value(mode)
}

// Searches returns the search counter for mode and outcome.
func Searches(mode, outcome string) float64 {
	return searches.value(mode, outcome)
}
