package tracing

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSetupDisabled(t *testing.T) {
	cases := []Config{
		{},
		{FilePath: filepath.Join(t.TempDir(), "spans.jsonl"), SampleRatio: 0},
		{SampleRatio: 1},
	}
	for _, cfg := range cases {
		shutdown, err := Setup(context.Background(), cfg)
		if err != nil {
			t.Fatalf("Setup(%+v) failed: %v", cfg, err)
		}
		if CurrentTracer() != nil {
			t.Fatalf("expected no tracer for %+v", cfg)
		}
		ctx, span := StartSpan(context.Background(), "noop")
		if span.TraceID() != "" || TraceIDFromContext(ctx) != "" {
			t.Fatal("noop span should not carry a trace id")
		}
		span.SetAttribute("k", 1)
		span.RecordError(errors.New("ignored"))
		span.End()
		if err := shutdown(context.Background()); err != nil {
			t.Fatalf("shutdown failed: %v", err)
		}
	}
}

func TestSpansWrittenToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "traces", "spans.jsonl")
	shutdown, err := Setup(context.Background(), Config{
		ServiceName: "brutus-test",
		SampleRatio: 1,
		FilePath:    path,
	})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if got := CurrentTracer().ServiceName(); got != "brutus-test" {
		t.Fatalf("unexpected service name %q", got)
	}

	ctx, parent := StartSpan(context.Background(), "search", WithAttributes(map[string]any{"workers": 4}))
	traceID := TraceIDFromContext(ctx)
	if traceID == "" || parent.TraceID() != traceID {
		t.Fatalf("expected matching trace ids, got %q and %q", traceID, parent.TraceID())
	}
	_, child := StartSpan(ctx, "partition")
	child.SetAttribute("start", 0)
	child.AddEvent("best", map[string]any{"key": byte(0x42)})
	child.End()
	parent.EndWithStatus(StatusOK, "")

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}
	if CurrentTracer() != nil {
		t.Fatal("tracer should be cleared after shutdown")
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open span file: %v", err)
	}
	defer f.Close()

	spans := map[string]map[string]any{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var record map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("decode span line: %v", err)
		}
		spans[record["name"].(string)] = record
	}
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans["search"]["status"] != string(StatusOK) {
		t.Errorf("unexpected parent status %v", spans["search"]["status"])
	}
	if spans["partition"]["parent_span_id"] != spans["search"]["span_id"] {
		t.Errorf("child not linked to parent")
	}
	if spans["partition"]["trace_id"] != traceID {
		t.Errorf("child trace id %v, want %s", spans["partition"]["trace_id"], traceID)
	}
	if spans["search"]["service_name"] != "brutus-test" {
		t.Errorf("unexpected service name %v", spans["search"]["service_name"])
	}
}

func TestSpanFromContext(t *testing.T) {
	if got := SpanFromContext(context.Background()).TraceID(); got != "" {
		t.Fatalf("expected noop span without an active span, got trace id %q", got)
	}

	path := filepath.Join(t.TempDir(), "spans.jsonl")
	shutdown, err := Setup(context.Background(), Config{SampleRatio: 1, FilePath: path})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	defer shutdown(context.Background())

	ctx, span := StartSpan(context.Background(), "crack")
	defer span.End()
	active := SpanFromContext(ctx)
	if active.TraceID() == "" || active.TraceID() != span.TraceID() {
		t.Fatalf("expected active span trace id %q, got %q", span.TraceID(), active.TraceID())
	}
}
