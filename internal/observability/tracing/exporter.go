package tracing

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// fileExporter writes one JSON snapshot per finished span.
type fileExporter struct {
	mu  sync.Mutex
	fw  *os.File
	enc *json.Encoder
}

var _ sdktrace.SpanExporter = (*fileExporter)(nil)

func newFileExporter(path string) (*fileExporter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, err
	}
	return &fileExporter{fw: f, enc: json.NewEncoder(f)}, nil
}

func (f *fileExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fw == nil {
		return nil
	}
	for _, span := range spans {
		snapshot := spanSnapshotFromReadOnly(span)
		if snapshot == nil {
			continue
		}
		if err := f.enc.Encode(snapshot); err != nil {
			return err
		}
	}
	return nil
}

func (f *fileExporter) Shutdown(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fw == nil {
		return nil
	}
	err := f.fw.Close()
	f.fw = nil
	return err
}
