package logging

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dcm51/Brutus/internal/observability/tracing"
)

type EventType string

const (
	EventRunStarted      EventType = "run_started"
	EventInputRead       EventType = "input_read"
	EventDecodeFailed    EventType = "decode_failed"
	EventSearchCompleted EventType = "search_completed"
	EventHistoryRecorded EventType = "history_recorded"
)

type Outcome string

const (
	OutcomeInfo    Outcome = "info"
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// Event is one JSON line in the log.
type Event struct {
	Timestamp time.Time      `json:"timestamp"`
	Component string         `json:"component"`
	RunID     string         `json:"run_id,omitempty"`
	TraceID   string         `json:"trace_id,omitempty"`
	EventType EventType      `json:"event_type"`
	Outcome   Outcome        `json:"outcome,omitempty"`
	Reason    string         `json:"reason,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type Option func(*config) error

type config struct {
	writers          []io.Writer
	closers          []io.Closer
	useDefaultWriter bool
}

func defaultConfig() *config {
	return &config{writers: []io.Writer{os.Stderr}, useDefaultWriter: true}
}

func WithWriter(w io.Writer) Option {
	return func(cfg *config) error {
		if w == nil {
			return errors.New("writer cannot be nil")
		}
		cfg.writers = append(cfg.writers, w)
		return nil
	}
}

// WithFile appends events to path, creating it and its directory as needed.
func WithFile(path string) Option {
	return func(cfg *config) error {
		if strings.TrimSpace(path) == "" {
			return errors.New("file path cannot be empty")
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return err
		}
		cfg.writers = append(cfg.writers, f)
		cfg.closers = append(cfg.closers, f)
		return nil
	}
}

// WithoutStderr drops the default stderr sink.
func WithoutStderr() Option {
	return func(cfg *config) error {
		cfg.useDefaultWriter = false
		filtered := cfg.writers[:0]
		for _, w := range cfg.writers {
			if w == os.Stderr {
				continue
			}
			filtered = append(filtered, w)
		}
		cfg.writers = filtered
		return nil
	}
}

type core struct {
	mu      sync.Mutex
	encoder *json.Encoder
	closers []io.Closer
}

// Logger writes structured events. Loggers derived with WithComponent or WithRunID
// share the sink of their parent.
type Logger struct {
	component   string
	runID       string
	core        *core
	ownsClosers bool
}

func New(component string, opts ...Option) (*Logger, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(cfg); err != nil {
			for _, closer := range cfg.closers {
				_ = closer.Close()
			}
			return nil, err
		}
	}
	if len(cfg.writers) == 0 {
		return nil, errors.New("no writers configured for logger")
	}
	enc := json.NewEncoder(io.MultiWriter(cfg.writers...))
	enc.SetEscapeHTML(false)
	return &Logger{
		component:   component,
		core:        &core{encoder: enc, closers: cfg.closers},
		ownsClosers: true,
	}, nil
}

// Nop returns a logger that discards every event.
func Nop() *Logger {
	logger, _ := New("", WithoutStderr(), WithWriter(io.Discard))
	return logger
}

func (l *Logger) Close() error {
	if l == nil || !l.ownsClosers || l.core == nil {
		return nil
	}
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	var firstErr error
	for _, closer := range l.core.closers {
		if err := closer.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	l.core.closers = nil
	return firstErr
}

// Emit writes event, filling in the timestamp, component, run id and the trace id
// carried by ctx when the event leaves them empty.
func (l *Logger) Emit(ctx context.Context, event Event) error {
	if l == nil || l.core == nil {
		return errors.New("nil logger")
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	} else {
		event.Timestamp = event.Timestamp.UTC()
	}
	if event.Component == "" {
		event.Component = l.component
	}
	if event.RunID == "" {
		event.RunID = l.runID
	}
	span := tracing.SpanFromContext(ctx)
	if event.TraceID == "" {
		event.TraceID = span.TraceID()
	}
	span.AddEvent(string(event.EventType), map[string]any{
		"component": event.Component,
		"outcome":   string(event.Outcome),
	})
	l.core.mu.Lock()
	defer l.core.mu.Unlock()
	return l.core.encoder.Encode(event)
}

func (l *Logger) WithComponent(component string) *Logger {
	if l == nil || l.core == nil {
		return nil
	}
	return &Logger{component: component, runID: l.runID, core: l.core}
}

func (l *Logger) WithRunID(runID string) *Logger {
	if l == nil || l.core == nil {
		return nil
	}
	return &Logger{component: l.component, runID: runID, core: l.core}
}
