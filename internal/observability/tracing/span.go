package tracing

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Span represents an in-flight trace span.
type Span interface {
	TraceID() string
	End()
	EndWithStatus(status SpanStatus, description string)
	SetAttribute(key string, value any)
	AddEvent(name string, attributes map[string]any)
	RecordError(err error)
}

type spanConfig struct {
	attributes map[string]any
}

// SpanStartOption configures start behaviour for spans.
type SpanStartOption interface{ apply(*spanConfig) }

type spanStartOptionFunc func(*spanConfig)

func (fn spanStartOptionFunc) apply(cfg *spanConfig) { fn(cfg) }

// WithAttributes attaches attributes to the span on start.
func WithAttributes(attrs map[string]any) SpanStartOption {
	return spanStartOptionFunc(func(cfg *spanConfig) {
		if len(attrs) == 0 {
			return
		}
		if cfg.attributes == nil {
			cfg.attributes = make(map[string]any, len(attrs))
		}
		for k, v := range attrs {
			cfg.attributes[k] = v
		}
	})
}

// StartSpan begins a new span derived from ctx. Without an installed tracer the
// returned span discards everything.
func StartSpan(ctx context.Context, name string, opts ...SpanStartOption) (context.Context, Span) {
	if ctx == nil {
		ctx = context.Background()
	}
	tracer := CurrentTracer()
	if tracer == nil || tracer.tracer == nil {
		return ctx, noopSpan{}
	}

	cfg := spanConfig{}
	for _, opt := range opts {
		opt.apply(&cfg)
	}
	options := []trace.SpanStartOption{trace.WithSpanKind(trace.SpanKindInternal)}
	if len(cfg.attributes) > 0 {
		options = append(options, trace.WithAttributes(mapToAttributes(cfg.attributes)...))
	}

	ctx, otelSpan := tracer.tracer.Start(ctx, name, options...)
	return ctx, &otelSpanWrapper{span: otelSpan}
}

// SpanFromContext retrieves the active span, returning a noop span if none exists.
func SpanFromContext(ctx context.Context) Span {
	if ctx == nil {
		return noopSpan{}
	}
	if otelSpan := trace.SpanFromContext(ctx); otelSpan.SpanContext().IsValid() {
		return &otelSpanWrapper{span: otelSpan}
	}
	return noopSpan{}
}

// TraceIDFromContext extracts the trace identifier, or "" when unavailable.
func TraceIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	sc := trace.SpanContextFromContext(ctx)
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

type otelSpanWrapper struct {
	span trace.Span
}

func (s *otelSpanWrapper) TraceID() string {
	sc := s.span.SpanContext()
	if !sc.IsValid() {
		return ""
	}
	return sc.TraceID().String()
}

func (s *otelSpanWrapper) End() {
	s.span.End()
}

func (s *otelSpanWrapper) EndWithStatus(status SpanStatus, description string) {
	switch status {
	case StatusError:
		s.span.SetStatus(codes.Error, description)
	case StatusOK:
		s.span.SetStatus(codes.Ok, description)
	}
	s.span.End()
}

func (s *otelSpanWrapper) SetAttribute(key string, value any) {
	key = strings.TrimSpace(key)
	if key == "" {
		return
	}
	s.span.SetAttributes(attribute.KeyValue{Key: attribute.Key(key), Value: attributeValue(value)})
}

func (s *otelSpanWrapper) AddEvent(name string, attributes map[string]any) {
	name = strings.TrimSpace(name)
	if name == "" {
		return
	}
	if len(attributes) == 0 {
		s.span.AddEvent(name)
		return
	}
	s.span.AddEvent(name, trace.WithAttributes(mapToAttributes(attributes)...))
}

func (s *otelSpanWrapper) RecordError(err error) {
	if err == nil {
		return
	}
	s.span.RecordError(err)
	s.span.SetStatus(codes.Error, err.Error())
}

type noopSpan struct{}

func (noopSpan) TraceID() string                  { return "" }
func (noopSpan) End()                             {}
func (noopSpan) EndWithStatus(SpanStatus, string) {}
func (noopSpan) SetAttribute(string, any)         {}
func (noopSpan) AddEvent(string, map[string]any)  {}
func (noopSpan) RecordError(error)                {}

// SpanStatus represents the outcome of a span.
type SpanStatus string

const (
	StatusUnset SpanStatus = "unset"
	StatusOK    SpanStatus = "ok"
	StatusError SpanStatus = "error"
)

type spanEvent struct {
	Name       string         `json:"name"`
	Time       time.Time      `json:"time"`
	Attributes map[string]any `json:"attributes,omitempty"`
}

// SpanSnapshot is the JSONL record written for every exported span.
type SpanSnapshot struct {
	TraceID      string         `json:"trace_id"`
	SpanID       string         `json:"span_id"`
	ParentSpanID string         `json:"parent_span_id,omitempty"`
	Name         string         `json:"name"`
	Attributes   map[string]any `json:"attributes,omitempty"`
	Events       []spanEvent    `json:"events,omitempty"`
	Status       SpanStatus     `json:"status"`
	StatusMsg    string         `json:"status_message,omitempty"`
	StartTime    time.Time      `json:"start_time"`
	EndTime      time.Time      `json:"end_time"`
	ServiceName  string         `json:"service_name,omitempty"`
}

// Duration returns the elapsed time recorded by the span.
func (s *SpanSnapshot) Duration() time.Duration {
	if s == nil || s.EndTime.IsZero() || s.StartTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}

func (s *SpanSnapshot) MarshalJSON() ([]byte, error) {
	type alias SpanSnapshot
	out := &struct {
		*alias
		DurationMS float64 `json:"duration_ms"`
	}{alias: (*alias)(s)}
	out.DurationMS = float64(s.Duration()) / float64(time.Millisecond)
	return json.Marshal(out)
}

func spanSnapshotFromReadOnly(span sdktrace.ReadOnlySpan) *SpanSnapshot {
	if span == nil {
		return nil
	}
	sc := span.SpanContext()
	if !sc.IsValid() {
		return nil
	}

	attrs := make(map[string]any)
	for _, attr := range span.Attributes() {
		attrs[string(attr.Key)] = attributeValueFromKeyValue(attr)
	}

	events := make([]spanEvent, 0, len(span.Events()))
	for _, event := range span.Events() {
		eventAttrs := make(map[string]any)
		for _, attr := range event.Attributes {
			eventAttrs[string(attr.Key)] = attributeValueFromKeyValue(attr)
		}
		events = append(events, spanEvent{Name: event.Name, Time: event.Time, Attributes: eventAttrs})
	}

	status := StatusUnset
	switch span.Status().Code {
	case codes.Ok:
		status = StatusOK
	case codes.Error:
		status = StatusError
	}

	parentID := ""
	if parent := span.Parent(); parent.IsValid() {
		parentID = parent.SpanID().String()
	}

	serviceName := ""
	if resource := span.Resource(); resource != nil {
		for _, attr := range resource.Attributes() {
			if attr.Key == semconv.ServiceNameKey {
				serviceName = attr.Value.AsString()
				break
			}
		}
	}

	return &SpanSnapshot{
		TraceID:      sc.TraceID().String(),
		SpanID:       sc.SpanID().String(),
		ParentSpanID: parentID,
		Name:         span.Name(),
		Attributes:   attrs,
		Events:       events,
		Status:       status,
		StatusMsg:    span.Status().Description,
		StartTime:    span.StartTime(),
		EndTime:      span.EndTime(),
		ServiceName:  serviceName,
	}
}

func mapToAttributes(attrs map[string]any) []attribute.KeyValue {
	kvs := make([]attribute.KeyValue, 0, len(attrs))
	for k, v := range attrs {
		kvs = append(kvs, attribute.KeyValue{Key: attribute.Key(k), Value: attributeValue(v)})
	}
	return kvs
}

func attributeValue(value any) attribute.Value {
	switch v := value.(type) {
	case string:
		return attribute.StringValue(v)
	case bool:
		return attribute.BoolValue(v)
	case int:
		return attribute.IntValue(v)
	case int64:
		return attribute.Int64Value(v)
	case uint8:
		return attribute.IntValue(int(v))
	case uint64:
		return attribute.Int64Value(int64(v))
	case float64:
		return attribute.Float64Value(v)
	case fmt.Stringer:
		return attribute.StringValue(v.String())
	default:
		return attribute.StringValue(fmt.Sprintf("%v", v))
	}
}

func attributeValueFromKeyValue(kv attribute.KeyValue) any {
	switch kv.Value.Type() {
	case attribute.BOOL:
		return kv.Value.AsBool()
	case attribute.INT64:
		return kv.Value.AsInt64()
	case attribute.FLOAT64:
		return kv.Value.AsFloat64()
	case attribute.STRING:
		return kv.Value.AsString()
	default:
		return kv.Value.Emit()
	}
}
