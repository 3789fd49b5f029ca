package observability

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// TracerName is the name of the tracer for analysis runs.
	TracerName = "conversa"
)

// Span attribute keys
const (
	AttrRunID    = "run_id"
	AttrSource   = "source"
	AttrDialect  = "dialect"
	AttrSection  = "section"
	AttrMessages = "messages"
	AttrItems    = "items"
	AttrFailures = "failures"
)

// Span names
const (
	SpanRun     = "conversa.run"
	SpanParse   = "conversa.parse"
	SpanSection = "conversa.section"
	SpanWrite   = "conversa.write"
)

// Tracer provides tracing for analysis runs.
type Tracer struct {
	tracer trace.Tracer
}

// NewTracer creates a tracer from the global provider.
func NewTracer() *Tracer {
	return &Tracer{
		tracer: otel.Tracer(TracerName),
	}
}

// StartRunSpan starts the root span of an analysis run.
func (t *Tracer) StartRunSpan(ctx context.Context, runID, source string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanRun,
		trace.WithAttributes(
			attribute.String(AttrRunID, runID),
			attribute.String(AttrSource, source),
		),
	)
}

// StartParseSpan starts a span for reading the transcript.
func (t *Tracer) StartParseSpan(ctx context.Context) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanParse)
}

// StartSectionSpan starts a span for computing one report section.
func (t *Tracer) StartSectionSpan(ctx context.Context, section string) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanSection,
		trace.WithAttributes(
			attribute.String(AttrSection, section),
		),
	)
}

// StartWriteSpan starts a span for writing the report.
func (t *Tracer) StartWriteSpan(ctx context.Context) (context.Context, trace.Span) {
	return t.tracer.Start(ctx, SpanWrite)
}

// SpanHelper provides convenient methods for working with a span.
type SpanHelper struct {
	span trace.Span
}

// NewSpanHelper creates a new span helper for the given span.
func NewSpanHelper(span trace.Span) *SpanHelper {
	return &SpanHelper{span: span}
}

// SetTranscript records the parsed transcript's shape.
func (h *SpanHelper) SetTranscript(dialect string, messages int) {
	h.span.SetAttributes(
		attribute.String(AttrDialect, dialect),
		attribute.Int(AttrMessages, messages),
	)
}

// SetItems records how many entries a section produced and how many
// inputs it had to skip.
func (h *SpanHelper) SetItems(items, failures int) {
	h.span.SetAttributes(attribute.Int(AttrItems, items))
	if failures > 0 {
		h.span.SetAttributes(attribute.Int(AttrFailures, failures))
	}
}

// SetError records an error on the span.
func (h *SpanHelper) SetError(err error) {
	h.span.SetStatus(codes.Error, err.Error())
	h.span.RecordError(err)
}

// SetSuccess marks the span as successful.
func (h *SpanHelper) SetSuccess() {
	h.span.SetStatus(codes.Ok, "")
}
