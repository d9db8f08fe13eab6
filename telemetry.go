package docxmark

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/tsawler/docxmark/result"
)

const scopeName = "github.com/tsawler/docxmark"

// instruments holds the tracer and counters shared by all conversions.
// Until the host installs an SDK the global providers are no-ops.
type instruments struct {
	tracer      trace.Tracer
	conversions metric.Int64Counter
	messages    metric.Int64Counter
}

var telemetry = sync.OnceValue(func() *instruments {
	meter := otel.Meter(scopeName)

	conversions, err := meter.Int64Counter("docxmark.conversions",
		metric.WithDescription("Number of conversions run"),
		metric.WithUnit("{conversion}"),
	)
	if err != nil {
		conversions = noop.Int64Counter{}
	}

	messages, err := meter.Int64Counter("docxmark.messages",
		metric.WithDescription("Number of warnings and errors emitted by conversions"),
		metric.WithUnit("{message}"),
	)
	if err != nil {
		messages = noop.Int64Counter{}
	}

	return &instruments{
		tracer:      otel.Tracer(scopeName),
		conversions: conversions,
		messages:    messages,
	}
})

// startSpan opens a span tagged with the conversion id.
func startSpan(ctx context.Context, name, id string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, attribute.String("docxmark.conversion_id", id))
	return telemetry().tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records err on span, if any, and ends it.
func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

// recordConversion counts one finished operation and the messages it
// produced.
func recordConversion(ctx context.Context, operation string, msgs []result.Message, err error) {
	t := telemetry()
	status := "ok"
	if err != nil {
		status = "error"
	}
	t.conversions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
	for _, m := range msgs {
		t.messages.Add(ctx, 1, metric.WithAttributes(attribute.String("type", string(m.Type))))
	}
}

// NewConversionID returns a time-sortable UUIDv7 identifying one conversion.
func NewConversionID() string {
	return uuid.Must(uuid.NewV7()).String()
}
