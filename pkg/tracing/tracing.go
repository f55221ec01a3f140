package tracing

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "userdir"

// AddSpanError marks the span as failed.
func AddSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func AddHTTPAttributes(span trace.Span, method string, route string, statusCode int) {
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.Int("http.status_code", statusCode),
	)
}

func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}

func CreateChildSpan(ctx context.Context, name string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(tracerName).Start(ctx, name, trace.WithAttributes(attrs...))
}

// SpanWrapper runs fn inside a child span and records its error.
func SpanWrapper(ctx context.Context, name string, attrs []attribute.KeyValue, fn func(context.Context) error) error {
	ctx, span := CreateChildSpan(ctx, name, attrs)
	defer span.End()

	err := fn(ctx)
	if err != nil {
		AddSpanError(span, err)
	}

	return err
}
