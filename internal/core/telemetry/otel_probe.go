package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"userdir/internal/core/port"
)

const tracerName = "userdir"

// OTELProbe implements port.Telemetry with OpenTelemetry spans, Prometheus
// counters and zap logs.
type OTELProbe struct {
	logger  *zap.Logger
	metrics *AppMetrics
	tracer  trace.Tracer
}

func NewOTELProbe(logger *zap.Logger, metrics *AppMetrics) port.Telemetry {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &OTELProbe{
		logger:  logger,
		metrics: metrics,
		tracer:  otel.Tracer(tracerName),
	}
}

func (p *OTELProbe) StartRepositorySpan(ctx context.Context, operation string, entity string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	standardAttrs := []attribute.KeyValue{
		attribute.String("repository.entity", entity),
		attribute.String("repository.operation", operation),
		attribute.String("component", "repository"),
	}

	return p.tracer.Start(ctx, fmt.Sprintf("repository.%s.%s", entity, operation),
		trace.WithAttributes(append(standardAttrs, attrs...)...))
}

func (p *OTELProbe) StartServiceSpan(ctx context.Context, service string, operation string, attrs []attribute.KeyValue) (context.Context, trace.Span) {
	standardAttrs := []attribute.KeyValue{
		attribute.String("service.name", service),
		attribute.String("service.operation", operation),
		attribute.String("component", "service"),
	}

	return p.tracer.Start(ctx, fmt.Sprintf("service.%s.%s", service, operation),
		trace.WithAttributes(append(standardAttrs, attrs...)...))
}

func (p *OTELProbe) RecordRepositoryOperation(ctx context.Context, operation string, entity string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	span.SetAttributes(
		attribute.Int64("operation.duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	if p.metrics != nil {
		p.metrics.RecordDatabaseOperation(ctx, operation, entity)
	}

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)

		p.logger.Error("Repository operation failed",
			zap.String("operation", operation),
			zap.String("entity", entity),
			zap.Duration("duration", duration),
			zap.Error(err))
		return
	}

	span.SetStatus(codes.Ok, "")
}

func (p *OTELProbe) RecordRepositoryQuery(ctx context.Context, operation string, entity string, query string, args []interface{}) {
	argTypes := make([]string, len(args))
	for i := range args {
		argTypes[i] = fmt.Sprintf("%T", args[i])
	}

	p.logger.Debug("Executing repository query",
		zap.String("operation", operation),
		zap.String("entity", entity),
		zap.String("query", query),
		zap.Strings("args_types", argTypes))
}

func (p *OTELProbe) RecordServiceOperation(ctx context.Context, service string, operation string, duration time.Duration, err error) {
	span := trace.SpanFromContext(ctx)

	span.SetAttributes(
		attribute.Int64("operation.duration_ns", duration.Nanoseconds()),
		attribute.Bool("has_error", err != nil),
	)

	if p.metrics != nil {
		p.metrics.RecordUserOperation(ctx, operation)
	}

	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		span.RecordError(err)
		return
	}

	span.SetStatus(codes.Ok, "")
}

func (p *OTELProbe) RecordBusinessEvent(ctx context.Context, event string, entity string, entityID string, metadata map[string]interface{}) {
	span := trace.SpanFromContext(ctx)

	attrs := []attribute.KeyValue{
		attribute.String("entity", entity),
		attribute.String("entity_id", entityID),
	}

	for key, value := range metadata {
		attrs = append(attrs, toAttribute(key, value))
	}

	span.AddEvent(event, trace.WithAttributes(attrs...))

	p.logger.Info("Business event recorded",
		zap.String("event", event),
		zap.String("entity", entity),
		zap.String("entity_id", entityID),
		zap.Any("metadata", metadata))
}

func (p *OTELProbe) RecordError(ctx context.Context, operation string, err error, metadata map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)

	p.logger.Error("Operation error recorded",
		zap.String("operation", operation),
		zap.Error(err),
		zap.Any("metadata", metadata))
}

func toAttribute(key string, value interface{}) attribute.KeyValue {
	switch v := value.(type) {
	case string:
		return attribute.String(key, v)
	case int:
		return attribute.Int(key, v)
	case int64:
		return attribute.Int64(key, v)
	case float64:
		return attribute.Float64(key, v)
	case bool:
		return attribute.Bool(key, v)
	default:
		return attribute.String(key, fmt.Sprintf("%v", v))
	}
}
