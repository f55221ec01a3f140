package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"userdir/pkg/config"
)

// LokiLogger is a zap logger with trace correlation that optionally ships
// entries to a Loki push endpoint.
type LokiLogger struct {
	Logger      *otelzap.Logger
	ServiceName string
	lokiURL     string
	httpClient  *http.Client
}

type LokiLogEntry struct {
	Streams []LokiStream `json:"streams"`
}

type LokiStream struct {
	Stream map[string]string `json:"stream"`
	Values [][]string        `json:"values"`
}

func New(serviceName string, cfg config.LogConfig) (*LokiLogger, error) {
	zapConfig := zap.NewProductionConfig()
	zapConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	zapConfig.EncoderConfig.TimeKey = "timestamp"

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	zapConfig.Level = zap.NewAtomicLevelAt(level)

	zapLogger, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create zap logger: %w", err)
	}

	l := &LokiLogger{
		Logger:      otelzap.New(zapLogger),
		ServiceName: serviceName,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
	}

	if cfg.LokiURL != "" {
		l.lokiURL = strings.TrimRight(cfg.LokiURL, "/") + "/loki/api/v1/push"
	}

	return l, nil
}

// NewNop returns a logger that discards everything. Used by tests.
func NewNop() *LokiLogger {
	return &LokiLogger{
		Logger:      otelzap.New(zap.NewNop()),
		ServiceName: "test",
		httpClient:  http.DefaultClient,
	}
}

func (l *LokiLogger) Sync() error {
	return l.Logger.Sync()
}

// Zap exposes the underlying logger for components that take a plain *zap.Logger.
func (l *LokiLogger) Zap() *zap.Logger {
	return l.Logger.Logger
}

func (l *LokiLogger) InfoWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.InfoLevel, msg, fields...)
}

func (l *LokiLogger) WarnWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.WarnLevel, msg, fields...)
}

func (l *LokiLogger) ErrorWithTrace(ctx context.Context, msg string, fields ...zap.Field) {
	l.logWithTrace(ctx, zapcore.ErrorLevel, msg, fields...)
}

func (l *LokiLogger) logWithTrace(ctx context.Context, level zapcore.Level, msg string, fields ...zap.Field) {
	logFields := append(fields, zap.String("service", l.ServiceName))

	switch level {
	case zapcore.ErrorLevel:
		l.Logger.Ctx(ctx).Error(msg, logFields...)
	case zapcore.WarnLevel:
		l.Logger.Ctx(ctx).Warn(msg, logFields...)
	default:
		l.Logger.Ctx(ctx).Info(msg, logFields...)
	}

	if l.lokiURL != "" {
		go l.SendToLoki(ctx, level, msg, logFields)
	}
}

// SendToLoki pushes a single JSON line to Loki. Failures are dropped.
func (l *LokiLogger) SendToLoki(ctx context.Context, level zapcore.Level, msg string, fields []zap.Field) {
	if l.lokiURL == "" {
		return
	}

	enc := zapcore.NewMapObjectEncoder()
	for _, field := range fields {
		field.AddTo(enc)
	}

	logData := enc.Fields
	logData["timestamp"] = time.Now().Format(time.RFC3339Nano)
	logData["level"] = level.String()
	logData["message"] = msg

	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		logData["trace_id"] = span.SpanContext().TraceID().String()
		logData["span_id"] = span.SpanContext().SpanID().String()
	}

	line, err := json.Marshal(logData)
	if err != nil {
		return
	}

	entry := LokiLogEntry{
		Streams: []LokiStream{
			{
				Stream: map[string]string{
					"service": l.ServiceName,
					"level":   level.String(),
				},
				Values: [][]string{
					{fmt.Sprintf("%d", time.Now().UnixNano()), string(line)},
				},
			},
		},
	}

	body, err := json.Marshal(entry)
	if err != nil {
		return
	}

	req, err := http.NewRequest(http.MethodPost, l.lokiURL, bytes.NewReader(body))
	if err != nil {
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return
	}
	resp.Body.Close()
}

func LogError(ctx context.Context, logger *LokiLogger, err error, msg string, fields ...zap.Field) {
	logger.ErrorWithTrace(ctx, msg, append(fields, zap.Error(err))...)
}

func LogInfo(ctx context.Context, logger *LokiLogger, msg string, fields ...zap.Field) {
	logger.InfoWithTrace(ctx, msg, fields...)
}
