// Package reqctx carries per-request values (correlation ID, scoped logger) through context.
package reqctx

import (
	"context"

	"go.uber.org/zap"
)

type ctxKey int

const (
	correlationIDKey ctxKey = iota
	loggerKey
)

// CorrelationIDHeader is read from inbound requests and forwarded on outbound probes.
const CorrelationIDHeader = "X-Correlation-ID"

// HealthCheckHeader carries the per-process token of the service's own API checks.
const HealthCheckHeader = "X-Health-Check-Token"

func WithCorrelationID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, correlationIDKey, id)
}

// CorrelationID returns the request's correlation ID, or "" if none was set.
func CorrelationID(ctx context.Context) string {
	if id, ok := ctx.Value(correlationIDKey).(string); ok {
		return id
	}
	return ""
}

func WithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// Logger returns the request-scoped logger, falling back to fallback.
func Logger(ctx context.Context, fallback *zap.Logger) *zap.Logger {
	if logger, ok := ctx.Value(loggerKey).(*zap.Logger); ok && logger != nil {
		return logger
	}
	return fallback
}
