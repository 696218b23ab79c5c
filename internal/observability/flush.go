package observability

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// FlushTelemetry syncs buffered log entries before exit. Metrics are pull-based and need no flush.
// ctx bounds the wait; a sync that outlives it is abandoned.
func FlushTelemetry(ctx context.Context, logger *zap.Logger) error {
	if logger == nil {
		return nil
	}
	done := make(chan error, 1)
	go func() { done <- logger.Sync() }()
	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("flush logs: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("flush logs: %w", ctx.Err())
	}
}
