package reqctx

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func TestCorrelationID_RoundTrip(t *testing.T) {
	if got := CorrelationID(context.Background()); got != "" {
		t.Errorf("CorrelationID(empty) = %q, want empty", got)
	}
	ctx := WithCorrelationID(context.Background(), "abc-123")
	if got := CorrelationID(ctx); got != "abc-123" {
		t.Errorf("CorrelationID = %q, want abc-123", got)
	}
}

func TestLogger_Fallback(t *testing.T) {
	fallback := zap.NewNop()
	if got := Logger(context.Background(), fallback); got != fallback {
		t.Error("Logger without value should return fallback")
	}
	scoped := zap.NewExample()
	ctx := WithLogger(context.Background(), scoped)
	if got := Logger(ctx, fallback); got != scoped {
		t.Error("Logger should return the scoped logger")
	}
}
