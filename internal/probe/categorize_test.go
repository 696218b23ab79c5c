package probe

import (
	"context"
	"errors"
	"fmt"
	"testing"
)

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorCategory
	}{
		{"nil", nil, ""},
		{"deadline", fmt.Errorf("%w: %w", ErrNetwork, context.DeadlineExceeded), ErrorCategoryTimeout},
		{"canceled", context.Canceled, ErrorCategoryTimeout},
		{"network", &ProbeError{URL: "http://x", Err: ErrNetwork}, ErrorCategoryNetwork},
		{"status code", &ProbeError{URL: "http://x", StatusCode: 502, Err: ErrUnexpectedStatus}, ErrorCategoryStatusCode},
		{"decode", fmt.Errorf("%w: eof", ErrDecode), ErrorCategoryDecode},
		{"mismatch", fmt.Errorf("%w: got %q", ErrStatusMismatch, "error"), ErrorCategoryStatusMismatch},
		{"other", errors.New("boom"), ErrorCategoryUnknown},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CategorizeError(tt.err); got != tt.want {
				t.Errorf("CategorizeError(%v) = %q, want %q", tt.err, got, tt.want)
			}
		})
	}
}

func TestProbeError_Message(t *testing.T) {
	err := &ProbeError{URL: "http://api/api/test", StatusCode: 503, Err: ErrUnexpectedStatus}
	want := "probe http://api/api/test: HTTP 503: unexpected HTTP status"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
