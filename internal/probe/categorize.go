package probe

import (
	"context"
	"errors"
)

// ErrorCategory is a stable label for probe failures in metrics and logs.
type ErrorCategory string

const (
	ErrorCategoryTimeout        ErrorCategory = "timeout"
	ErrorCategoryNetwork        ErrorCategory = "network"
	ErrorCategoryStatusCode     ErrorCategory = "status_code"
	ErrorCategoryDecode         ErrorCategory = "decode"
	ErrorCategoryStatusMismatch ErrorCategory = "status_mismatch"
	ErrorCategoryUnknown        ErrorCategory = "unknown"
)

// CategorizeError maps a probe error to its ErrorCategory. nil maps to "".
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrorCategoryTimeout
	case errors.Is(err, ErrNetwork):
		return ErrorCategoryNetwork
	case errors.Is(err, ErrUnexpectedStatus):
		return ErrorCategoryStatusCode
	case errors.Is(err, ErrDecode):
		return ErrorCategoryDecode
	case errors.Is(err, ErrStatusMismatch):
		return ErrorCategoryStatusMismatch
	default:
		return ErrorCategoryUnknown
	}
}
