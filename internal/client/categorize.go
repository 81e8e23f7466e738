package client

import (
	"context"
	"errors"
)

// ErrorCategory is a stable label for error classification in metrics.
type ErrorCategory string

const (
	ErrorCategoryTimeout   ErrorCategory = "timeout"
	ErrorCategoryNetwork   ErrorCategory = "network"
	ErrorCategoryAPIError  ErrorCategory = "api_error"
	ErrorCategoryMalformed ErrorCategory = "malformed"
	ErrorCategoryCanceled  ErrorCategory = "canceled"
	ErrorCategoryUnknown   ErrorCategory = "unknown"
)

// CategorizeError maps an error from Geocode or Conditions to an ErrorCategory.
func CategorizeError(err error) ErrorCategory {
	if err == nil {
		return ""
	}

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return ErrorCategoryAPIError
	}

	var malformed *MalformedError
	if errors.As(err, &malformed) {
		return ErrorCategoryMalformed
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorCategoryTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ErrorCategoryCanceled
	}
	if errors.Is(err, ErrTransport) {
		return ErrorCategoryNetwork
	}
	return ErrorCategoryUnknown
}
