package errors

import "fmt"

// ClassifyStatus maps an HTTP status code to a retry category.
// 408 and 429 are the recoverable exceptions among client errors;
// other 4xx codes will keep failing on retry.
func ClassifyStatus(statusCode int) Category {
	switch {
	case statusCode >= 400 && statusCode < 500:
		switch statusCode {
		case 408, 429:
			return Recoverable
		default:
			return Irrecoverable
		}
	case statusCode >= 500 && statusCode < 600:
		return Recoverable
	default:
		// Unexpected codes: be conservative and retry.
		return Recoverable
	}
}

// NewHTTPError wraps an unexpected HTTP status into a classified error.
func NewHTTPError(statusCode int, operation string) *ClassifiedError {
	return &ClassifiedError{
		Category:   ClassifyStatus(statusCode),
		StatusCode: statusCode,
		Underlying: fmt.Errorf("%s failed: HTTP %d", operation, statusCode),
	}
}

// NewNetworkError wraps a transport-level failure. Network errors are
// always recoverable since they may be transient.
func NewNetworkError(operation string, err error) *ClassifiedError {
	return &ClassifiedError{
		Category:   Recoverable,
		Underlying: fmt.Errorf("%s network error: %w", operation, err),
	}
}
