package http

import (
	"context"
	"errors"
	"math/rand"
	"net"
	"strings"
	"time"
)

// ErrorType represents different classes of errors for retry strategy
type ErrorType int

const (
	// ErrorTypeSuccess indicates operation succeeded
	ErrorTypeSuccess ErrorType = iota
	// ErrorTypeNetwork indicates network/connection issues (timeouts, connection refused, etc.)
	ErrorTypeNetwork
	// ErrorTypeRetryable indicates server errors that can be retried (5xx, 429)
	ErrorTypeRetryable
	// ErrorTypeFatal indicates errors that should not be retried (4xx, cancellation, bad payloads)
	ErrorTypeFatal
)

// statusCoder is implemented by errors that carry an HTTP status code.
type statusCoder interface {
	HTTPStatus() int
}

// ClassifyError determines the error type for retry strategy
func ClassifyError(err error) ErrorType {
	if err == nil {
		return ErrorTypeSuccess
	}

	if errors.Is(err, context.Canceled) {
		return ErrorTypeFatal
	}

	var sc statusCoder
	if errors.As(err, &sc) && sc.HTTPStatus() != 0 {
		code := sc.HTTPStatus()
		switch {
		case code == 429 || code >= 500:
			return ErrorTypeRetryable
		case code >= 400:
			return ErrorTypeFatal
		}
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return ErrorTypeNetwork
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return ErrorTypeNetwork
	}

	errStr := strings.ToLower(err.Error())
	if strings.Contains(errStr, "tls handshake timeout") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "eof") ||
		strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "timeout") {
		return ErrorTypeNetwork
	}

	// Unknown errors - treat as fatal to avoid retrying on unexpected payloads
	return ErrorTypeFatal
}

// IsRetryable reports whether an error is worth another attempt.
func IsRetryable(err error) bool {
	t := ClassifyError(err)
	return t == ErrorTypeNetwork || t == ErrorTypeRetryable
}

// CalculateBackoff returns exponential backoff duration with full jitter
// Full jitter prevents thundering herd problem when many clients retry simultaneously
//
// Formula: random(0, min(maxDelay, initialDelay * 2^attempt))
func CalculateBackoff(attempt int, initialDelay, maxDelay time.Duration) time.Duration {
	if attempt <= 0 || initialDelay <= 0 {
		return 0
	}

	base := maxDelay
	if attempt < 31 {
		if exp := time.Duration(1<<uint(attempt)) * initialDelay; exp > 0 && exp < maxDelay {
			base = exp
		}
	}
	if base <= 0 {
		return 0
	}

	return time.Duration(rand.Int63n(int64(base)))
}

// ErrorTypeName returns a human-readable name for an ErrorType
func ErrorTypeName(errType ErrorType) string {
	switch errType {
	case ErrorTypeSuccess:
		return "success"
	case ErrorTypeNetwork:
		return "network"
	case ErrorTypeRetryable:
		return "retryable"
	case ErrorTypeFatal:
		return "fatal"
	default:
		return "unknown"
	}
}
