package http

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type statusErr int

func (e statusErr) Error() string   { return fmt.Sprintf("status %d", int(e)) }
func (e statusErr) HTTPStatus() int { return int(e) }

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorType
	}{
		{"nil", nil, ErrorTypeSuccess},
		{"server error", statusErr(502), ErrorTypeRetryable},
		{"throttled", fmt.Errorf("wrapped: %w", statusErr(429)), ErrorTypeRetryable},
		{"not found", statusErr(404), ErrorTypeFatal},
		{"cancelled", fmt.Errorf("get: %w", context.Canceled), ErrorTypeFatal},
		{"deadline", context.DeadlineExceeded, ErrorTypeNetwork},
		{"connection refused", errors.New("dial tcp 127.0.0.1:8000: connect: connection refused"), ErrorTypeNetwork},
		{"unexpected", errors.New("invalid character 'x'"), ErrorTypeFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ClassifyError(tt.err); got != tt.want {
				t.Errorf("ClassifyError() = %s, want %s", ErrorTypeName(got), ErrorTypeName(tt.want))
			}
		})
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(statusErr(503)) {
		t.Error("503 should be retryable")
	}
	if IsRetryable(statusErr(400)) {
		t.Error("400 should not be retryable")
	}
}

func TestCalculateBackoff(t *testing.T) {
	if got := CalculateBackoff(0, time.Second, 10*time.Second); got != 0 {
		t.Errorf("attempt 0 should not wait, got %v", got)
	}

	for attempt := 1; attempt <= 40; attempt++ {
		got := CalculateBackoff(attempt, 100*time.Millisecond, 2*time.Second)
		if got < 0 || got >= 2*time.Second {
			t.Errorf("attempt %d: backoff %v outside [0, 2s)", attempt, got)
		}
	}

	// First attempt is bounded by 2 * initialDelay
	for i := 0; i < 50; i++ {
		if got := CalculateBackoff(1, 100*time.Millisecond, time.Minute); got >= 200*time.Millisecond {
			t.Fatalf("attempt 1: backoff %v exceeds 200ms", got)
		}
	}
}

func TestErrorTypeName(t *testing.T) {
	if ErrorTypeName(ErrorType(99)) != "unknown" {
		t.Error("expected unknown for out-of-range type")
	}
}
