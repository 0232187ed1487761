package poller

import (
	"time"

	"github.com/raspberrycoulis/flac2alac/internal/constants"
	ihttp "github.com/raspberrycoulis/flac2alac/internal/http"
)

// FailurePolicy decides what happens after a status fetch fails.
type FailurePolicy interface {
	// Next is called with the number of consecutive failures so far (1 on the
	// first) and the failure. It returns the delay before the next fetch and
	// whether to fetch again at all.
	Next(failures int, err error) (time.Duration, bool)
}

// HaltOnFailure stops polling on the first failed fetch.
type HaltOnFailure struct{}

// Next implements FailurePolicy.
func (HaltOnFailure) Next(int, error) (time.Duration, bool) {
	return 0, false
}

// BackoffOnFailure retries transient failures up to MaxRetries times in a row,
// waiting an exponentially growing, jittered delay between attempts.
// Non-transient failures (4xx, malformed responses) halt immediately.
type BackoffOnFailure struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

// NewBackoffOnFailure returns a BackoffOnFailure with the default delays.
func NewBackoffOnFailure(maxRetries int) BackoffOnFailure {
	return BackoffOnFailure{
		MaxRetries:   maxRetries,
		InitialDelay: constants.PollBackoffInitial,
		MaxDelay:     constants.PollBackoffMax,
	}
}

// Next implements FailurePolicy.
func (b BackoffOnFailure) Next(failures int, err error) (time.Duration, bool) {
	if failures > b.MaxRetries || !ihttp.IsRetryable(err) {
		return 0, false
	}
	return ihttp.CalculateBackoff(failures, b.InitialDelay, b.MaxDelay), true
}

// PolicyFor returns HaltOnFailure for maxRetries <= 0 and a BackoffOnFailure otherwise.
func PolicyFor(maxRetries int) FailurePolicy {
	if maxRetries <= 0 {
		return HaltOnFailure{}
	}
	return NewBackoffOnFailure(maxRetries)
}
