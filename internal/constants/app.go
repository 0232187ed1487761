package constants

import (
	"time"
)

// Conversion server defaults
const (
	// DefaultServerURL - base URL of the conversion server when nothing is configured
	DefaultServerURL = "http://localhost:8000"

	// ListEndpoint - directory listing, takes a ?path= query parameter
	ListEndpoint = "/api/list"

	// ConvertEndpoint - job creation, JSON body {paths, sample_rate?}
	ConvertEndpoint = "/api/convert"

	// StatusEndpoint - job status, job id appended as the last path segment
	StatusEndpoint = "/api/status/"
)

// API client retry settings. Only directory listings may be retried at the transport level
// (and only when configured); job creation is not idempotent and status failures go to the
// poller's failure policy.
const (
	ListRetryWaitMin = 500 * time.Millisecond
	ListRetryWaitMax = 5 * time.Second

	// MaxErrorBodyBytes - how much of a failed response body is kept for diagnostics
	MaxErrorBodyBytes = 4096
)

// Job status values reported by the server
const (
	StatusQueued   = "queued"
	StatusRunning  = "running"
	StatusFinished = "finished"
)

// Polling
const (
	// DefaultPollInterval - delay between a processed status response and the next fetch
	DefaultPollInterval = 1 * time.Second

	// MinPollInterval - lower bound accepted from configuration
	MinPollInterval = 100 * time.Millisecond

	// PollBackoffInitial - base delay of the backoff failure policy
	PollBackoffInitial = 500 * time.Millisecond

	// PollBackoffMax - cap for a single backoff delay
	PollBackoffMax = 15 * time.Second
)

// HTTP transport timeouts
const (
	HTTPDialTimeout           = 30 * time.Second
	HTTPDialKeepAlive         = 30 * time.Second
	HTTPIdleConnTimeout       = 90 * time.Second
	HTTPTLSHandshakeTimeout   = 30 * time.Second
	HTTPExpectContinueTimeout = 1 * time.Second

	// ProxyWarmupTimeout - upper bound for the optional proxy warmup request
	ProxyWarmupTimeout = 15 * time.Second
)

// Event bus buffer sizes
const (
	// EventBusDefaultBuffer - default buffer for event bus channels.
	// Selection toggles and poll results are low volume, a small buffer is enough.
	EventBusDefaultBuffer = 256
)

// UI
const (
	// UITickInterval - spinner and repaint interval in the interactive browser
	UITickInterval = 100 * time.Millisecond

	// ProgressBarRefreshRate - mpb refresh rate for the job bar
	ProgressBarRefreshRate = 300 * time.Millisecond

	// ProgressBarWidth - width of terminal progress bars
	ProgressBarWidth = 60

	// UnknownETA - placeholder shown while no estimate is available
	UnknownETA = "--:--:--"
)

// Sample rates offered by the interactive browser. Zero keeps the source rate.
var SampleRates = []int{0, 44100, 48000, 88200, 96000}
