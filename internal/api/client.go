package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	nethttp "net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/raspberrycoulis/flac2alac/internal/config"
	"github.com/raspberrycoulis/flac2alac/internal/constants"
	"github.com/raspberrycoulis/flac2alac/internal/http"
	"github.com/raspberrycoulis/flac2alac/internal/logging"
	"github.com/raspberrycoulis/flac2alac/internal/models"
)

// retryLogger implements the retryablehttp.LeveledLogger interface on top of the application logger
type retryLogger struct {
	logger *logging.Logger
}

func (l *retryLogger) Error(msg string, keysAndValues ...interface{}) {
	l.logger.Error().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Info(msg string, keysAndValues ...interface{}) {
	// Only log errors and warnings, not all info
}

func (l *retryLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l *retryLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.logger.Warn().Fields(keysAndValues).Msg(msg)
}

// retryableKey marks a request context as safe to retry at the transport level.
type retryableKey struct{}

// Client talks to the conversion server.
type Client struct {
	httpClient *nethttp.Client
	baseURL    string
	logger     *logging.Logger
}

// NewClient creates a new API client
func NewClient(cfg *config.Config, logger *logging.Logger) (*Client, error) {
	if strings.TrimSpace(cfg.ServerURL) == "" {
		return nil, fmt.Errorf("server URL is empty: set it with --server, FLAC2ALAC_SERVER or 'flac2alac config init'")
	}
	if logger == nil {
		logger = logging.NewNopLogger()
	}

	httpClient, err := http.ConfigureHTTPClient(cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to configure HTTP client: %w", err)
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient = httpClient
	retryClient.RetryMax = cfg.ListRetries
	retryClient.RetryWaitMin = constants.ListRetryWaitMin
	retryClient.RetryWaitMax = constants.ListRetryWaitMax
	retryClient.Logger = &retryLogger{logger: logger}
	retryClient.CheckRetry = checkRetry
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	return &Client{
		httpClient: retryClient.StandardClient(),
		baseURL:    strings.TrimSuffix(cfg.ServerURL, "/"),
		logger:     logger,
	}, nil
}

// checkRetry retries only requests explicitly marked as idempotent (directory listings).
func checkRetry(ctx context.Context, resp *nethttp.Response, err error) (bool, error) {
	if retryable, _ := ctx.Value(retryableKey{}).(bool); !retryable {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return false, nil
	}
	return retryablehttp.DefaultRetryPolicy(ctx, resp, err)
}

// BaseURL returns the server URL requests are sent to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// doRequest performs an HTTP request with a JSON body (if any) and JSON accept headers
func (c *Client) doRequest(ctx context.Context, method, path string, body interface{}) (*nethttp.Response, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := nethttp.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return nil, fmt.Errorf("request failed: %w", err)
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("took", time.Since(start)).
		Msg("request")

	return resp, nil
}

// decode checks for a 200 response and decodes its JSON body into out.
func decode(resp *nethttp.Response, out interface{}) error {
	defer resp.Body.Close()

	if resp.StatusCode != nethttp.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, constants.MaxErrorBodyBytes))
		return &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// ListDirectory lists one server directory. path is slash-separated and relative; "" is the root.
func (c *Client) ListDirectory(ctx context.Context, path string) ([]models.DirectoryEntry, error) {
	ctx = context.WithValue(ctx, retryableKey{}, true)
	query := url.Values{"path": {path}}.Encode()

	resp, err := c.doRequest(ctx, nethttp.MethodGet, constants.ListEndpoint+"?"+query, nil)
	if err != nil {
		return nil, &ListingError{Path: path, Err: err}
	}

	var entries []models.DirectoryEntry
	if err := decode(resp, &entries); err != nil {
		return nil, &ListingError{Path: path, Err: err}
	}

	return entries, nil
}

// CreateJob submits a conversion request and returns the server's job handle.
func (c *Client) CreateJob(ctx context.Context, req models.ConversionRequest) (models.JobHandle, error) {
	resp, err := c.doRequest(ctx, nethttp.MethodPost, constants.ConvertEndpoint, req)
	if err != nil {
		return "", &SubmissionError{Paths: len(req.Paths), Err: err}
	}

	var created models.JobCreated
	if err := decode(resp, &created); err != nil {
		return "", &SubmissionError{Paths: len(req.Paths), Err: err}
	}
	if created.JobID == "" {
		return "", &SubmissionError{Paths: len(req.Paths), Err: errors.New("response has no job_id")}
	}

	c.logger.Info().Str("job_id", created.JobID.String()).Int("paths", len(req.Paths)).Msg("job created")
	return created.JobID, nil
}

// GetJobStatus fetches the current status snapshot of a job.
func (c *Client) GetJobStatus(ctx context.Context, handle models.JobHandle) (*models.StatusSnapshot, error) {
	path := constants.StatusEndpoint + url.PathEscape(handle.String())

	resp, err := c.doRequest(ctx, nethttp.MethodGet, path, nil)
	if err != nil {
		return nil, &PollError{JobID: handle.String(), Err: err}
	}

	var snap models.StatusSnapshot
	if err := decode(resp, &snap); err != nil {
		return nil, &PollError{JobID: handle.String(), Err: err}
	}

	return &snap, nil
}
