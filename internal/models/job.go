package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/raspberrycoulis/flac2alac/internal/constants"
)

// ConversionRequest is the body of a job creation request.
// SampleRate is omitted from the payload when nil so the server keeps the source rate.
type ConversionRequest struct {
	Paths      []string `json:"paths"`
	SampleRate *int     `json:"sample_rate,omitempty"`
}

// JobHandle identifies a job on the server. The server sends an integer,
// but the client treats the handle as opaque text and only formats it back into URLs.
type JobHandle string

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (h *JobHandle) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return fmt.Errorf("job_id is missing")
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return fmt.Errorf("job_id is empty")
		}
		*h = JobHandle(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("job_id must be a number or string: %w", err)
	}
	*h = JobHandle(n.String())
	return nil
}

// MarshalJSON writes numeric handles as numbers and anything else as a string.
func (h JobHandle) MarshalJSON() ([]byte, error) {
	s := string(h)
	if s != "" && strings.Trim(s, "0123456789") == "" {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

func (h JobHandle) String() string {
	return string(h)
}

// JobCreated is the response to a job creation request.
type JobCreated struct {
	JobID JobHandle `json:"job_id"`
}

// StatusSnapshot is one status response. Every poll replaces the previous snapshot in full;
// Log and Errors are complete lists, not deltas.
type StatusSnapshot struct {
	Status    string     `json:"status" yaml:"status"`
	Processed int        `json:"processed" yaml:"processed"`
	Total     int        `json:"total" yaml:"total"`
	StartTime *Timestamp `json:"start_time" yaml:"start_time"`
	Log       []string   `json:"log" yaml:"log"`
	Errors    []string   `json:"errors" yaml:"errors"`
}

// IsFinished reports whether the job reached its terminal state.
func (s *StatusSnapshot) IsFinished() bool {
	return s.Status == constants.StatusFinished
}

// Timestamp is an ISO-8601 instant. Values without a zone designator are UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
}

// ParseTimestamp parses the formats the server emits.
func ParseTimestamp(s string) (time.Time, error) {
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, s, time.UTC); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised timestamp %q", s)
}

// UnmarshalJSON parses a JSON string timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("start_time must be a string: %w", err)
	}
	parsed, err := ParseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// MarshalJSON writes the timestamp as RFC 3339 in UTC.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.UTC().Format(time.RFC3339Nano))
}

// MarshalYAML writes the timestamp as RFC 3339 in UTC.
func (t Timestamp) MarshalYAML() (interface{}, error) {
	return t.UTC().Format(time.RFC3339Nano), nil
}
