// Package config provides configuration management for flac2alac.
package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
	"time"

	"gopkg.in/ini.v1"

	"github.com/raspberrycoulis/flac2alac/internal/constants"
)

// Config holds everything the client needs to reach the conversion server
// and to decide how to follow a job.
//
// INI format:
//
//	[server]
//	url = http://localhost:8000
//	request_timeout_seconds = 0
//	list_retries = 0
//
//	[proxy]
//	mode = no-proxy
//	host =
//	port = 0
//	user =
//	no_proxy =
//
//	[polling]
//	interval_ms = 1000
//	max_retries = 0
//
//	[conversion]
//	default_sample_rate =
//
//	[notifications]
//	enabled = true
//
//	[logging]
//	file =
type Config struct {
	// Server settings
	ServerURL      string
	RequestTimeout time.Duration // 0 = no per-request timeout
	// ListRetries is the number of transport-level retries for directory listings.
	// Zero makes a single failure final.
	ListRetries int

	// Proxy settings
	ProxyMode     string // "no-proxy", "system", "basic", "ntlm"
	ProxyHost     string
	ProxyPort     int
	ProxyUser     string
	ProxyPassword string // never persisted
	NoProxy       string // Comma-separated list of hosts to bypass proxy
	ProxyWarmup   bool

	// Polling settings
	PollInterval time.Duration
	// PollRetries is the number of consecutive status failures tolerated before
	// tracking halts. Zero halts on the first failure.
	PollRetries int

	// DefaultSampleRate is used when no sample rate is given on the command line.
	// Empty keeps the source rate.
	DefaultSampleRate string

	// Desktop notifications
	NotificationsEnabled bool

	// LogFile enables the rotating JSON log file when non-empty.
	LogFile string
}

// Validation errors
var (
	ErrMissingServerURL    = errors.New("server url is required")
	ErrInvalidServerURL    = errors.New("server url must be an absolute http(s) url")
	ErrInvalidPollInterval = errors.New("polling interval_ms must be at least 100")
	ErrInvalidPollRetries  = errors.New("polling max_retries must not be negative")
	ErrInvalidListRetries  = errors.New("server list_retries must be between 0 and 10")
	ErrInvalidSampleRate   = errors.New("default_sample_rate must be a positive integer")
	ErrInvalidProxyMode    = errors.New("proxy mode must be one of no-proxy, system, basic, ntlm")
)

// NewConfig creates a Config with default values.
func NewConfig() *Config {
	return &Config{
		ServerURL:            constants.DefaultServerURL,
		ProxyMode:            "no-proxy",
		PollInterval:         constants.DefaultPollInterval,
		NotificationsEnabled: true,
	}
}

// Load reads configuration from an INI file.
// If the file doesn't exist, returns a config with default values and no error.
// If the file exists but is invalid, returns an error.
func Load(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		path = DefaultConfigPath()
		if path == "" {
			return cfg, nil
		}
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	iniFile, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	server := iniFile.Section("server")
	cfg.ServerURL = server.Key("url").MustString(cfg.ServerURL)
	cfg.RequestTimeout = time.Duration(server.Key("request_timeout_seconds").MustInt(0)) * time.Second
	cfg.ListRetries = server.Key("list_retries").MustInt(0)

	proxy := iniFile.Section("proxy")
	cfg.ProxyMode = proxy.Key("mode").MustString(cfg.ProxyMode)
	cfg.ProxyHost = proxy.Key("host").String()
	cfg.ProxyPort = proxy.Key("port").MustInt(0)
	cfg.ProxyUser = proxy.Key("user").String()
	cfg.NoProxy = proxy.Key("no_proxy").String()
	cfg.ProxyWarmup = proxy.Key("warmup").MustBool(false)

	polling := iniFile.Section("polling")
	cfg.PollInterval = time.Duration(polling.Key("interval_ms").MustInt(int(constants.DefaultPollInterval/time.Millisecond))) * time.Millisecond
	cfg.PollRetries = polling.Key("max_retries").MustInt(0)

	cfg.DefaultSampleRate = iniFile.Section("conversion").Key("default_sample_rate").String()
	cfg.NotificationsEnabled = iniFile.Section("notifications").Key("enabled").MustBool(true)
	cfg.LogFile = iniFile.Section("logging").Key("file").String()

	return cfg, nil
}

// Save writes configuration to an INI file.
// Creates parent directories if they don't exist. The proxy password is never written.
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultConfigPath()
		if path == "" {
			return errors.New("failed to determine config path")
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	iniFile := ini.Empty()

	sections := []struct {
		name string
		keys [][2]string
	}{
		{"server", [][2]string{
			{"url", cfg.ServerURL},
			{"request_timeout_seconds", strconv.Itoa(int(cfg.RequestTimeout / time.Second))},
			{"list_retries", strconv.Itoa(cfg.ListRetries)},
		}},
		{"proxy", [][2]string{
			{"mode", cfg.ProxyMode},
			{"host", cfg.ProxyHost},
			{"port", strconv.Itoa(cfg.ProxyPort)},
			{"user", cfg.ProxyUser},
			{"no_proxy", cfg.NoProxy},
			{"warmup", strconv.FormatBool(cfg.ProxyWarmup)},
		}},
		{"polling", [][2]string{
			{"interval_ms", strconv.Itoa(int(cfg.PollInterval / time.Millisecond))},
			{"max_retries", strconv.Itoa(cfg.PollRetries)},
		}},
		{"conversion", [][2]string{
			{"default_sample_rate", cfg.DefaultSampleRate},
		}},
		{"notifications", [][2]string{
			{"enabled", strconv.FormatBool(cfg.NotificationsEnabled)},
		}},
		{"logging", [][2]string{
			{"file", cfg.LogFile},
		}},
	}

	for _, s := range sections {
		section, err := iniFile.NewSection(s.name)
		if err != nil {
			return fmt.Errorf("failed to create %s section: %w", s.name, err)
		}
		for _, kv := range s.keys {
			section.Key(kv[0]).SetValue(kv[1])
		}
	}

	// Use temporary file + rename for atomicity
	tmpPath := path + ".tmp"
	if err := iniFile.SaveTo(tmpPath); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(tmpPath, 0600); err != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("failed to set config permissions: %w", err)
		}
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to save config: %w", err)
	}

	return nil
}

// MergeWithEnv applies environment overrides.
// Priority (highest to lowest): flags (applied by the caller afterwards), environment, file, defaults.
func (c *Config) MergeWithEnv() {
	if server := os.Getenv("FLAC2ALAC_SERVER"); server != "" {
		c.ServerURL = server
	}
	if proxy := os.Getenv("FLAC2ALAC_PROXY"); proxy != "" {
		c.parseProxyURL(proxy)
	} else if c.ProxyMode == "no-proxy" && (os.Getenv("HTTPS_PROXY") != "" || os.Getenv("HTTP_PROXY") != "") {
		c.ProxyMode = "system"
	}
	if password := os.Getenv("FLAC2ALAC_PROXY_PASSWORD"); password != "" {
		c.ProxyPassword = password
	}
}

// parseProxyURL parses http://[user@]host:port into the proxy fields
func (c *Config) parseProxyURL(proxyURL string) {
	u, err := url.Parse(proxyURL)
	if err != nil || u.Host == "" {
		u, err = url.Parse("http://" + proxyURL)
		if err != nil {
			return
		}
	}
	c.ProxyHost = u.Hostname()
	if port, err := strconv.Atoi(u.Port()); err == nil {
		c.ProxyPort = port
	}
	if u.User != nil {
		c.ProxyUser = u.User.Username()
		if pw, ok := u.User.Password(); ok {
			c.ProxyPassword = pw
		}
	}
	if c.ProxyHost != "" && c.ProxyMode == "no-proxy" {
		c.ProxyMode = "basic"
	}
}

// Validate checks if the configuration is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.ServerURL) == "" {
		return ErrMissingServerURL
	}
	u, err := url.Parse(c.ServerURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return ErrInvalidServerURL
	}
	if c.PollInterval < constants.MinPollInterval {
		return ErrInvalidPollInterval
	}
	if c.PollRetries < 0 {
		return ErrInvalidPollRetries
	}
	if c.ListRetries < 0 || c.ListRetries > 10 {
		return ErrInvalidListRetries
	}
	if c.DefaultSampleRate != "" {
		if n, err := strconv.Atoi(c.DefaultSampleRate); err != nil || n <= 0 {
			return ErrInvalidSampleRate
		}
	}
	switch strings.ToLower(c.ProxyMode) {
	case "", "no-proxy", "system", "basic", "ntlm":
	default:
		return ErrInvalidProxyMode
	}
	return nil
}
