package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/raspberrycoulis/flac2alac/internal/api"
	"github.com/raspberrycoulis/flac2alac/internal/config"
	"github.com/raspberrycoulis/flac2alac/internal/constants"
	"github.com/raspberrycoulis/flac2alac/internal/events"
	ihttp "github.com/raspberrycoulis/flac2alac/internal/http"
	"github.com/raspberrycoulis/flac2alac/internal/notify"
	"github.com/raspberrycoulis/flac2alac/internal/poller"
)

// session bundles what a command needs to talk to the server.
type session struct {
	cfg      *config.Config
	client   *api.Client
	eventBus *events.EventBus
	journal  <-chan struct{}
	cancel   context.CancelFunc
}

// loadConfig loads the config file and applies environment and flag overrides.
// Priority: flags > environment > config file > defaults.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	cfg.MergeWithEnv()
	if serverURL != "" {
		cfg.ServerURL = serverURL
	}
	if logFile != "" {
		cfg.LogFile = logFile
	}
	if noNotify {
		cfg.NotificationsEnabled = false
	}
	return cfg, nil
}

// newSession loads configuration and creates the API client and event bus.
// Desktop notifications are attached to the bus when enabled.
func newSession(ctx context.Context) (*session, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if ihttp.NeedsProxyPassword(cfg) {
		password, err := promptPassword(fmt.Sprintf("Proxy password for %s@%s: ", cfg.ProxyUser, cfg.ProxyHost))
		if err != nil {
			return nil, fmt.Errorf("failed to read proxy password: %w", err)
		}
		cfg.ProxyPassword = password
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	client, err := api.NewClient(cfg, GetLogger())
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}

	s := &session{
		cfg:      cfg,
		client:   client,
		eventBus: events.NewEventBus(constants.EventBusDefaultBuffer),
	}

	watchCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.journal = events.Journal(watchCtx, s.eventBus, GetLogger())
	if cfg.NotificationsEnabled {
		notifier := notify.NewNotifier(notify.DefaultConfig(), GetLogger())
		notifier.Watch(watchCtx, s.eventBus)
	}

	GetLogger().Debug().Str("server", client.BaseURL()).Msg("session ready")
	return s, nil
}

// pollOptions returns the polling options configured for this session.
func (s *session) pollOptions() poller.Options {
	return poller.Options{
		Interval: s.cfg.PollInterval,
		Policy:   poller.PolicyFor(s.cfg.PollRetries),
	}
}

// Close releases the event bus, letting the journal drain, then stops notifications.
func (s *session) Close() {
	if dropped := s.eventBus.Dropped(); dropped > 0 {
		GetLogger().Debug().Int64("dropped", dropped).Msg("events dropped")
	}
	s.eventBus.Close()
	<-s.journal
	s.cancel()
}

// stderr is where progress and summaries go; stdout carries command output.
var stderr = os.Stderr
