package cli

import (
	"fmt"

	"github.com/raspberrycoulis/flac2alac/internal/config"
	"github.com/raspberrycoulis/flac2alac/internal/logging"
)

var fileSink *logging.FileSink

// setupLogger (re)creates the global logger for mode. The file sink comes from
// --log-file or, failing that, the [logging] file setting.
func setupLogger(mode string) error {
	path := logFile
	if path == "" {
		if cfg, err := config.Load(cfgFile); err == nil {
			path = cfg.LogFile
		}
	}

	closeLogger()
	if path != "" {
		sink, err := logging.NewFileSink(path)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		fileSink = sink
	}

	logger = logging.NewLogger(mode, fileSink)
	return nil
}

func closeLogger() {
	if fileSink != nil {
		_ = fileSink.Close()
		fileSink = nil
	}
}
