package cli

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/raspberrycoulis/flac2alac/internal/config"
	"github.com/raspberrycoulis/flac2alac/internal/jobs"
)

// newConfigCmd creates the 'config' command group.
func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Manage flac2alac configuration",
		Long: `Configuration management commands for flac2alac.

Commands:
  init  - Interactive configuration setup
  show  - Display current configuration
  path  - Show configuration file path`,
	}

	configCmd.AddCommand(newConfigInitCmd())
	configCmd.AddCommand(newConfigShowCmd())
	configCmd.AddCommand(newConfigPathCmd())

	return configCmd
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return config.DefaultConfigPath()
}

// newConfigInitCmd creates the 'config init' command.
func newConfigInitCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration interactively",
		Long: `Interactive configuration setup for flac2alac.

The configuration is saved to ~/.config/flac2alac/config
(%APPDATA%\flac2alac\config on Windows), or to --config.

Use --force to overwrite existing configuration.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath()
			out := cmd.OutOrStdout()

			if !force {
				if _, err := os.Stat(path); err == nil {
					fmt.Fprintf(out, "Configuration already exists at: %s\n", path)
					fmt.Fprintln(out, "Use --force to overwrite or run 'config show' to view current config.")
					return nil
				}
			}

			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			if err := runConfigWizard(newPrompter(cmd.InOrStdin(), out), out, cfg); err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return fmt.Errorf("invalid configuration: %w", err)
			}
			if err := config.Save(cfg, path); err != nil {
				return fmt.Errorf("failed to save config: %w", err)
			}

			GetLogger().Info().Str("path", path).Msg("Configuration saved")
			fmt.Fprintln(out)
			fmt.Fprintf(out, "✓ Configuration saved to: %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "Overwrite existing configuration")

	return cmd
}

func runConfigWizard(p *prompter, out io.Writer, cfg *config.Config) error {
	fmt.Fprintln(out, "flac2alac Configuration Setup")
	fmt.Fprintln(out, "=============================")
	fmt.Fprintln(out)

	cfg.ServerURL = p.ask("Server URL", cfg.ServerURL)

	for {
		rate := p.ask("Default sample rate in Hz (empty = keep source rate)", cfg.DefaultSampleRate)
		if _, err := jobs.ParseSampleRate(rate); err != nil {
			fmt.Fprintf(out, "  Error: %v\n", err)
			continue
		}
		cfg.DefaultSampleRate = rate
		break
	}

	ms := p.ask("Status polling interval in ms", strconv.Itoa(int(cfg.PollInterval.Milliseconds())))
	if v, err := strconv.Atoi(ms); err == nil && v > 0 {
		cfg.PollInterval = time.Duration(v) * time.Millisecond
	}

	retries := p.ask("Status failures to retry before giving up (0 = stop on first)", strconv.Itoa(cfg.PollRetries))
	if v, err := strconv.Atoi(retries); err == nil && v >= 0 {
		cfg.PollRetries = v
	}

	cfg.NotificationsEnabled = p.confirm("Desktop notifications", cfg.NotificationsEnabled)

	if p.confirm("Configure proxy?", cfg.ProxyMode != "no-proxy" && cfg.ProxyMode != "") {
		fmt.Fprintln(out)
		fmt.Fprintln(out, "Proxy modes: no-proxy, system, basic, ntlm")
		cfg.ProxyMode = p.ask("Proxy mode", "system")
		if cfg.ProxyMode == "basic" || cfg.ProxyMode == "ntlm" {
			cfg.ProxyHost = p.ask("Proxy host", cfg.ProxyHost)
			port := p.ask("Proxy port", strconv.Itoa(max(cfg.ProxyPort, 8080)))
			if v, err := strconv.Atoi(port); err == nil && v > 0 {
				cfg.ProxyPort = v
			}
			cfg.ProxyUser = p.ask("Proxy user (password is asked at run time)", cfg.ProxyUser)
			cfg.NoProxy = p.ask("Hosts that bypass the proxy (comma-separated)", cfg.NoProxy)
		}
	} else {
		cfg.ProxyMode = "no-proxy"
	}

	return nil
}

// newConfigShowCmd creates the 'config show' command.
func newConfigShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Display current configuration",
		Long: `Display the current configuration settings.

Priority: flags > environment (FLAC2ALAC_SERVER, FLAC2ALAC_PROXY, HTTPS_PROXY) > config file > defaults`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			writeConfig(cmd.OutOrStdout(), cfg, configPath())
			return nil
		},
	}

	return cmd
}

func writeConfig(w io.Writer, cfg *config.Config, path string) {
	fmt.Fprintln(w, "Current Configuration")
	fmt.Fprintln(w, "=====================")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Server:")
	fmt.Fprintf(w, "  URL:             %s\n", cfg.ServerURL)
	if cfg.RequestTimeout > 0 {
		fmt.Fprintf(w, "  Request timeout: %s\n", cfg.RequestTimeout)
	} else {
		fmt.Fprintln(w, "  Request timeout: none")
	}
	fmt.Fprintf(w, "  List retries:    %d\n", cfg.ListRetries)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Polling:")
	fmt.Fprintf(w, "  Interval:        %s\n", cfg.PollInterval)
	fmt.Fprintf(w, "  Max retries:     %d\n", cfg.PollRetries)
	fmt.Fprintln(w)

	rate := cfg.DefaultSampleRate
	if rate == "" {
		rate = "keep source rate"
	}
	fmt.Fprintln(w, "Conversion:")
	fmt.Fprintf(w, "  Sample rate:     %s\n", rate)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Proxy:")
	fmt.Fprintf(w, "  Mode:            %s\n", cfg.ProxyMode)
	if cfg.ProxyHost != "" {
		fmt.Fprintf(w, "  Host:            %s:%d\n", cfg.ProxyHost, cfg.ProxyPort)
	}
	if cfg.ProxyUser != "" {
		fmt.Fprintf(w, "  User:            %s\n", cfg.ProxyUser)
	}
	if cfg.NoProxy != "" {
		fmt.Fprintf(w, "  No proxy:        %s\n", cfg.NoProxy)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Notifications:     %t\n", cfg.NotificationsEnabled)
	if cfg.LogFile != "" {
		fmt.Fprintf(w, "Log file:          %s\n", cfg.LogFile)
	}
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Configuration file: %s\n", path)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Fprintln(w, "  (file does not exist - using defaults)")
	}
}

// newConfigPathCmd creates the 'config path' command.
func newConfigPathCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			path := configPath()
			fmt.Fprintln(out, path)

			if info, err := os.Stat(path); err == nil {
				fmt.Fprintf(out, "Status: ✓ File exists (%d bytes, modified %s)\n", info.Size(), info.ModTime().Format("2006-01-02 15:04:05"))
			} else {
				fmt.Fprintln(out, "Status: File does not exist")
				fmt.Fprintln(out, "Create a configuration file with: flac2alac config init")
			}
			return nil
		},
	}

	return cmd
}
