// Package cli provides the command-line interface for flac2alac.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/raspberrycoulis/flac2alac/internal/logging"
	"github.com/raspberrycoulis/flac2alac/internal/progress"
)

var (
	// Global flags
	cfgFile   string
	serverURL string
	verbose   bool
	debug     bool
	logFile   string
	noNotify  bool

	// Global logger
	logger *logging.Logger

	// Global context for signal handling
	rootContext context.Context
	cancelFunc  context.CancelFunc
)

// Version information - set by main package at startup
var (
	Version   = "v0.3.0-dev"
	BuildTime = "unknown"
)

// NewRootCmd creates the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "flac2alac",
		Short: "Browse a FLAC library and convert it to ALAC on a flac2alac server",
		Long: `flac2alac ` + Version + ` - Built: ` + BuildTime + `
Client for a flac2alac conversion server.

Interactive mode (default on a terminal):
  Browse the server's library, select files and folders across
  directories, pick a sample rate and watch the job to completion.

Scriptable mode:
  ls, convert and status drive the same server API without the
  full-screen browser.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if verbose || debug {
				logging.SetGlobalLevel(zerolog.DebugLevel)
			}
			return setupLogger(logging.ModeCLI)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			closeLogger()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !progress.IsTerminal(os.Stdin) || !progress.IsTerminal(os.Stdout) {
				return cmd.Help()
			}
			return runBrowse(cmd, "")
		},
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "Configuration file path")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Conversion server URL (overrides config and FLAC2ALAC_SERVER)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output (shows debug messages)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "Enable debug output (same as --verbose)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this rotating file")
	rootCmd.PersistentFlags().BoolVar(&noNotify, "no-notify", false, "Disable desktop notifications")

	rootCmd.Version = Version + " (" + BuildTime + ")"

	rootCmd.AddCommand(newCompletionCmd(rootCmd))
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	return rootCmd
}

func newCompletionCmd(rootCmd *cobra.Command) *cobra.Command {
	completionCmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Enable tab-completion for flac2alac commands",
		Long: `Generate shell completion scripts for flac2alac.

QUICK START:

  bash:
    flac2alac completion bash | sudo tee /etc/bash_completion.d/flac2alac

  zsh:
    mkdir -p ~/.zsh/completions
    flac2alac completion zsh > ~/.zsh/completions/_flac2alac
    # Then add to ~/.zshrc: fpath=(~/.zsh/completions $fpath)

  fish:
    flac2alac completion fish > ~/.config/fish/completions/flac2alac.fish

  PowerShell:
    flac2alac completion powershell >> $PROFILE`,
	}

	completionCmd.AddCommand(&cobra.Command{
		Use:   "bash",
		Short: "Generate bash completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenBashCompletion(cmd.OutOrStdout())
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:   "zsh",
		Short: "Generate zsh completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenZshCompletion(cmd.OutOrStdout())
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:   "fish",
		Short: "Generate fish completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenFishCompletion(cmd.OutOrStdout(), true)
		},
	})
	completionCmd.AddCommand(&cobra.Command{
		Use:   "powershell",
		Short: "Generate PowerShell completion script",
		RunE: func(cmd *cobra.Command, args []string) error {
			return rootCmd.GenPowerShellCompletion(cmd.OutOrStdout())
		},
	})

	return completionCmd
}

// Execute runs the CLI.
func Execute() error {
	// Create a context that can be cancelled by signals
	rootContext, cancelFunc = context.WithCancel(context.Background())
	defer cancelFunc()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		for sig := range sigChan {
			if sig != nil {
				fmt.Fprintf(os.Stderr, "\nReceived signal %v, stopping...\n", sig)
				cancelFunc()
			}
		}
	}()

	rootCmd := NewRootCmd()
	AddCommands(rootCmd)
	err := rootCmd.Execute()

	signal.Stop(sigChan)
	close(sigChan)

	return err
}

// AddCommands adds all subcommands to the root command.
func AddCommands(rootCmd *cobra.Command) {
	rootCmd.AddCommand(newBrowseCmd())
	rootCmd.AddCommand(newLsCmd())
	rootCmd.AddCommand(newConvertCmd())
	rootCmd.AddCommand(newStatusCmd())
	rootCmd.AddCommand(newConfigCmd())
}

// GetLogger returns the global CLI logger.
func GetLogger() *logging.Logger {
	if logger == nil {
		logger = logging.NewDefaultCLILogger()
	}
	return logger
}

// GetContext returns the global CLI context with signal handling.
// This context will be cancelled when the user presses Ctrl+C.
func GetContext() context.Context {
	if rootContext == nil {
		return context.Background()
	}
	return rootContext
}
