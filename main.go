// flac2alac - browse a conversion server, queue FLAC to ALAC jobs and follow them to completion.
//
// With no arguments on an interactive terminal the browser UI starts;
// subcommands (ls, convert, status, config) run non-interactively.
package main

import (
	"os"

	"github.com/raspberrycoulis/flac2alac/internal/cli"
	"github.com/raspberrycoulis/flac2alac/internal/version"
)

func main() {
	cli.Version = version.Version
	cli.BuildTime = version.BuildTime

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
