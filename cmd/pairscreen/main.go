package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/five82/pairscreen/internal/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := rootCmd(app.Run).ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "pairscreen: %v\n", err)
		return 1
	}
	return 0
}

// rootCmd builds the command; runApp receives the options assembled from flags.
func rootCmd(runApp func(context.Context, app.Options) error) *cobra.Command {
	var opts app.Options
	var logFile string

	cmd := &cobra.Command{
		Use:           "pairscreen",
		Short:         "Show a TV pairing code and its live server connection",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("log-file") {
				opts.LogFile = &logFile
			}
			return runApp(cmd.Context(), opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&opts.ConfigPath, "config", "", "config file path (default ~/.config/pairscreen/config.toml)")
	flags.StringVar(&opts.PrefsPath, "prefs", "", "preferences file path (default ~/.config/pairscreen/prefs.toml)")
	flags.StringVar(&opts.Endpoint, "endpoint", "", "override pairing_endpoint")
	flags.StringVar(&opts.RealtimeURL, "realtime-url", "", "override realtime_url")
	flags.StringVar(&logFile, "log-file", "", "override log_file; empty disables logging")
	flags.StringVar(&opts.LogLevel, "log-level", "", "override log_level (debug, info, warn, error)")

	return cmd
}
