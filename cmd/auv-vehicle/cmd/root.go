package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/auv-alarm/internal/config"
	"github.com/oshokin/auv-alarm/internal/service/vehicle"
	"github.com/oshokin/auv-alarm/internal/version"
)

var (
	// options collects the command-line overrides.
	options vehicle.Options

	// rootCmd represents the base command for running the vehicle monitor.
	rootCmd = &cobra.Command{
		Use:   "auv-vehicle",
		Short: "Monitor the vehicle detector feed and report incidents to the controller.",
		Long: `Reads one detector sample per transmit period, classifies it, raises and
clears the vehicle alarm, and reports the incident state to the controller over gRPC.

When vehicle.logging_enabled is set, position, transition, incident and verdict
records are appended to CSV files in vehicle.log_dir. Prometheus metrics are
served on /metrics when a metrics address is configured.`,
		Args: cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			return vehicle.Run(ctx, &options)
		},
	}
)

// Execute runs the auv-vehicle CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	flags := rootCmd.Flags()
	flags.StringVarP(&options.ConfigPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	flags.StringVarP(&options.ControllerAddress, "controller", "a", "", "controller address (overrides controller.address)")
	flags.StringVarP(&options.FeedPath, "feed", "f", "", "detector feed file (overrides vehicle.feed_path)")
	flags.StringVarP(&options.LogDir, "log-dir", "l", "", "CSV journal directory (overrides vehicle.log_dir)")
	flags.StringVarP(&options.MetricsAddress, "metrics", "m", "", "serve Prometheus metrics on this address")
}
