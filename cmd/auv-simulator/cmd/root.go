package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/oshokin/auv-alarm/internal/config"
	"github.com/oshokin/auv-alarm/internal/service/simulation"
	"github.com/oshokin/auv-alarm/internal/version"
)

// defaultHorizon is the default simulated mission length.
const defaultHorizon = 2 * time.Hour

var (
	// options collects the command-line settings.
	options simulation.Options

	// rootCmd represents the base command for running a simulation.
	rootCmd = &cobra.Command{
		Use:   "auv-simulator",
		Short: "Replay a detector feed against an in-process controller on a virtual clock.",
		Long: `Runs the vehicle monitor and the controller in one process with a simulated
acoustic link of link.latency one-way delay. Time is virtual, so the whole
horizon is simulated as fast as the events can be processed.

The run ends at the horizon and prints a traffic summary.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			report, err := simulation.Run(ctx, &options)
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(),
				"simulated %s: sent %d, received %d, dropped %d, final level %s at (%.2f, %.2f, %.2f), open cases %d\n",
				report.Elapsed,
				report.Traffic.Sent,
				report.Traffic.Received,
				report.Traffic.Dropped,
				report.Final.Level,
				report.Final.X,
				report.Final.Y,
				report.Final.Z,
				report.OpenCases)

			return nil
		},
	}
)

// Execute runs the auv-simulator CLI and exits with non-zero status on error.
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
	flags.DurationVarP(&options.Horizon, "horizon", "t", defaultHorizon, "simulated mission duration")
	flags.StringVarP(&options.FeedPath, "feed", "f", "", "detector feed file (overrides vehicle.feed_path)")
	flags.StringVarP(&options.LogDir, "log-dir", "l", "", "CSV journal directory (overrides vehicle.log_dir)")
	flags.StringVarP(&options.StateFile, "state-file", "s", "", "persist the controller ledger to this file")
	flags.StringVar(&options.SessionLogLevel, "session-log-level", "", "log level for this run only (debug traces every packet)")
}
