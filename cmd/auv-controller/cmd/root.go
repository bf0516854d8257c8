package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/oshokin/auv-alarm/internal/config"
	"github.com/oshokin/auv-alarm/internal/service/controller"
	"github.com/oshokin/auv-alarm/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// stateFile path where the case ledger is persisted.
	stateFile string

	// rootCmd represents the base command for running the controller.
	rootCmd = &cobra.Command{
		Use:   "auv-controller [listen-address]",
		Short: "Run the controller peer that disposes of vehicle incidents.",
		Long: `Starts the gRPC controller that answers vehicle status packets.

Gray-zone incidents are answered with "keep watching" for controller.watch_reports
reports and then resolved. Object-band incidents are confirmed and resolved once
controller.inspection_time has passed. Only the port of controller.address is used
for listening unless a listen address is given as argument.
Open cases are persisted to a JSON file for recovery across restarts.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			var listenAddress string
			if len(args) > 0 {
				listenAddress = args[0]
			}

			options := &controller.Options{
				ConfigPath:    configPath,
				ListenAddress: listenAddress,
				StateFile:     stateFile,
			}

			return controller.Run(ctx, options)
		},
	}
)

// Execute runs the auv-controller CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&stateFile, "state-file", "s", "", "path to persist the case ledger (overrides controller.state_file)")
}
