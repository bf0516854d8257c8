package controller

import (
	"context"
	"errors"
	"fmt"
	"net"

	"google.golang.org/grpc"

	"github.com/oshokin/auv-alarm/internal/api/grpc/link"
	"github.com/oshokin/auv-alarm/internal/config"
	"github.com/oshokin/auv-alarm/internal/logger"
	repository "github.com/oshokin/auv-alarm/internal/repository/cases"
)

// Options controls the controller process and configuration.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ListenAddress provides an optional listen address override for the gRPC server.
	ListenAddress string
	// StateFile specifies the path to persist the case ledger.
	StateFile string
}

// ErrNoControllerAddress indicates missing controller configuration.
var ErrNoControllerAddress = errors.New("no controller address configured")

// Run starts the gRPC server and blocks until context is canceled or server stops.
// Loads configuration first, then determines listen address from config or override.
func Run(ctx context.Context, opts *Options) error {
	ctx = logger.WithName(ctx, "auv-controller")

	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	stateFile := settings.Controller.StateFile
	if opts.StateFile != "" {
		stateFile = opts.StateFile
	}

	listenAddress, err := resolveListenAddress(settings.Controller.Address, opts.ListenAddress)
	if err != nil {
		return fmt.Errorf("resolve listen address: %w", err)
	}

	svc, err := NewService(ctx,
		repository.NewFileRepository(stateFile),
		Policy{
			WatchReports:   settings.Controller.WatchReports,
			InspectionTime: settings.Controller.InspectionTime,
			ResolvedHold:   settings.Controller.ResolvedHold,
		},
		nil)
	if err != nil {
		return fmt.Errorf("initialise service: %w", err)
	}

	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", listenAddress)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", listenAddress, err)
	}

	grpcServer := grpc.NewServer()
	link.RegisterLinkServer(grpcServer, link.NewServer(svc))

	logger.InfoKV(ctx, "Controller listening",
		"listen_address", listenAddress,
		"state_file", stateFile,
		"watch_reports", settings.Controller.WatchReports,
		"inspection_time", settings.Controller.InspectionTime,
		"resolved_hold", settings.Controller.ResolvedHold)

	// Closed after GracefulStop so Run returns only once the server is down.
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		logger.Info(ctx, "Shutting down gRPC server")
		grpcServer.GracefulStop()
		close(done)
	}()

	if err := grpcServer.Serve(lis); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
		return fmt.Errorf("serve gRPC: %w", err)
	}

	<-done
	logger.Info(ctx, "GRPC server stopped")

	return nil
}

// resolveListenAddress determines the listen address for the gRPC server.
// An override wins; otherwise the port of configAddr is bound on all interfaces.
func resolveListenAddress(configAddr, override string) (string, error) {
	if override != "" {
		return override, nil
	}

	if configAddr == "" {
		return "", ErrNoControllerAddress
	}

	_, port, err := net.SplitHostPort(configAddr)
	if err != nil {
		return "", fmt.Errorf("invalid controller address format %q: %w", configAddr, err)
	}

	return ":" + port, nil
}
