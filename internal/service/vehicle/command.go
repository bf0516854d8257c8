package vehicle

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/oshokin/auv-alarm/internal/api/grpc/link"
	"github.com/oshokin/auv-alarm/internal/config"
	"github.com/oshokin/auv-alarm/internal/feed"
	"github.com/oshokin/auv-alarm/internal/journal"
	"github.com/oshokin/auv-alarm/internal/logger"
	"github.com/oshokin/auv-alarm/internal/metrics"
	"github.com/oshokin/auv-alarm/internal/position"
	"github.com/oshokin/auv-alarm/internal/scheduler"
	"github.com/oshokin/auv-alarm/internal/service/session"
	"github.com/oshokin/auv-alarm/internal/transport"
)

// Options controls the vehicle process. Non-empty fields override the
// configuration file.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// ControllerAddress overrides controller.address.
	ControllerAddress string
	// FeedPath overrides vehicle.feed_path.
	FeedPath string
	// LogDir overrides vehicle.log_dir.
	LogDir string
	// MetricsAddress overrides metrics_address.
	MetricsAddress string
}

// metricsShutdownTimeout bounds the metrics server shutdown.
const metricsShutdownTimeout = 5 * time.Second

// Run monitors the vehicle until ctx is cancelled.
func Run(ctx context.Context, opts *Options) error {
	return run(ctx, opts, journal.OpenWriter)
}

func run(ctx context.Context, opts *Options, openJournal journal.Opener) error {
	ctx = logger.WithName(ctx, "auv-vehicle")

	settings, err := load(opts)
	if err != nil {
		return err
	}

	ctx = logger.WithKV(ctx, "vehicle", settings.Vehicle.ID)

	reader, err := feed.Open(settings.Vehicle.FeedPath)
	if err != nil {
		return fmt.Errorf("open detection feed: %w", err)
	}

	defer func() {
		if closeErr := reader.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to close detection feed", "error", closeErr)
		}
	}()

	w, err := journal.Select(settings.Vehicle.LoggingEnabled, settings.Vehicle.LogDir, openJournal)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}

	// Session.Stop closes the journal; until it runs the journal is ours.
	stopped := false

	defer func() {
		if stopped {
			return
		}

		if closeErr := w.Close(); closeErr != nil {
			logger.WarnKV(ctx, "Failed to close journal", "error", closeErr)
		}
	}()

	loop := scheduler.NewRealtime()

	registry := position.NewRegistry()
	if err = registry.Register(settings.Vehicle.ID, session.NewVehicle(loop.Now, settings.Vehicle)); err != nil {
		return fmt.Errorf("register vehicle: %w", err)
	}

	vehicle, err := registry.Resolve(settings.Vehicle.ID)
	if err != nil {
		return fmt.Errorf("resolve vehicle: %w", err)
	}

	promRegistry := prometheus.NewRegistry()

	traffic, err := metrics.NewTraffic(promRegistry, settings.Vehicle.ID)
	if err != nil {
		return fmt.Errorf("register metrics: %w", err)
	}

	if settings.MetricsAddress != "" {
		_, stopMetrics, metricsErr := serveMetrics(ctx, settings.MetricsAddress, promRegistry)
		if metricsErr != nil {
			return metricsErr
		}

		defer stopMetrics()
	}

	client, err := link.Dial(ctx, settings.Controller.Address, link.WithCallTimeout(settings.Controller.Timeout))
	if err != nil {
		return fmt.Errorf("connect to controller: %w", err)
	}

	defer func() { _ = client.Close() }() //nolint:errcheck // Nothing to do on close failure at shutdown.

	remote := transport.NewRemote(loop, client)

	sess, err := session.New(session.OptionsFrom(settings.Vehicle), session.Dependencies{
		Scheduler: loop,
		Feed:      reader,
		Vehicle:   vehicle,
		Transport: remote,
		Traffic:   traffic,
		Journal:   w,
	})
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}

	remote.Attach(sess)
	sess.Start()

	logger.InfoKV(ctx, "Vehicle monitoring started",
		"controller", settings.Controller.Address,
		"feed", settings.Vehicle.FeedPath,
		"transmit_period", settings.Vehicle.TransmitPeriod,
		"drop_stale_packets", settings.Vehicle.DropStalePackets,
		"logging_enabled", settings.Vehicle.LoggingEnabled)

	if err = loop.Run(ctx); err != nil {
		return fmt.Errorf("run event loop: %w", err)
	}

	remote.Wait()

	stopped = true

	if err = sess.Stop(); err != nil {
		return fmt.Errorf("stop session: %w", err)
	}

	summary := traffic.Summary()
	logger.InfoKV(ctx, "Vehicle monitoring stopped",
		"sent", summary.Sent,
		"received", summary.Received,
		"dropped", summary.Dropped)

	return nil
}

// load reads the settings and applies command-line overrides.
func load(opts *Options) (*config.Config, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.ControllerAddress != "" {
		settings.Controller.Address = opts.ControllerAddress
	}

	if opts.FeedPath != "" {
		settings.Vehicle.FeedPath = opts.FeedPath
	}

	if opts.LogDir != "" {
		settings.Vehicle.LogDir = opts.LogDir
	}

	if opts.MetricsAddress != "" {
		settings.MetricsAddress = opts.MetricsAddress
	}

	if err = config.Validate(settings); err != nil {
		return nil, fmt.Errorf("validate settings: %w", err)
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	return settings, nil
}

// serveMetrics exposes the registry on /metrics until the returned stop
// function is called. It returns the bound address.
func serveMetrics(ctx context.Context, address string, gatherer prometheus.Gatherer) (string, func(), error) {
	lc := net.ListenConfig{}

	lis, err := lc.Listen(ctx, "tcp", address)
	if err != nil {
		return "", nil, fmt.Errorf("listen for metrics on %s: %w", address, err)
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: metricsShutdownTimeout,
	}

	go func() {
		if serveErr := srv.Serve(lis); serveErr != nil && !errors.Is(serveErr, http.ErrServerClosed) {
			logger.ErrorKV(ctx, "Metrics server failed", "error", serveErr)
		}
	}()

	logger.InfoKV(ctx, "Serving metrics", "address", lis.Addr().String())

	return lis.Addr().String(), func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), metricsShutdownTimeout)
		defer cancel()

		if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
			logger.WarnKV(ctx, "Failed to stop metrics server", "error", shutdownErr)
		}
	}, nil
}
