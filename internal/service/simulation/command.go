package simulation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/oshokin/auv-alarm/internal/config"
	"github.com/oshokin/auv-alarm/internal/feed"
	"github.com/oshokin/auv-alarm/internal/journal"
	"github.com/oshokin/auv-alarm/internal/logger"
	"github.com/oshokin/auv-alarm/internal/metrics"
	"github.com/oshokin/auv-alarm/internal/position"
	repository "github.com/oshokin/auv-alarm/internal/repository/cases"
	"github.com/oshokin/auv-alarm/internal/scheduler"
	"github.com/oshokin/auv-alarm/internal/service/controller"
	"github.com/oshokin/auv-alarm/internal/service/session"
	"github.com/oshokin/auv-alarm/internal/transport"
)

// Options controls a simulation run. Non-empty fields override the
// configuration file.
type Options struct {
	// ConfigPath specifies the path to settings YAML file.
	ConfigPath string
	// Horizon is the simulated mission duration.
	Horizon time.Duration
	// FeedPath overrides vehicle.feed_path.
	FeedPath string
	// LogDir overrides vehicle.log_dir.
	LogDir string
	// StateFile persists the controller ledger. Empty keeps it in memory.
	StateFile string
	// SessionLogLevel overrides log_level for this run only, e.g. "debug"
	// to trace every packet of a short run.
	SessionLogLevel string
}

// Report summarizes a finished run.
type Report struct {
	// Elapsed is the simulated time covered.
	Elapsed time.Duration
	// Traffic holds the packet counters.
	Traffic metrics.Summary
	// Final is the session state at the end of the run.
	Final session.Snapshot
	// OpenCases is the number of controller cases left open.
	OpenCases int
}

var (
	// errHorizonRequired is returned for a non-positive horizon.
	errHorizonRequired = errors.New("simulation horizon must be positive")
	// errUnknownLogLevel is returned for an unparsable session log level.
	errUnknownLogLevel = errors.New("unknown session log level")
)

// Run loads settings from opts and simulates the mission.
func Run(ctx context.Context, opts *Options) (*Report, error) {
	settings, err := config.Load(opts.ConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load settings: %w", err)
	}

	if opts.FeedPath != "" {
		settings.Vehicle.FeedPath = opts.FeedPath
	}

	if opts.LogDir != "" {
		settings.Vehicle.LogDir = opts.LogDir
	}

	if level, ok := logger.ParseLogLevel(settings.LogLevel); ok {
		logger.SetLevel(level)
	}

	if opts.SessionLogLevel != "" {
		level, ok := logger.ParseLogLevel(opts.SessionLogLevel)
		if !ok {
			return nil, fmt.Errorf("%w: %q", errUnknownLogLevel, opts.SessionLogLevel)
		}

		ctx = logger.WithLevelOverride(ctx, level)
	}

	return Simulate(ctx, settings, opts.Horizon, opts.StateFile)
}

// Simulate runs the mission described by settings for horizon of virtual time.
func Simulate(ctx context.Context, settings *config.Config, horizon time.Duration, stateFile string) (*Report, error) {
	return simulate(ctx, settings, horizon, stateFile, journal.OpenWriter)
}

func simulate(
	ctx context.Context,
	settings *config.Config,
	horizon time.Duration,
	stateFile string,
	openJournal journal.Opener,
) (*Report, error) {
	if horizon <= 0 {
		return nil, errHorizonRequired
	}

	ctx = logger.WithKV(logger.WithName(ctx, "auv-simulator"), "vehicle", settings.Vehicle.ID)

	reader, err := feed.Open(settings.Vehicle.FeedPath)
	if err != nil {
		return nil, fmt.Errorf("open detection feed: %w", err)
	}

	defer func() { _ = reader.Close() }() //nolint:errcheck // Read-only file.

	w, err := journal.Select(settings.Vehicle.LoggingEnabled, settings.Vehicle.LogDir, openJournal)
	if err != nil {
		return nil, fmt.Errorf("open journal: %w", err)
	}

	// Session.Stop closes the journal; until it runs the journal is ours.
	stopped := false

	defer func() {
		if !stopped {
			_ = w.Close() //nolint:errcheck // Already failing, the run error wins.
		}
	}()

	var (
		loop  = scheduler.NewVirtual(horizon)
		epoch = time.Now()
	)

	var ledger repository.Repository
	if stateFile != "" {
		ledger = repository.NewFileRepository(stateFile)
	}

	peer, err := controller.NewService(ctx, ledger,
		controller.Policy{
			WatchReports:   settings.Controller.WatchReports,
			InspectionTime: settings.Controller.InspectionTime,
			ResolvedHold:   settings.Controller.ResolvedHold,
		},
		func() time.Time { return epoch.Add(loop.Now()) })
	if err != nil {
		return nil, fmt.Errorf("create controller: %w", err)
	}

	registry := position.NewRegistry()
	if err = registry.Register(settings.Vehicle.ID, session.NewVehicle(loop.Now, settings.Vehicle)); err != nil {
		return nil, fmt.Errorf("register vehicle: %w", err)
	}

	vehicle, err := registry.Resolve(settings.Vehicle.ID)
	if err != nil {
		return nil, fmt.Errorf("resolve vehicle: %w", err)
	}

	traffic, err := metrics.NewTraffic(prometheus.NewRegistry(), settings.Vehicle.ID)
	if err != nil {
		return nil, fmt.Errorf("register metrics: %w", err)
	}

	link := transport.NewSimulated(loop, peer, settings.Link.Latency)

	sess, err := session.New(session.OptionsFrom(settings.Vehicle), session.Dependencies{
		Scheduler: loop,
		Feed:      reader,
		Vehicle:   vehicle,
		Transport: link,
		Traffic:   traffic,
		Journal:   w,
	})
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	link.Attach(sess)
	sess.Start()

	logger.InfoKV(ctx, "Simulation started",
		"horizon", horizon,
		"feed", settings.Vehicle.FeedPath,
		"latency", settings.Link.Latency,
		"transmit_period", settings.Vehicle.TransmitPeriod)

	if err = loop.Run(ctx); err != nil {
		return nil, fmt.Errorf("run event loop: %w", err)
	}

	report := &Report{
		Elapsed:   loop.Now(),
		Traffic:   traffic.Summary(),
		Final:     sess.Snapshot(),
		OpenCases: len(peer.Cases()),
	}

	stopped = true

	if err = sess.Stop(); err != nil {
		return nil, fmt.Errorf("stop session: %w", err)
	}

	logger.InfoKV(ctx, "Simulation finished",
		"elapsed", report.Elapsed,
		"sent", report.Traffic.Sent,
		"received", report.Traffic.Received,
		"dropped", report.Traffic.Dropped,
		"level", report.Final.Level,
		"open_cases", report.OpenCases)

	return report, nil
}
