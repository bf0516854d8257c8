package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/oshokin/auv-alarm/internal/logger"
	"github.com/oshokin/auv-alarm/internal/position"
)

// Config holds the settings shared by the vehicle, controller and simulator.
type Config struct {
	// LogLevel is the minimum zap level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// MetricsAddress exposes Prometheus metrics on the vehicle when set.
	MetricsAddress string `yaml:"metrics_address,omitempty"`
	// Vehicle configures the monitoring session.
	Vehicle Vehicle `yaml:"vehicle"`
	// Controller configures the remote controller peer.
	Controller Controller `yaml:"controller"`
	// Link configures the simulated acoustic link.
	Link Link `yaml:"link"`
}

// Vehicle holds the monitoring session options.
type Vehicle struct {
	// ID names the position controller in the registry and labels metrics.
	ID string `yaml:"id"`
	// DropStalePackets rejects inbound packets at or below the watermark.
	DropStalePackets bool `yaml:"drop_stale_packets"`
	// LoggingEnabled turns on the CSV journal in LogDir.
	LoggingEnabled bool `yaml:"logging_enabled"`
	// TransmitPeriod is the interval between status packets.
	TransmitPeriod time.Duration `yaml:"transmit_period"`
	// CruiseSpeed is commanded when an incident resolves.
	CruiseSpeed float64 `yaml:"cruise_speed"`
	// TrueNegativeThreshold separates tn from fn verdicts.
	TrueNegativeThreshold time.Duration `yaml:"true_negative_time_threshold"`
	// FeedPath is the detector feed file.
	FeedPath string `yaml:"feed_path"`
	// LogDir receives the CSV journal.
	LogDir string `yaml:"log_dir"`
	// Start is the initial vehicle position.
	Start position.Waypoint `yaml:"start"`
	// Waypoints is the mission; the first one becomes the active destination.
	Waypoints []position.Waypoint `yaml:"waypoints,omitempty"`
}

// Controller holds the controller peer options.
type Controller struct {
	// Address is the gRPC address of the controller.
	Address string `yaml:"address"`
	// StateFile persists the case ledger.
	StateFile string `yaml:"state_file"`
	// WatchReports is how many gray-zone reports get "keep watching" before resolution.
	WatchReports int `yaml:"watch_reports"`
	// InspectionTime is how long a confirmed incident is held before resolution.
	InspectionTime time.Duration `yaml:"inspection_time"`
	// ResolvedHold is how long a resolved anchor keeps answering late reports
	// instead of opening a new case. Zero disables the hold.
	ResolvedHold time.Duration `yaml:"resolved_hold"`
	// Timeout bounds a single Report call.
	Timeout time.Duration `yaml:"timeout"`
}

// Link holds the simulated link options.
type Link struct {
	// Latency is the one-way delay applied in simulation.
	Latency time.Duration `yaml:"latency"`
}

const (
	// DefaultConfigFilename is the default filename for settings.
	DefaultConfigFilename = "auv-alarm.yaml"
	// DefaultStateFilename is the default filename for the controller ledger.
	DefaultStateFilename = "auv-controller-cases.json"
	// DefaultFeedFilename is the default detector feed.
	DefaultFeedFilename = "objectdetection-inputs.txt"
	// DefaultLogDir is the default CSV journal directory.
	DefaultLogDir = "log"
	// DefaultVehicleID is the default position controller id.
	DefaultVehicleID = "auv-1"
	// DefaultTransmitPeriod is the default interval between status packets.
	DefaultTransmitPeriod = 60 * time.Second
	// DefaultCruiseSpeed is the default resume speed in m/s.
	DefaultCruiseSpeed = 0.5
	// DefaultTrueNegativeThreshold is the default tn/fn threshold.
	DefaultTrueNegativeThreshold = 120 * time.Second
	// DefaultWatchReports is the default number of "keep watching" replies.
	DefaultWatchReports = 3
	// DefaultInspectionTime is the default hold for confirmed incidents.
	DefaultInspectionTime = 5 * time.Minute
	// DefaultResolvedHold is the default hold for resolved anchors.
	DefaultResolvedHold = 10 * time.Minute
	// DefaultTimeout is the default duration for RPC calls.
	DefaultTimeout = 5 * time.Second
	// DefaultLatency is the default one-way simulated link delay.
	DefaultLatency = time.Second
	// DefaultFilePermissions is the default file permission for written files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errNonPositive is returned for durations or counts that must be positive.
	errNonPositive = errors.New("must be positive")
	// errNegative is returned for values that must not be negative.
	errNegative = errors.New("must not be negative")
	// errUnknownLogLevel is returned for unparsable log levels.
	errUnknownLogLevel = errors.New("unknown log level")
)

// Default returns a configuration with every default applied.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Vehicle: Vehicle{
			ID:                    DefaultVehicleID,
			DropStalePackets:      true,
			LoggingEnabled:        false,
			TransmitPeriod:        DefaultTransmitPeriod,
			CruiseSpeed:           DefaultCruiseSpeed,
			TrueNegativeThreshold: DefaultTrueNegativeThreshold,
			FeedPath:              DefaultFeedFilename,
			LogDir:                DefaultLogDir,
		},
		Controller: Controller{
			Address:        "127.0.0.1:50051",
			StateFile:      DefaultStateFilename,
			WatchReports:   DefaultWatchReports,
			InspectionTime: DefaultInspectionTime,
			ResolvedHold:   DefaultResolvedHold,
			Timeout:        DefaultTimeout,
		},
		Link: Link{
			Latency: DefaultLatency,
		},
	}
}

// Load reads configuration from path over the defaults and validates it.
// Keys missing from the file keep their default values.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(contents, cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes the configuration to path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the settings and fills in defaults for empty optional fields.
//
//nolint:cyclop // A flat list of field checks.
func Validate(settings *Config) error {
	if settings == nil {
		return errConfigIsNotSet
	}

	if settings.LogLevel == "" {
		settings.LogLevel = "info"
	}

	if _, ok := logger.ParseLogLevel(settings.LogLevel); !ok {
		return fmt.Errorf("%w: %q", errUnknownLogLevel, settings.LogLevel)
	}

	v := &settings.Vehicle

	if v.ID == "" {
		v.ID = DefaultVehicleID
	}

	if v.TransmitPeriod <= 0 {
		return fmt.Errorf("vehicle.transmit_period %w", errNonPositive)
	}

	if v.CruiseSpeed < 0 {
		return fmt.Errorf("vehicle.cruise_speed %w", errNegative)
	}

	if v.TrueNegativeThreshold < 0 {
		return fmt.Errorf("vehicle.true_negative_time_threshold %w", errNegative)
	}

	if v.FeedPath == "" {
		v.FeedPath = DefaultFeedFilename
	}

	if v.LogDir == "" {
		v.LogDir = DefaultLogDir
	}

	c := &settings.Controller

	if _, err := net.ResolveTCPAddr("tcp", c.Address); err != nil {
		return fmt.Errorf("invalid controller address: %w", err)
	}

	if c.StateFile == "" {
		c.StateFile = DefaultStateFilename
	}

	if c.WatchReports < 0 {
		return fmt.Errorf("controller.watch_reports %w", errNegative)
	}

	if c.InspectionTime < 0 {
		return fmt.Errorf("controller.inspection_time %w", errNegative)
	}

	if c.ResolvedHold < 0 {
		return fmt.Errorf("controller.resolved_hold %w", errNegative)
	}

	// Set default timeout if not specified
	if c.Timeout <= 0 {
		c.Timeout = DefaultTimeout
	}

	if settings.Link.Latency < 0 {
		return fmt.Errorf("link.latency %w", errNegative)
	}

	if settings.MetricsAddress != "" {
		if _, _, err := net.SplitHostPort(settings.MetricsAddress); err != nil {
			return fmt.Errorf("invalid metrics address: %w", err)
		}
	}

	return nil
}
