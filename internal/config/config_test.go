package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/auv-alarm/internal/position"
)

// TestDefaults checks the documented option defaults.
func TestDefaults(t *testing.T) {
	t.Parallel()

	cfg := Default()
	require.NoError(t, Validate(cfg))

	require.True(t, cfg.Vehicle.DropStalePackets)
	require.False(t, cfg.Vehicle.LoggingEnabled)
	require.Equal(t, 60*time.Second, cfg.Vehicle.TransmitPeriod)
	require.InDelta(t, 0.5, cfg.Vehicle.CruiseSpeed, 0)
}

// TestValidate checks required fields and format validations.
func TestValidate(t *testing.T) {
	t.Parallel()

	require.Error(t, Validate(nil))

	cfg := Default()
	cfg.Vehicle.TransmitPeriod = 0
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.Controller.Address = "bad:address"
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.LogLevel = "chatty"
	require.Error(t, Validate(cfg))

	cfg = Default()
	cfg.MetricsAddress = "no-port"
	require.Error(t, Validate(cfg))

	// Empty optional fields are filled in.
	cfg = Default()
	cfg.Vehicle.ID = ""
	cfg.Controller.Timeout = 0
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultVehicleID, cfg.Vehicle.ID)
	require.Equal(t, DefaultTimeout, cfg.Controller.Timeout)
}

// TestLoad_PartialFileKeepsDefaults verifies absent keys keep their defaults.
func TestLoad_PartialFileKeepsDefaults(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	contents := `
vehicle:
  logging_enabled: true
  transmit_period: 30s
  waypoints:
    - {x: 100, y: 0, z: 10, speed: 1.5}
controller:
  address: 127.0.0.1:6000
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)

	require.True(t, cfg.Vehicle.LoggingEnabled)
	require.True(t, cfg.Vehicle.DropStalePackets)
	require.Equal(t, 30*time.Second, cfg.Vehicle.TransmitPeriod)
	require.Equal(t, []position.Waypoint{{X: 100, Z: 10, Speed: 1.5}}, cfg.Vehicle.Waypoints)
	require.Equal(t, "127.0.0.1:6000", cfg.Controller.Address)
	require.Equal(t, DefaultInspectionTime, cfg.Controller.InspectionTime)
	require.Equal(t, DefaultResolvedHold, cfg.Controller.ResolvedHold)
}

// TestSaveLoadRoundtrip ensures settings are persisted and loaded back correctly.
func TestSaveLoadRoundtrip(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "settings.yaml")

	settings := Default()
	settings.Vehicle.DropStalePackets = false
	settings.Vehicle.TrueNegativeThreshold = 90 * time.Second
	settings.Controller.Address = "127.0.0.1:50052"

	require.NoError(t, Save(path, settings))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, settings, loaded)

	// File exists.
	_, err = os.Stat(path)
	require.NoError(t, err)

	require.Error(t, Save(path, nil))
}
