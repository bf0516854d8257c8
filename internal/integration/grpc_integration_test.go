package integration

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/auv-alarm/internal/api/grpc/link"
	"github.com/oshokin/auv-alarm/internal/config"
	"github.com/oshokin/auv-alarm/internal/journal"
	"github.com/oshokin/auv-alarm/internal/packet"
	"github.com/oshokin/auv-alarm/internal/service/controller"
	"github.com/oshokin/auv-alarm/internal/service/vehicle"
)

// reservePort returns a free loopback address.
func reservePort(t *testing.T) string {
	t.Helper()

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	addr := l.Addr().String()
	_ = l.Close()

	return addr
}

// writeSettings saves settings to a temporary YAML file.
func writeSettings(t *testing.T, settings *config.Config) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, config.Save(path, settings))

	return path
}

// startController runs the controller with the given settings and persistent ledger.
// Returns a stop function that waits for the server to shut down.
func startController(t *testing.T, settings *config.Config, statePath string) (stop func()) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	cfgPath := writeSettings(t, settings)
	done := make(chan struct{})

	go func() {
		defer close(done)

		options := &controller.Options{
			ConfigPath: cfgPath,
			// Bind the exact address rather than all interfaces.
			ListenAddress: settings.Controller.Address,
			StateFile:     statePath,
		}

		_ = controller.Run(ctx, options) //nolint:errcheck // Failures surface as client errors.
	}()

	// Wait briefly for the server to start listening.
	time.Sleep(150 * time.Millisecond)

	return func() {
		cancel()
		<-done
	}
}

// TestGRPC_ControllerLedgerSurvivesRestart reports over a real connection and restarts the controller.
func TestGRPC_ControllerLedgerSurvivesRestart(t *testing.T) {
	t.Parallel()

	settings := config.Default()
	settings.Controller.Address = reservePort(t)
	settings.Controller.WatchReports = 2

	statePath := filepath.Join(t.TempDir(), "cases.json")
	stop := startController(t, settings, statePath)

	ctx := context.Background()

	c, err := link.Dial(ctx, settings.Controller.Address, link.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	defer func() {
		_ = c.Close()
	}()

	status := &packet.Packet{Sequence: 1, X: 40, Y: 20, Error: 0.5}

	reply, err := c.Report(ctx, status)
	require.NoError(t, err)
	require.NotNil(t, reply.Ack)
	require.InDelta(t, 0, reply.Ack.Error, 0)

	// The ledger was persisted to disk.
	_, err = os.Stat(statePath)
	require.NoError(t, err)

	stop()

	stop = startController(t, settings, statePath)
	defer stop()

	// A fresh connection avoids reconnect backoff from the stopped server.
	_ = c.Close()

	c, err = link.Dial(ctx, settings.Controller.Address, link.WithCallTimeout(3*time.Second))
	require.NoError(t, err)

	status.Sequence = 2
	reply, err = c.Report(ctx, status)
	require.NoError(t, err)
	require.InDelta(t, 0, reply.Ack.Error, 0)

	status.Sequence = 3
	reply, err = c.Report(ctx, status)
	require.NoError(t, err)
	require.InDelta(t, -1, reply.Ack.Error, 0)
	require.Equal(t, uint16(3), reply.Ack.Sequence)
}

// TestGRPC_VehicleResolvesIncident runs the vehicle in real time against a live controller.
func TestGRPC_VehicleResolvesIncident(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	feedPath := filepath.Join(dir, "inputs.txt")
	lines := []string{
		"1/0.0:00:/640x480/20480/0/15000",
		"2/0.1:00:/640x480/20480/0/15000",
		"3/0.2:00:/640x480/20480/0/500",
		"4/0.3:00:/640x480/20480/0/500",
	}
	require.NoError(t, os.WriteFile(feedPath, []byte(strings.Join(lines, "\n")+"\n"), 0o600))

	settings := config.Default()
	settings.LogLevel = "error"
	settings.Controller.Address = reservePort(t)
	settings.Controller.WatchReports = 1
	settings.Vehicle.TransmitPeriod = 100 * time.Millisecond
	settings.Vehicle.LoggingEnabled = true
	settings.Vehicle.FeedPath = feedPath
	settings.Vehicle.LogDir = filepath.Join(dir, "log")

	stop := startController(t, settings, filepath.Join(dir, "cases.json"))
	defer stop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	require.NoError(t, vehicle.Run(ctx, &vehicle.Options{ConfigPath: writeSettings(t, settings)}))

	verdicts, err := os.ReadFile(filepath.Join(settings.Vehicle.LogDir, journal.VerdictFile))
	require.NoError(t, err)
	require.Contains(t, string(verdicts), ",tn\n")

	incidents, err := os.ReadFile(filepath.Join(settings.Vehicle.LogDir, journal.IncidentFile))
	require.NoError(t, err)
	require.Contains(t, string(incidents), "ON,")
	require.Contains(t, string(incidents), "OFF,")
}
