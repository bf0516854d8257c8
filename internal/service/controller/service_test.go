package controller

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/auv-alarm/internal/domain/alarm"
	"github.com/oshokin/auv-alarm/internal/packet"
	repo "github.com/oshokin/auv-alarm/internal/repository/cases"
)

var (
	errTestLoad = errors.New("test load error")
	errTestSave = errors.New("test save error")
)

// memoryRepository is a minimal in-memory Repository implementation for tests.
type memoryRepository struct {
	// ledger is returned from Load operations.
	ledger []*domain.Case
	// loadErr is the error to return from Load operations.
	loadErr error
	// saveErr is the error to return from Save operations.
	saveErr error
	// saved stores the last ledger passed to Save.
	saved []*domain.Case
	// saves counts Save calls.
	saves int
}

func (m *memoryRepository) Load(context.Context) ([]*domain.Case, error) {
	return m.ledger, m.loadErr
}

func (m *memoryRepository) Save(_ context.Context, ledger []*domain.Case) error {
	m.saves++
	m.saved = ledger

	return m.saveErr
}

// fakeClock is a manually advanced wall clock.
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestService(t *testing.T, r repo.Repository, policy Policy) (*Service, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}

	s, err := NewService(context.Background(), r, policy, clock.Now)
	require.NoError(t, err)

	return s, clock
}

func status(seq uint16, x, y float32, magnitude float64) *packet.Packet {
	return &packet.Packet{Sequence: seq, X: x, Y: y, Error: magnitude, SentAt: time.Duration(seq) * time.Minute}
}

// TestNewService_LoadsLedgerOrDefaults asserts NewService behavior on existing, missing, and error ledgers.
func TestNewService_LoadsLedgerOrDefaults(t *testing.T) {
	t.Parallel()

	existing := domain.NewCase(domain.Point{X: 1, Y: 2}, time.Unix(100, 0))

	s, err := NewService(context.Background(), &memoryRepository{ledger: []*domain.Case{existing}}, Policy{}, nil)
	require.NoError(t, err)
	require.Len(t, s.Cases(), 1)
	require.Equal(t, existing.ID, s.Cases()[0].ID)

	s, err = NewService(context.Background(), &memoryRepository{loadErr: repo.ErrNotFound}, Policy{}, nil)
	require.NoError(t, err)
	require.Empty(t, s.Cases())

	s, err = NewService(context.Background(), &memoryRepository{loadErr: errTestLoad}, Policy{}, nil)
	require.Error(t, err)
	require.Nil(t, s)
}

// TestService_IgnoresQuietPackets verifies nothing is acknowledged without an incident.
func TestService_IgnoresQuietPackets(t *testing.T) {
	t.Parallel()

	r := new(memoryRepository)
	s, _ := newTestService(t, r, Policy{WatchReports: 3})

	reply, err := s.Report(context.Background(), status(1, 0, 0, 0))
	require.NoError(t, err)
	require.Nil(t, reply.Ack)
	require.Zero(t, r.saves)
}

// TestService_WatchThenResolve walks a gray-zone case through its watch replies.
func TestService_WatchThenResolve(t *testing.T) {
	t.Parallel()

	r := new(memoryRepository)
	s, _ := newTestService(t, r, Policy{WatchReports: 2})
	ctx := context.Background()

	var codes []float64

	for seq := uint16(1); seq <= 3; seq++ {
		reply, err := s.Report(ctx, status(seq, 40, 20, 0.5))
		require.NoError(t, err)
		require.NotNil(t, reply.Ack)
		require.Equal(t, seq, reply.Ack.Sequence)
		require.True(t, domain.Point{X: 40, Y: 20}.Same(reply.Ack.Position()))
		require.Equal(t, time.Duration(seq)*time.Minute, reply.Ack.SentAt)

		codes = append(codes, reply.Ack.Error)
	}

	require.Equal(t, []float64{0, 0, -1}, codes)
	require.Empty(t, s.Cases())
	require.Empty(t, r.saved)

	// Late packets for a resolved anchor with zero magnitude are not acknowledged.
	reply, err := s.Report(ctx, status(4, 40, 20, 0))
	require.NoError(t, err)
	require.Nil(t, reply.Ack)
}

// TestService_LateReportAfterResolve verifies an in-flight report for a resolved
// anchor is answered with the resolution and opens nothing until the hold expires.
func TestService_LateReportAfterResolve(t *testing.T) {
	t.Parallel()

	r := new(memoryRepository)
	s, clock := newTestService(t, r, Policy{WatchReports: 1, ResolvedHold: 10 * time.Minute})
	ctx := context.Background()

	for seq := uint16(1); seq <= 2; seq++ {
		_, err := s.Report(ctx, status(seq, 40, 20, 0.5))
		require.NoError(t, err)
	}

	require.Empty(t, s.Cases())

	saves := r.saves

	clock.advance(time.Minute)

	reply, err := s.Report(ctx, status(3, 40, 20, 0.5))
	require.NoError(t, err)
	require.NotNil(t, reply.Ack)
	require.InDelta(t, -1, reply.Ack.Error, 0)
	require.Equal(t, uint16(3), reply.Ack.Sequence)
	require.Empty(t, s.Cases())
	require.Equal(t, saves, r.saves)

	// Other anchors are unaffected.
	reply, err = s.Report(ctx, status(4, 41, 20, 0.5))
	require.NoError(t, err)
	require.InDelta(t, 0, reply.Ack.Error, 0)
	require.Len(t, s.Cases(), 1)

	clock.advance(10 * time.Minute)

	reply, err = s.Report(ctx, status(5, 40, 20, 0.5))
	require.NoError(t, err)
	require.InDelta(t, 0, reply.Ack.Error, 0)
	require.Len(t, s.Cases(), 2)
	require.Empty(t, s.resolved)
}

// TestService_NoHoldReopens keeps the plain behavior when the hold is disabled.
func TestService_NoHoldReopens(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t, nil, Policy{})
	ctx := context.Background()

	reply, err := s.Report(ctx, status(1, 3, 4, 0.5))
	require.NoError(t, err)
	require.InDelta(t, -1, reply.Ack.Error, 0)

	reply, err = s.Report(ctx, status(2, 3, 4, 0.5))
	require.NoError(t, err)
	require.InDelta(t, -1, reply.Ack.Error, 0)
	require.Empty(t, s.resolved)
}

// TestService_ConfirmThenInspect checks confirmed cases resolve after the inspection time.
func TestService_ConfirmThenInspect(t *testing.T) {
	t.Parallel()

	s, clock := newTestService(t, nil, Policy{WatchReports: 1, InspectionTime: 5 * time.Minute})
	ctx := context.Background()

	reply, err := s.Report(ctx, status(1, 7, 8, 0.5))
	require.NoError(t, err)
	require.InDelta(t, 0, reply.Ack.Error, 0)

	clock.advance(time.Minute)

	reply, err = s.Report(ctx, status(2, 7, 8, 1.5))
	require.NoError(t, err)
	require.InDelta(t, 1, reply.Ack.Error, 0)
	require.True(t, s.Cases()[0].Confirmed())

	clock.advance(4 * time.Minute)

	// Confirmed cases ignore the watch budget and the reported magnitude.
	reply, err = s.Report(ctx, status(3, 7, 8, 0))
	require.NoError(t, err)
	require.InDelta(t, 1, reply.Ack.Error, 0)

	clock.advance(time.Minute)

	reply, err = s.Report(ctx, status(4, 7, 8, 0))
	require.NoError(t, err)
	require.InDelta(t, -1, reply.Ack.Error, 0)
	require.Empty(t, s.Cases())
}

// TestService_AnchorsAreIndependent ensures cases are keyed by exact anchor.
func TestService_AnchorsAreIndependent(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t, nil, Policy{WatchReports: 5})
	ctx := context.Background()

	_, err := s.Report(ctx, status(1, 1, 1, 0.5))
	require.NoError(t, err)
	_, err = s.Report(ctx, status(2, 1, 1.0000001, 0.5))
	require.NoError(t, err)

	require.Len(t, s.Cases(), 2)
}

// TestService_PersistFailure verifies save errors are returned to the caller.
func TestService_PersistFailure(t *testing.T) {
	t.Parallel()

	s, _ := newTestService(t, &memoryRepository{saveErr: errTestSave}, Policy{})

	_, err := s.Report(context.Background(), status(1, 1, 1, 1.5))
	require.ErrorIs(t, err, errTestSave)
}

// TestService_FileLedgerSurvivesRestart persists a case and restores it into a new service.
func TestService_FileLedgerSurvivesRestart(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "cases.json")

	s, _ := newTestService(t, repo.NewFileRepository(path), Policy{WatchReports: 3})
	_, err := s.Report(context.Background(), status(1, 12.5, -4, 0.5))
	require.NoError(t, err)

	restored, _ := newTestService(t, repo.NewFileRepository(path), Policy{WatchReports: 3})

	cases := restored.Cases()
	require.Len(t, cases, 1)
	require.Equal(t, 1, cases[0].Reports)
	require.True(t, domain.Point{X: 12.5, Y: -4}.Same(cases[0].Anchor))
}

// TestResolveListenAddress covers override, port extraction and errors.
func TestResolveListenAddress(t *testing.T) {
	t.Parallel()

	addr, err := resolveListenAddress("controller.local:7000", "")
	require.NoError(t, err)
	require.Equal(t, ":7000", addr)

	addr, err = resolveListenAddress("controller.local:7000", "127.0.0.1:9000")
	require.NoError(t, err)
	require.Equal(t, "127.0.0.1:9000", addr)

	_, err = resolveListenAddress("", "")
	require.ErrorIs(t, err, ErrNoControllerAddress)

	_, err = resolveListenAddress("no-port", "")
	require.Error(t, err)
}
