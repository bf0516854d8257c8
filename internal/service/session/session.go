package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	domain "github.com/oshokin/auv-alarm/internal/domain/alarm"
	"github.com/oshokin/auv-alarm/internal/domain/detection"
	"github.com/oshokin/auv-alarm/internal/feed"
	"github.com/oshokin/auv-alarm/internal/journal"
	"github.com/oshokin/auv-alarm/internal/logger"
	"github.com/oshokin/auv-alarm/internal/packet"
	"github.com/oshokin/auv-alarm/internal/position"
	"github.com/oshokin/auv-alarm/internal/scheduler"
	"github.com/oshokin/auv-alarm/internal/sequence"
	"github.com/oshokin/auv-alarm/internal/service/alarm"
	"github.com/oshokin/auv-alarm/internal/severity"
)

// SampleSource yields one detector sample per call.
type SampleSource interface {
	Next() (detection.Sample, error)
}

// Transport hands status packets to the link. Send must not block.
type Transport interface {
	Send(ctx context.Context, p *packet.Packet) error
}

// Scheduler is the part of the event loop the session uses.
type Scheduler interface {
	Now() time.Duration
	After(d time.Duration, fn scheduler.Handler) *scheduler.Timer
}

// TrafficRecorder is the traffic-statistics collaborator.
type TrafficRecorder interface {
	alarm.TransitionRecorder

	Sent(p *packet.Packet)
	Received(p *packet.Packet, latency time.Duration)
	Dropped(reason string)
}

// Options are the recognized session settings.
type Options struct {
	// DropStale rejects inbound packets at or below the sequence watermark.
	DropStale bool
	// LoggingEnabled turns on the CSV journal.
	LoggingEnabled bool
	// TransmitPeriod is the interval between status packets.
	TransmitPeriod time.Duration
	// CruiseSpeed is commanded when an incident resolves.
	CruiseSpeed float64
	// TrueNegativeThreshold separates tn from fn verdicts.
	TrueNegativeThreshold time.Duration
}

// Dependencies are the collaborators injected at construction.
type Dependencies struct {
	Scheduler Scheduler
	Feed      SampleSource
	Vehicle   position.Controller
	Transport Transport
	Traffic   TrafficRecorder
	Journal   journal.Writer
}

// Snapshot is a read-only view of session state.
type Snapshot struct {
	Level         domain.Level
	Incident      *domain.Incident
	Sequence      uint16
	LastConfirmed uint32
	X, Y, Z       float64
	Speed         float64
}

var (
	// errPeriodRequired is returned for a non-positive transmit period.
	errPeriodRequired = errors.New("transmit period must be positive")
	// errMissingDependency is returned when a collaborator is nil.
	errMissingDependency = errors.New("missing session dependency")
)

// Session monitors one vehicle.
type Session struct {
	// opts holds the session settings.
	opts Options
	// loop schedules transmit ticks.
	loop Scheduler
	// feed supplies detector samples.
	feed SampleSource
	// vehicle is the motion capability.
	vehicle position.Controller
	// transport sends status packets.
	transport Transport
	// traffic receives packet statistics.
	traffic TrafficRecorder
	// journal receives CSV records.
	journal journal.Writer

	// gate filters stale inbound packets.
	gate *sequence.Gate
	// machine owns the alarm level and incident.
	machine *alarm.Machine

	// sequence is the last sequence number sent.
	sequence uint16
	// timer is the pending transmit tick.
	timer *scheduler.Timer
	// feedEnded is set once the end of the feed has been reported.
	feedEnded bool
}

// New wires a session. It does not schedule anything until Start.
func New(opts Options, deps Dependencies) (*Session, error) {
	if opts.TransmitPeriod <= 0 {
		return nil, errPeriodRequired
	}

	switch {
	case deps.Scheduler == nil:
		return nil, fmt.Errorf("%w: scheduler", errMissingDependency)
	case deps.Feed == nil:
		return nil, fmt.Errorf("%w: feed", errMissingDependency)
	case deps.Vehicle == nil:
		return nil, fmt.Errorf("%w: vehicle", errMissingDependency)
	case deps.Transport == nil:
		return nil, fmt.Errorf("%w: transport", errMissingDependency)
	case deps.Traffic == nil:
		return nil, fmt.Errorf("%w: traffic", errMissingDependency)
	}

	w := deps.Journal
	if w == nil || !opts.LoggingEnabled {
		w = journal.Discard{}
	}

	return &Session{
		opts:      opts,
		loop:      deps.Scheduler,
		feed:      deps.Feed,
		vehicle:   deps.Vehicle,
		transport: deps.Transport,
		traffic:   deps.Traffic,
		journal:   w,
		gate:      sequence.NewGate(opts.DropStale),
		machine: alarm.NewMachine(alarm.Options{
			CruiseSpeed:           opts.CruiseSpeed,
			TrueNegativeThreshold: opts.TrueNegativeThreshold,
		}, deps.Vehicle, w, deps.Traffic),
	}, nil
}

// Start schedules the first transmit tick immediately.
func (s *Session) Start() {
	s.timer = s.loop.After(0, s.Tick)
}

// Tick is the transmit handler: sample, classify, update, send, reschedule.
func (s *Session) Tick(ctx context.Context) {
	defer s.reschedule()

	now := s.loop.Now()

	sample, err := s.feed.Next()
	if err != nil {
		s.skipTick(ctx, err)

		return
	}

	result := severity.Classify(sample.EdgeCount, sample.ObjectDetected)
	s.machine.Observe(ctx, now, sample.EdgeCount, result)

	s.sequence++

	p := &packet.Packet{
		Sequence: s.sequence,
		SentAt:   now,
	}
	s.machine.FillPacket(p)

	s.traffic.Sent(p)

	if err = s.transport.Send(ctx, p); err != nil {
		logger.WarnKV(ctx, "Failed to send status packet", "sequence", p.Sequence, "error", err)
	}

	logger.DebugKV(ctx, "Status packet sent",
		"sequence", p.Sequence,
		"frame", sample.FrameNumber,
		"edge_count", sample.EdgeCount,
		"level", s.machine.Level(),
		"error", p.Error,
	)

	s.logPosition(ctx, now)

	if err = s.journal.Flush(); err != nil {
		logger.WarnKV(ctx, "Failed to flush journal", "error", err)
	}
}

// skipTick reports why no packet is sent this tick.
func (s *Session) skipTick(ctx context.Context, err error) {
	switch {
	case errors.Is(err, feed.ErrEndOfFeed):
		if !s.feedEnded {
			s.feedEnded = true
			logger.InfoKV(ctx, "Detection feed exhausted, no further status packets", "error", err)
		}
	case errors.Is(err, feed.ErrMalformedSample):
		logger.WarnKV(ctx, "Skipping tick on malformed detection sample", "error", err)
	default:
		logger.WarnKV(ctx, "Skipping tick, detection feed failed", "error", err)
	}
}

// HandlePacket is the inbound handler.
func (s *Session) HandlePacket(ctx context.Context, p *packet.Packet) {
	now := s.loop.Now()

	if ok, reason := s.gate.Check(p.Sequence); !ok {
		logger.DebugKV(ctx, "Stale packet dropped",
			"sequence", p.Sequence,
			"last_confirmed", s.gate.LastConfirmed(),
			"reason", reason,
		)
		s.traffic.Dropped(string(reason))
	} else if s.machine.Acknowledge(ctx, now, p) == alarm.OutcomeResolved {
		s.resetTimer()
	}

	s.traffic.Received(p, now-p.SentAt)
	s.logPosition(ctx, now)
}

// resetTimer cancels the pending tick and schedules the next one a full
// period from now.
func (s *Session) resetTimer() {
	if s.timer != nil {
		s.timer.Cancel()
	}

	s.reschedule()
}

func (s *Session) reschedule() {
	if s.timer.Pending() {
		return
	}

	s.timer = s.loop.After(s.opts.TransmitPeriod, s.Tick)
}

func (s *Session) logPosition(ctx context.Context, now time.Duration) {
	rec := journal.PositionRecord{
		At:    now,
		X:     s.vehicle.X(),
		Y:     s.vehicle.Y(),
		Z:     s.vehicle.Z(),
		Speed: s.vehicle.Speed(),
	}

	if err := s.journal.Append(rec); err != nil {
		logger.WarnKV(ctx, "Failed to write position record", "error", err)
	}
}

// Snapshot returns the current session state.
func (s *Session) Snapshot() Snapshot {
	return Snapshot{
		Level:         s.machine.Level(),
		Incident:      s.machine.Incident(),
		Sequence:      s.sequence,
		LastConfirmed: s.gate.LastConfirmed(),
		X:             s.vehicle.X(),
		Y:             s.vehicle.Y(),
		Z:             s.vehicle.Z(),
		Speed:         s.vehicle.Speed(),
	}
}

// Stop cancels the pending tick and closes the journal.
func (s *Session) Stop() error {
	if s.timer != nil {
		s.timer.Cancel()
	}

	if err := s.journal.Close(); err != nil {
		return fmt.Errorf("close journal: %w", err)
	}

	return nil
}
