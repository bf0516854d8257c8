package alarm

import (
	"context"
	"time"

	domain "github.com/oshokin/auv-alarm/internal/domain/alarm"
	"github.com/oshokin/auv-alarm/internal/journal"
	"github.com/oshokin/auv-alarm/internal/logger"
	"github.com/oshokin/auv-alarm/internal/packet"
	"github.com/oshokin/auv-alarm/internal/position"
	"github.com/oshokin/auv-alarm/internal/severity"
)

// Outcome tells the caller what an acknowledgment did.
type Outcome int

const (
	// OutcomeNoIncident means no incident was open; nothing changed.
	OutcomeNoIncident Outcome = iota
	// OutcomeAnchorMismatch means the packet referenced another position.
	OutcomeAnchorMismatch
	// OutcomeUnknownDisposition means the code was NaN; nothing changed.
	OutcomeUnknownDisposition
	// OutcomeWatch means the incident stays (or returns to) Suspect.
	OutcomeWatch
	// OutcomeConfirmed means the incident is Confirmed.
	OutcomeConfirmed
	// OutcomeResolved means the incident closed and the vehicle resumed.
	OutcomeResolved
)

// TransitionRecorder observes level changes.
type TransitionRecorder interface {
	Transition(from, to domain.Level)
}

// Options configures the machine.
type Options struct {
	// CruiseSpeed is commanded when an incident resolves.
	CruiseSpeed float64
	// TrueNegativeThreshold separates tn from fn verdicts.
	TrueNegativeThreshold time.Duration
}

// Machine is the alarm state machine. It is not safe for concurrent use.
type Machine struct {
	// opts holds speeds and thresholds.
	opts Options
	// vehicle receives stop/resume commands.
	vehicle position.Controller
	// journal receives incident records.
	journal journal.Writer
	// recorder observes transitions; may be nil.
	recorder TransitionRecorder

	// level is the current alarm level.
	level domain.Level
	// incident is open while level is not Clear.
	incident *domain.Incident
}

// NewMachine creates a machine in the Clear level.
func NewMachine(opts Options, vehicle position.Controller, w journal.Writer, recorder TransitionRecorder) *Machine {
	if w == nil {
		w = journal.Discard{}
	}

	return &Machine{
		opts:     opts,
		vehicle:  vehicle,
		journal:  w,
		recorder: recorder,
		level:    domain.Clear,
	}
}

// Level returns the current alarm level.
func (m *Machine) Level() domain.Level {
	return m.level
}

// Incident returns a copy of the open incident, or nil.
func (m *Machine) Incident() *domain.Incident {
	return m.incident.Clone()
}

// Observe feeds one classified sample taken at session time now.
func (m *Machine) Observe(ctx context.Context, now time.Duration, edgeCount int, result severity.Result) {
	switch m.level {
	case domain.Confirmed:
		// The peer decision is durable until it resolves the incident.
		return
	case domain.Suspect:
		m.incident.Magnitude = result.Magnitude
		logger.DebugKV(ctx, "Incident magnitude refreshed", "incident", m.incident.ID, "magnitude", result.Magnitude)
	case domain.Clear:
		if result.Suggestion != domain.Suspect {
			return
		}

		m.open(ctx, now, result.Magnitude)
	}

	if result.ShouldLogDetection {
		m.append(ctx, journal.DetectionRecord{At: now, EdgeCount: edgeCount})
	}
}

// open anchors a new incident at the current position and stops the vehicle.
func (m *Machine) open(ctx context.Context, now time.Duration, magnitude float64) {
	anchor := domain.Point{
		X: float32(m.vehicle.X()),
		Y: float32(m.vehicle.Y()),
	}

	m.incident = domain.NewIncident(anchor, magnitude, now)

	dest := m.vehicle.Destination()
	dest.Speed = 0
	m.vehicle.SetDestination(dest)
	m.vehicle.SetAlarm(true)

	m.transition(domain.Suspect)

	logger.InfoKV(ctx, "Incident opened",
		"incident", m.incident.ID,
		"x", anchor.X,
		"y", anchor.Y,
		"magnitude", magnitude,
	)

	m.append(ctx, journal.TransitionRecord{Phase: journal.PhaseGray, At: now, Point: anchor, Status: journal.StatusOn})
	m.append(ctx, journal.IncidentRecord{Status: journal.StatusOn, At: now, Anchor: anchor})
}

// Acknowledge applies an accepted inbound packet received at session time now.
func (m *Machine) Acknowledge(ctx context.Context, now time.Duration, p *packet.Packet) Outcome {
	if !m.level.Active() {
		return OutcomeNoIncident
	}

	if !p.Position().Same(m.incident.Anchor) {
		logger.DebugKV(ctx, "Acknowledgment for another position ignored",
			"sequence", p.Sequence,
			"x", p.X,
			"y", p.Y,
		)

		return OutcomeAnchorMismatch
	}

	switch domain.DispositionOf(p.Error) {
	case domain.DispositionResolved:
		m.resolve(ctx, now, p.Error)

		return OutcomeResolved
	case domain.DispositionConfirmed:
		if m.level != domain.Confirmed {
			m.transition(domain.Confirmed)
			m.append(ctx, journal.TransitionRecord{
				Phase:  journal.PhaseWatch,
				At:     now,
				Point:  m.incident.Anchor,
				Status: journal.StatusOn,
			})
		}

		logger.InfoKV(ctx, "Incident confirmed, holding until controller resolves it",
			"incident", m.incident.ID,
			"x", m.incident.Anchor.X,
			"y", m.incident.Anchor.Y,
		)

		return OutcomeConfirmed
	case domain.DispositionWatch:
		m.transition(domain.Suspect)
		logger.DebugKV(ctx, "Incident unconfirmed, keep transmitting", "incident", m.incident.ID)

		return OutcomeWatch
	default:
		logger.WarnKV(ctx, "Non-finite disposition ignored", "sequence", p.Sequence, "incident", m.incident.ID)

		return OutcomeUnknownDisposition
	}
}

// resolve closes the incident and resumes the vehicle at cruise speed.
func (m *Machine) resolve(ctx context.Context, now time.Duration, code float64) {
	incident := m.incident
	phase := journal.PhaseGray

	if m.level == domain.Confirmed {
		phase = journal.PhaseWatch
	}

	m.vehicle.SetAlarm(false)

	dest := m.vehicle.Destination()
	dest.Speed = m.opts.CruiseSpeed
	m.vehicle.SetDestination(dest)

	m.append(ctx, journal.TransitionRecord{Phase: phase, At: now, Point: incident.Anchor, Status: journal.StatusOff})
	m.append(ctx, journal.IncidentRecord{Status: journal.StatusOff, At: now, Anchor: incident.Anchor})

	elapsed := incident.Elapsed(now)
	kvs := []any{
		"incident", incident.ID,
		"x", incident.Anchor.X,
		"y", incident.Anchor.Y,
		"open_for", elapsed,
		"speed", m.opts.CruiseSpeed,
	}

	if code == domain.ResolvedWithVerdict {
		verdict := domain.VerdictFor(elapsed, m.opts.TrueNegativeThreshold)
		m.append(ctx, journal.VerdictRecord{At: now, Anchor: incident.Anchor, Verdict: verdict})
		kvs = append(kvs, "verdict", verdict)
	}

	m.incident = nil
	m.transition(domain.Clear)

	logger.InfoKV(ctx, "Incident resolved, vehicle moving again", kvs...)
}

// transition changes the level and notifies the recorder on change.
func (m *Machine) transition(to domain.Level) {
	from := m.level
	if from == to {
		return
	}

	m.level = to

	if m.recorder != nil {
		m.recorder.Transition(from, to)
	}
}

// FillPacket writes the incident state into an outgoing packet: the anchor and
// magnitude while an incident is open, zeros otherwise.
func (m *Machine) FillPacket(p *packet.Packet) {
	p.X, p.Y, p.Error = 0, 0, 0

	if m.incident == nil {
		return
	}

	p.X = m.incident.Anchor.X
	p.Y = m.incident.Anchor.Y
	p.Error = m.incident.Magnitude
}

func (m *Machine) append(ctx context.Context, rec journal.Record) {
	if err := m.journal.Append(rec); err != nil {
		logger.WarnKV(ctx, "Failed to write incident record", "sink", rec.Sink(), "error", err)
	}
}
