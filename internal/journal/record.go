package journal

import (
	"strconv"
	"time"

	"github.com/oshokin/auv-alarm/internal/domain/alarm"
)

// Sink names one of the session logs.
type Sink string

const (
	// SinkPosition receives timestamp,x,y,z,speed rows.
	SinkPosition Sink = "position"
	// SinkTransition receives phase,timestamp,x,y,status rows.
	SinkTransition Sink = "transition"
	// SinkIncident receives ON/OFF and detection rows.
	SinkIncident Sink = "incident"
	// SinkVerdict receives timestamp,x,y,classification rows.
	SinkVerdict Sink = "verdict"
)

// Phase tags a transition row.
type Phase string

const (
	// PhaseGray marks rows of a gray-zone (Suspect) incident.
	PhaseGray Phase = "G"
	// PhaseWatch marks rows of a confirmed incident.
	PhaseWatch Phase = "W"
)

// Status tags ON/OFF rows.
type Status string

const (
	// StatusOn marks an incident opening or escalating.
	StatusOn Status = "ON"
	// StatusOff marks an incident resolving.
	StatusOff Status = "OFF"
)

// Record is a single row destined for one sink.
type Record interface {
	Sink() Sink
	CSVRow() []string
}

// PositionRecord is a vehicle position snapshot.
type PositionRecord struct {
	At    time.Duration
	X     float64
	Y     float64
	Z     float64
	Speed float64
}

// Sink implements Record.
func (PositionRecord) Sink() Sink { return SinkPosition }

// CSVRow implements Record.
func (r PositionRecord) CSVRow() []string {
	return []string{seconds(r.At), ftoa(r.X), ftoa(r.Y), ftoa(r.Z), ftoa(r.Speed)}
}

// TransitionRecord marks an incident phase change.
type TransitionRecord struct {
	Phase  Phase
	At     time.Duration
	Point  alarm.Point
	Status Status
}

// Sink implements Record.
func (TransitionRecord) Sink() Sink { return SinkTransition }

// CSVRow implements Record.
func (r TransitionRecord) CSVRow() []string {
	return []string{string(r.Phase), seconds(r.At), ftoa32(r.Point.X), ftoa32(r.Point.Y), string(r.Status)}
}

// IncidentRecord marks an incident opening or closing at its anchor.
type IncidentRecord struct {
	Status Status
	At     time.Duration
	Anchor alarm.Point
}

// Sink implements Record.
func (IncidentRecord) Sink() Sink { return SinkIncident }

// CSVRow implements Record.
func (r IncidentRecord) CSVRow() []string {
	return []string{string(r.Status), seconds(r.At), ftoa32(r.Anchor.X), ftoa32(r.Anchor.Y)}
}

// DetectionRecord notes an object detection that contributed to an alarm.
type DetectionRecord struct {
	At        time.Duration
	EdgeCount int
}

// Sink implements Record.
func (DetectionRecord) Sink() Sink { return SinkIncident }

// CSVRow implements Record.
func (r DetectionRecord) CSVRow() []string {
	return []string{"detection", seconds(r.At), strconv.Itoa(r.EdgeCount)}
}

// VerdictRecord classifies a resolved incident.
type VerdictRecord struct {
	At      time.Duration
	Anchor  alarm.Point
	Verdict alarm.Verdict
}

// Sink implements Record.
func (VerdictRecord) Sink() Sink { return SinkVerdict }

// CSVRow implements Record.
func (r VerdictRecord) CSVRow() []string {
	return []string{seconds(r.At), ftoa32(r.Anchor.X), ftoa32(r.Anchor.Y), string(r.Verdict)}
}

func seconds(d time.Duration) string {
	return strconv.FormatFloat(d.Seconds(), 'f', -1, 64)
}

func ftoa(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func ftoa32(v float32) string {
	return strconv.FormatFloat(float64(v), 'f', -1, 32)
}
