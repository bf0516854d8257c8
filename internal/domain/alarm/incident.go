package alarm

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Point is a planar coordinate pair in the precision carried on the wire.
type Point struct {
	X float32
	Y float32
}

// Same reports bit-for-bit equality. Two NaNs with equal payloads match,
// +0 and -0 do not.
func (p Point) Same(other Point) bool {
	return math.Float32bits(p.X) == math.Float32bits(other.X) &&
		math.Float32bits(p.Y) == math.Float32bits(other.Y)
}

// Incident is the alarm episode that exists while the level is not Clear.
type Incident struct {
	// ID correlates log records of the same incident.
	ID uuid.UUID
	// Anchor is the vehicle position captured when the incident opened.
	// It never changes for the lifetime of the incident.
	Anchor Point
	// Magnitude is the latest classifier measure while Suspect.
	Magnitude float64
	// OpenedAt is the session time at which the incident opened.
	OpenedAt time.Duration
}

// NewIncident opens an incident anchored at the given point.
func NewIncident(anchor Point, magnitude float64, openedAt time.Duration) *Incident {
	return &Incident{
		ID:        uuid.New(),
		Anchor:    anchor,
		Magnitude: magnitude,
		OpenedAt:  openedAt,
	}
}

// Clone returns a copy of the incident to avoid leaking internal references.
func (i *Incident) Clone() *Incident {
	if i == nil {
		return nil
	}

	cloned := *i

	return &cloned
}

// Elapsed returns how long the incident has been open at the given time.
func (i *Incident) Elapsed(now time.Duration) time.Duration {
	return now - i.OpenedAt
}

// Key packs the coordinate bits into a map key consistent with Same.
func (p Point) Key() uint64 {
	return uint64(math.Float32bits(p.X))<<32 | uint64(math.Float32bits(p.Y))
}
