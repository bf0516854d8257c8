package alarm

import (
	"time"

	"github.com/google/uuid"
)

// Case is the controller's record of an incident reported by a vehicle.
type Case struct {
	// ID identifies the case in logs and in the persisted ledger.
	ID uuid.UUID
	// Anchor is the incident anchor echoed back in every reply.
	Anchor Point
	// Magnitude is the latest magnitude reported for the anchor.
	Magnitude float64
	// Reports counts status packets received for the anchor.
	Reports int
	// OpenedAt is when the first report arrived.
	OpenedAt time.Time
	// ConfirmedAt is when the case was confirmed, zero while it is not.
	ConfirmedAt time.Time
}

// NewCase opens a case for the given anchor.
func NewCase(anchor Point, openedAt time.Time) *Case {
	return &Case{
		ID:       uuid.New(),
		Anchor:   anchor,
		OpenedAt: openedAt,
	}
}

// Confirmed reports whether the case has been confirmed.
func (c *Case) Confirmed() bool {
	return !c.ConfirmedAt.IsZero()
}

// Clone returns a copy of the case.
func (c *Case) Clone() *Case {
	if c == nil {
		return nil
	}

	cloned := *c

	return &cloned
}
