package sequence

// DropReason explains why a packet was rejected.
type DropReason string

const (
	// ReasonNone is reported for accepted packets.
	ReasonNone DropReason = ""
	// ReasonOutOfSequence is reported for sequences below the watermark.
	ReasonOutOfSequence DropReason = "OOS"
	// ReasonDuplicate is reported for sequences equal to the watermark.
	ReasonDuplicate DropReason = "DPK"
)

// Gate decides whether an inbound packet is stale.
// It is not safe for concurrent use; the owning session serializes calls.
type Gate struct {
	// dropStale enables rejection of sequences at or below the watermark.
	dropStale bool
	// lastConfirmed is the highest confirmed sequence number.
	lastConfirmed uint32
}

// NewGate creates a gate with a zero watermark.
func NewGate(dropStale bool) *Gate {
	return &Gate{
		dropStale: dropStale,
	}
}

// Accept reports whether the packet may reach the state machine.
func (g *Gate) Accept(sequence uint16) bool {
	ok, _ := g.Check(sequence)

	return ok
}

// Check is Accept with the reason for a rejection.
func (g *Gate) Check(sequence uint16) (bool, DropReason) {
	seq := uint32(sequence)

	if g.dropStale && seq <= g.lastConfirmed {
		if seq == g.lastConfirmed {
			return false, ReasonDuplicate
		}

		return false, ReasonOutOfSequence
	}

	// The watermark never decreases, even with stale dropping disabled.
	if seq > g.lastConfirmed {
		g.lastConfirmed = seq
	}

	return true, ReasonNone
}

// LastConfirmed returns the current watermark.
func (g *Gate) LastConfirmed() uint32 {
	return g.lastConfirmed
}

// DropStale reports whether stale rejection is enabled.
func (g *Gate) DropStale() bool {
	return g.dropStale
}
