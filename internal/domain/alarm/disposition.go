package alarm

import (
	"math"
	"time"
)

// Disposition is the peer's verdict on an open incident.
type Disposition int

const (
	// DispositionUnknown is reported for NaN codes, which fall in no band.
	DispositionUnknown Disposition = iota
	// DispositionResolved means there is no error: any negative code.
	DispositionResolved
	// DispositionWatch means keep watching: code 0 and anything in (0, 1).
	DispositionWatch
	// DispositionConfirmed means a confirmed error: any code >= 1.
	DispositionConfirmed
)

// ResolvedWithVerdict is the only resolving code that triggers a tn/fn verdict.
const ResolvedWithVerdict = -1

// DispositionOf maps the numeric code carried in an inbound packet to a band.
// Codes strictly between 0 and 1 are treated as "keep watching".
func DispositionOf(code float64) Disposition {
	switch {
	case math.IsNaN(code):
		return DispositionUnknown
	case code < 0:
		return DispositionResolved
	case code >= 1:
		return DispositionConfirmed
	default:
		return DispositionWatch
	}
}

// String returns a short name for logs.
func (d Disposition) String() string {
	switch d {
	case DispositionResolved:
		return "resolved"
	case DispositionWatch:
		return "watch"
	case DispositionConfirmed:
		return "confirmed"
	default:
		return "unknown"
	}
}

// Verdict classifies a resolved incident by how long it stayed open.
type Verdict string

const (
	// TrueNegative is recorded when the incident resolved within the threshold.
	TrueNegative Verdict = "tn"
	// FalseNegative is recorded when the incident outlived the threshold.
	FalseNegative Verdict = "fn"
)

// VerdictFor returns tn when elapsed <= threshold and fn otherwise.
func VerdictFor(elapsed, threshold time.Duration) Verdict {
	if elapsed <= threshold {
		return TrueNegative
	}

	return FalseNegative
}
