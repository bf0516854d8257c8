package severity

import "github.com/oshokin/auv-alarm/internal/domain/alarm"

// Band limits on the edge-density measure. Ranges are half-open (low, high].
const (
	// ObjectBandLow is the exclusive lower bound of the object-corroborated band.
	ObjectBandLow = 3000
	// GrayZoneLow is the exclusive lower bound of the gray zone.
	GrayZoneLow = 10000
	// GrayZoneHigh is the inclusive upper bound of the gray zone.
	GrayZoneHigh = 30000
)

// Magnitudes reported for each band.
const (
	// GrayZoneMagnitude is reported for readings inside the gray zone.
	GrayZoneMagnitude = 0.5
	// ObjectMagnitude is reported for object-corroborated readings.
	ObjectMagnitude = 1.5
)

// Result is the outcome of classifying one reading.
type Result struct {
	// Magnitude is the error measure carried in outgoing packets.
	Magnitude float64
	// Suggestion is the alarm level the reading argues for.
	Suggestion alarm.Level
	// ShouldLogDetection asks the caller to append a detection record.
	ShouldLogDetection bool
}

// Classify maps an edge count and detection flag to a Result.
// The gray zone is checked first; the object band applies only when the
// detection flag is set. Everything else, including zero and negative counts,
// is Clear.
func Classify(edgeCount int, objectDetected bool) Result {
	switch {
	case edgeCount > GrayZoneLow && edgeCount <= GrayZoneHigh:
		return Result{
			Magnitude:          GrayZoneMagnitude,
			Suggestion:         alarm.Suspect,
			ShouldLogDetection: objectDetected,
		}
	case edgeCount > ObjectBandLow && edgeCount <= GrayZoneLow && objectDetected:
		return Result{
			Magnitude:          ObjectMagnitude,
			Suggestion:         alarm.Suspect,
			ShouldLogDetection: true,
		}
	default:
		return Result{
			Magnitude:  0,
			Suggestion: alarm.Clear,
		}
	}
}
