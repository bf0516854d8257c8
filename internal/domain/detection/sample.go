package detection

// Sample is one detector reading materialized by the feed reader.
type Sample struct {
	// FrameNumber is the camera frame the reading was computed from.
	FrameNumber int
	// Timestamp is the detector clock value in seconds.
	Timestamp float64
	// FrameSize is carried through from the feed for diagnostics.
	FrameSize string
	// ByteSize is carried through from the feed for diagnostics.
	ByteSize string
	// EdgeCount is the edge-density measure.
	EdgeCount int
	// ObjectDetected is the binary object-detection flag.
	ObjectDetected bool
}
