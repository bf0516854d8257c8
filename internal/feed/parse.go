package feed

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/oshokin/auv-alarm/internal/domain/detection"
)

// ErrMalformedSample is returned for lines that do not match the feed format.
var ErrMalformedSample = errors.New("malformed detection sample")

// tailFields is the number of slash-separated fields after the timestamp block.
const tailFields = 4

// ParseLine parses one feed line.
func ParseLine(line string) (detection.Sample, error) {
	var sample detection.Sample

	line = strings.TrimRight(line, "\r\n")

	frame, rest, ok := strings.Cut(line, "/")
	if !ok {
		return sample, fmt.Errorf("%w: missing frame separator", ErrMalformedSample)
	}

	timestamp, rest, ok := strings.Cut(rest, ":")
	if !ok {
		return sample, fmt.Errorf("%w: missing timestamp separator", ErrMalformedSample)
	}

	_, rest, ok = strings.Cut(rest, ":")
	if !ok {
		return sample, fmt.Errorf("%w: missing sub-field separator", ErrMalformedSample)
	}

	rest, ok = strings.CutPrefix(rest, "/")
	if !ok {
		return sample, fmt.Errorf("%w: missing frame size separator", ErrMalformedSample)
	}

	fields := strings.Split(rest, "/")
	if len(fields) != tailFields {
		return sample, fmt.Errorf("%w: want %d trailing fields, got %d", ErrMalformedSample, tailFields, len(fields))
	}

	var err error

	if sample.FrameNumber, err = strconv.Atoi(strings.TrimSpace(frame)); err != nil {
		return sample, fmt.Errorf("%w: frame number: %w", ErrMalformedSample, err)
	}

	if sample.Timestamp, err = strconv.ParseFloat(strings.TrimSpace(timestamp), 64); err != nil {
		return sample, fmt.Errorf("%w: timestamp: %w", ErrMalformedSample, err)
	}

	sample.FrameSize = fields[0]
	sample.ByteSize = fields[1]

	detected, err := strconv.Atoi(strings.TrimSpace(fields[2]))
	if err != nil {
		return sample, fmt.Errorf("%w: object detected: %w", ErrMalformedSample, err)
	}

	sample.ObjectDetected = detected == 1

	if sample.EdgeCount, err = strconv.Atoi(strings.TrimSpace(fields[3])); err != nil {
		return sample, fmt.Errorf("%w: edge count: %w", ErrMalformedSample, err)
	}

	return sample, nil
}
