package feed

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/oshokin/auv-alarm/internal/domain/detection"
)

// ErrEndOfFeed is returned once every line has been consumed.
var ErrEndOfFeed = errors.New("end of detection feed")

// MaxLineLength bounds a feed line. Longer lines are skipped as malformed.
const MaxLineLength = 64 * 1024

// Reader yields one sample per call to Next.
type Reader struct {
	// lines buffers the underlying stream.
	lines *bufio.Reader
	// closer releases the underlying file, if any.
	closer io.Closer
	// cursor counts consumed lines, malformed ones included.
	cursor int
	// exhausted is set after the first end-of-feed.
	exhausted bool
}

// NewReader reads samples from r.
func NewReader(r io.Reader) *Reader {
	return &Reader{
		lines: bufio.NewReaderSize(r, MaxLineLength),
	}
}

// Open reads samples from the file at path.
func Open(path string) (*Reader, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open detection feed: %w", err)
	}

	r := NewReader(f)
	r.closer = f

	return r, nil
}

// Next consumes the next line and parses it.
func (r *Reader) Next() (detection.Sample, error) {
	if r.exhausted {
		return detection.Sample{}, ErrEndOfFeed
	}

	line, tooLong, err := r.readLine()
	if err != nil {
		r.exhausted = true

		if errors.Is(err, io.EOF) {
			return detection.Sample{}, ErrEndOfFeed
		}

		return detection.Sample{}, fmt.Errorf("%w: %w", ErrEndOfFeed, err)
	}

	r.cursor++

	if tooLong {
		return detection.Sample{}, fmt.Errorf("line %d: %w: longer than %d bytes",
			r.cursor, ErrMalformedSample, MaxLineLength)
	}

	sample, err := ParseLine(line)
	if err != nil {
		return detection.Sample{}, fmt.Errorf("line %d: %w", r.cursor, err)
	}

	return sample, nil
}

// readLine returns the next line. A line that does not fit the buffer is
// discarded up to its newline and reported as too long. io.EOF is returned
// only when no line is left.
func (r *Reader) readLine() (string, bool, error) {
	chunk, err := r.lines.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		for errors.Is(err, bufio.ErrBufferFull) {
			_, err = r.lines.ReadSlice('\n')
		}

		if err != nil && !errors.Is(err, io.EOF) {
			return "", false, err
		}

		return "", true, nil
	}

	switch {
	case err == nil:
		return string(chunk), false, nil
	case errors.Is(err, io.EOF) && len(chunk) > 0:
		// Last line without a trailing newline.
		return string(chunk), false, nil
	default:
		return "", false, err
	}
}

// Cursor returns the number of lines consumed so far.
func (r *Reader) Cursor() int {
	return r.cursor
}

// Close releases the underlying file.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}

	return r.closer.Close()
}
