package journal

import (
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Default file names inside the log directory.
const (
	PositionFile   = "position_log.csv"
	TransitionFile = "transition_log.csv"
	IncidentFile   = "incident_log.csv"
	VerdictFile    = "verdict_log.csv"
)

// Permissions for the log directory and files.
const (
	dirPermissions  = 0o750
	filePermissions = 0o600
)

// errClosed is returned when appending after Close.
var errClosed = errors.New("journal is closed")

// Writer accepts session records.
type Writer interface {
	Append(rec Record) error
	Flush() error
	Close() error
}

// sinkFile pairs an open file with its buffered CSV writer.
type sinkFile struct {
	file *os.File
	csv  *csv.Writer
}

// Journal writes records to one CSV file per sink.
type Journal struct {
	// sinks holds the open files keyed by sink.
	sinks map[Sink]*sinkFile
	// closed is set by Close.
	closed bool
}

// Open creates dir if needed and opens every sink file in append mode.
func Open(dir string) (*Journal, error) {
	if err := os.MkdirAll(filepath.Clean(dir), dirPermissions); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	files := map[Sink]string{
		SinkPosition:   PositionFile,
		SinkTransition: TransitionFile,
		SinkIncident:   IncidentFile,
		SinkVerdict:    VerdictFile,
	}

	j := &Journal{
		sinks: make(map[Sink]*sinkFile, len(files)),
	}

	for sink, name := range files {
		path := filepath.Join(dir, name)

		f, err := os.OpenFile(filepath.Clean(path), os.O_CREATE|os.O_APPEND|os.O_WRONLY, filePermissions)
		if err != nil {
			_ = j.Close()

			return nil, fmt.Errorf("open %s log: %w", sink, err)
		}

		j.sinks[sink] = &sinkFile{
			file: f,
			csv:  csv.NewWriter(f),
		}
	}

	return j, nil
}

// Append buffers one record.
func (j *Journal) Append(rec Record) error {
	if j.closed {
		return errClosed
	}

	s, ok := j.sinks[rec.Sink()]
	if !ok {
		return fmt.Errorf("unknown sink %q", rec.Sink())
	}

	if err := s.csv.Write(rec.CSVRow()); err != nil {
		return fmt.Errorf("write %s record: %w", rec.Sink(), err)
	}

	return nil
}

// Flush writes buffered records of every sink to disk.
func (j *Journal) Flush() error {
	var errs []error

	for sink, s := range j.sinks {
		s.csv.Flush()

		if err := s.csv.Error(); err != nil {
			errs = append(errs, fmt.Errorf("flush %s log: %w", sink, err))
		}
	}

	return errors.Join(errs...)
}

// Close flushes and closes every sink. It is safe to call more than once.
func (j *Journal) Close() error {
	if j.closed {
		return nil
	}

	errs := []error{j.Flush()}

	for sink, s := range j.sinks {
		if err := s.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close %s log: %w", sink, err))
		}
	}

	j.closed = true

	return errors.Join(errs...)
}

// Discard is a Writer that drops every record. Sessions use it when file
// logging is disabled.
type Discard struct{}

// Append implements Writer.
func (Discard) Append(Record) error { return nil }

// Flush implements Writer.
func (Discard) Flush() error { return nil }

// Close implements Writer.
func (Discard) Close() error { return nil }

// Opener opens a Writer over a log directory.
type Opener func(dir string) (Writer, error)

// OpenWriter is Open behind the Writer interface. It satisfies Opener.
func OpenWriter(dir string) (Writer, error) {
	j, err := Open(dir)
	if err != nil {
		return nil, err
	}

	return j, nil
}

// Select returns Discard when logging is disabled and open(dir) otherwise.
func Select(enabled bool, dir string, open Opener) (Writer, error) {
	if !enabled {
		return Discard{}, nil
	}

	return open(dir)
}
