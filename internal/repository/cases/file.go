package cases

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/oshokin/auv-alarm/internal/config"
	domain "github.com/oshokin/auv-alarm/internal/domain/alarm"
)

// Repository defines persistence operations for the case ledger.
type Repository interface {
	Load(ctx context.Context) ([]*domain.Case, error)
	Save(ctx context.Context, ledger []*domain.Case) error
}

// FileRepository persists the case ledger to a JSON file on disk.
type FileRepository struct {
	// path is the filesystem location of the JSON ledger.
	path string
	// mu protects concurrent access to the ledger file.
	mu sync.Mutex
}

// ErrNotFound is returned when the ledger file does not exist yet.
var ErrNotFound = errors.New("case ledger not found")

// ledgerFile is the on-disk document.
type ledgerFile struct {
	Cases []caseRecord `json:"cases"`
}

// caseRecord is the on-disk form of a domain.Case.
type caseRecord struct {
	ID          uuid.UUID  `json:"id"`
	X           float32    `json:"x"`
	Y           float32    `json:"y"`
	Magnitude   float64    `json:"magnitude"`
	Reports     int        `json:"reports"`
	OpenedAt    time.Time  `json:"opened_at"`
	ConfirmedAt *time.Time `json:"confirmed_at,omitempty"`
}

// NewFileRepository creates a repository that reads/writes JSON at the provided path.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{
		path: filepath.Clean(path),
	}
}

// Load reads the ledger from disk.
func (r *FileRepository) Load(_ context.Context) ([]*domain.Case, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	contents, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}

		return nil, fmt.Errorf("read ledger file: %w", err)
	}

	var doc ledgerFile
	if err = json.Unmarshal(contents, &doc); err != nil {
		return nil, fmt.Errorf("decode ledger file: %w", err)
	}

	ledger := make([]*domain.Case, 0, len(doc.Cases))
	for i := range doc.Cases {
		ledger = append(ledger, fromRecord(&doc.Cases[i]))
	}

	return ledger, nil
}

// Save writes the ledger to disk, replacing its previous contents.
func (r *FileRepository) Save(_ context.Context, ledger []*domain.Case) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc := ledgerFile{
		Cases: make([]caseRecord, 0, len(ledger)),
	}

	for _, c := range ledger {
		if c != nil {
			doc.Cases = append(doc.Cases, toRecord(c))
		}
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode ledger: %w", err)
	}

	if err = os.WriteFile(r.path, data, config.DefaultFilePermissions); err != nil {
		return fmt.Errorf("write ledger file: %w", err)
	}

	return nil
}

// fromRecord converts the on-disk record into the domain Case model.
func fromRecord(rec *caseRecord) *domain.Case {
	c := &domain.Case{
		ID:        rec.ID,
		Anchor:    domain.Point{X: rec.X, Y: rec.Y},
		Magnitude: rec.Magnitude,
		Reports:   rec.Reports,
		OpenedAt:  rec.OpenedAt,
	}

	if rec.ConfirmedAt != nil {
		c.ConfirmedAt = *rec.ConfirmedAt
	}

	return c
}

// toRecord converts the domain Case model into its on-disk record.
func toRecord(c *domain.Case) caseRecord {
	rec := caseRecord{
		ID:        c.ID,
		X:         c.Anchor.X,
		Y:         c.Anchor.Y,
		Magnitude: c.Magnitude,
		Reports:   c.Reports,
		OpenedAt:  c.OpenedAt,
	}

	if c.Confirmed() {
		confirmedAt := c.ConfirmedAt
		rec.ConfirmedAt = &confirmedAt
	}

	return rec
}
