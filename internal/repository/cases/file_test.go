package cases

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	domain "github.com/oshokin/auv-alarm/internal/domain/alarm"
)

// TestFileRepository_NotFound verifies Load returns ErrNotFound for missing file.
func TestFileRepository_NotFound(t *testing.T) {
	t.Parallel()
	repo := NewFileRepository(filepath.Join(t.TempDir(), "missing.json"))
	ledger, err := repo.Load(context.Background())
	require.ErrorIs(t, err, ErrNotFound)
	require.Nil(t, ledger)
}

// TestFileRepository_SaveLoad_Roundtrip ensures Save followed by Load returns equal cases.
func TestFileRepository_SaveLoad_Roundtrip(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "cases.json")
	repo := NewFileRepository(file)

	opened := time.Now().UTC().Truncate(time.Second)

	watching := domain.NewCase(domain.Point{X: 40.25, Y: -3.5}, opened)
	watching.Magnitude = 0.5
	watching.Reports = 2

	confirmed := domain.NewCase(domain.Point{X: 1, Y: 2}, opened)
	confirmed.Magnitude = 1.5
	confirmed.Reports = 1
	confirmed.ConfirmedAt = opened.Add(time.Minute)

	require.NoError(t, repo.Save(context.Background(), []*domain.Case{watching, nil, confirmed}))

	got, err := repo.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, watching.ID, got[0].ID)
	require.True(t, watching.Anchor.Same(got[0].Anchor))
	require.Equal(t, 2, got[0].Reports)
	require.False(t, got[0].Confirmed())

	require.True(t, got[1].Confirmed())
	require.True(t, confirmed.ConfirmedAt.Equal(got[1].ConfirmedAt))
	require.True(t, opened.Equal(got[1].OpenedAt))

	_, err = os.Stat(file)
	require.NoError(t, err)
}

// TestFileRepository_CorruptFile verifies decode errors are reported.
func TestFileRepository_CorruptFile(t *testing.T) {
	t.Parallel()
	file := filepath.Join(t.TempDir(), "cases.json")
	require.NoError(t, os.WriteFile(file, []byte("{not json"), 0o600))

	_, err := NewFileRepository(file).Load(context.Background())
	require.Error(t, err)
	require.NotErrorIs(t, err, ErrNotFound)
}
