package artifact

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMaterializeAndRelease(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	f, n, err := store.Materialize(strings.NewReader("image-bytes"), "png", 0)
	require.NoError(t, err)
	assert.EqualValues(t, len("image-bytes"), n)
	assert.FileExists(t, f.Path())
	assert.True(t, strings.HasSuffix(f.Path(), ".png"))

	require.NoError(t, f.Release())
	assert.NoFileExists(t, f.Path())

	// Release is idempotent.
	require.NoError(t, f.Release())
}

func TestMaterializeEnforcesSizeLimit(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, _, err = store.Materialize(strings.NewReader("0123456789"), "jpg", 4)
	require.ErrorIs(t, err, ErrTooLarge)

	entries, err := os.ReadDir(store.Dir())
	require.NoError(t, err)
	assert.Empty(t, entries, "failed materialization must not leave files behind")
}

func TestMaterializeAcceptsExactLimit(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	f, n, err := store.Materialize(strings.NewReader("abcd"), "jpg", 4)
	require.NoError(t, err)
	assert.EqualValues(t, 4, n)
	require.NoError(t, f.Release())
}

func TestSweepRemovesOnlyStaleFiles(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	stale, _, err := store.Materialize(strings.NewReader("old"), "jpg", 0)
	require.NoError(t, err)
	fresh, _, err := store.Materialize(strings.NewReader("new"), "jpg", 0)
	require.NoError(t, err)

	past := time.Now().Add(-2 * time.Hour)
	require.NoError(t, os.Chtimes(stale.Path(), past, past))

	swept, err := store.Sweep(time.Hour)
	require.NoError(t, err)
	assert.Equal(t, 1, swept)
	assert.NoFileExists(t, stale.Path())
	assert.FileExists(t, fresh.Path())
}

func TestNewStoreCreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "artifacts")
	store, err := NewStore(dir)
	require.NoError(t, err)
	assert.DirExists(t, store.Dir())

	_, err = NewStore("  ")
	assert.Error(t, err)
}

func TestSweeperRunReportsSweptCount(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	stale, _, err := store.Materialize(strings.NewReader("old"), "png", 0)
	require.NoError(t, err)
	past := time.Now().Add(-time.Hour)
	require.NoError(t, os.Chtimes(stale.Path(), past, past))

	var observed int
	sweeper, err := NewSweeper(store, time.Minute, 30*time.Minute, func(n int) { observed = n })
	require.NoError(t, err)
	sweeper.run()

	assert.Equal(t, 1, observed)
	assert.NoFileExists(t, stale.Path())
}

func TestNewSweeperRejectsInvalidSchedule(t *testing.T) {
	store, err := NewStore(t.TempDir())
	require.NoError(t, err)

	_, err = NewSweeper(store, 0, time.Hour, nil)
	assert.Error(t, err)
	_, err = NewSweeper(nil, time.Minute, time.Hour, nil)
	assert.Error(t, err)
}
