// Package artifact materializes image bytes into a transient file store.
// Every artifact is a temporary file with a uuid-based name; sessions own
// artifacts and release them on replacement, cancel, or sweep.
package artifact

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Sambhram1/tele-bot/core/logger"
	"log/slog"
)

// ErrTooLarge indicates the source exceeded the configured size limit.
var ErrTooLarge = errors.New("artifact: source exceeds size limit")

// File is a single artifact at rest. Release is idempotent: the backing file
// is removed at most once no matter how many times Release is called.
type File struct {
	id       string
	path     string
	released atomic.Bool
}

// ID returns the artifact identifier.
func (f *File) ID() string { return f.id }

// Path returns the absolute path of the backing file.
func (f *File) Path() string { return f.path }

// Release removes the backing file. Repeated calls are no-ops.
func (f *File) Release() error {
	if f == nil {
		return nil
	}
	if !f.released.CompareAndSwap(false, true) {
		return nil
	}
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("artifact: remove %s: %w", f.path, err)
	}
	logger.Debug(logger.Background(), "artifacts", "artifact.release",
		slog.String("artifact_id", f.id),
	)
	return nil
}

// Store allocates and sweeps artifacts inside a single directory.
type Store struct {
	dir string
}

// NewStore creates the artifact directory if needed and returns a Store.
func NewStore(dir string) (*Store, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("artifact: empty store directory")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("artifact: create dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Dir returns the store directory.
func (s *Store) Dir() string { return s.dir }

// Allocate reserves a new artifact path with the given extension. The backing
// file is created by whoever writes the artifact content.
func (s *Store) Allocate(ext string) *File {
	id := uuid.NewString()
	name := id
	if ext = normalizeExt(ext); ext != "" {
		name += "." + ext
	}
	return &File{id: id, path: filepath.Join(s.dir, name)}
}

// Materialize copies the source into a new artifact, enforcing maxBytes when
// positive. On failure no artifact is left behind.
func (s *Store) Materialize(r io.Reader, ext string, maxBytes int64) (*File, int64, error) {
	f := s.Allocate(ext)

	dst, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_EXCL, 0o644)
	if err != nil {
		return nil, 0, fmt.Errorf("artifact: create %s: %w", f.path, err)
	}

	src := r
	if maxBytes > 0 {
		src = io.LimitReader(r, maxBytes+1)
	}
	n, err := io.Copy(dst, src)
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err == nil && maxBytes > 0 && n > maxBytes {
		err = ErrTooLarge
	}
	if err != nil {
		_ = os.Remove(f.path)
		return nil, 0, err
	}

	logger.Debug(logger.Background(), "artifacts", "artifact.store",
		slog.String("artifact_id", f.id),
		slog.Int64("bytes", n),
	)
	return f, n, nil
}

// Sweep removes files older than maxAge and reports how many were deleted.
// It is best-effort: individual removal failures are logged and skipped.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("artifact: read dir %s: %w", s.dir, err)
	}

	cutoff := time.Now().Add(-maxAge)
	swept := 0
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				logger.Warn(logger.Background(), "sweep", "sweep.remove",
					slog.String("err", err.Error()),
				)
			}
			continue
		}
		swept++
	}
	return swept, nil
}

func normalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	return ext
}
