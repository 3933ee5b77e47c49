// Package jsonfile keeps the whole snapshot in one JSON file, replaced
// atomically on every save.
package jsonfile

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joseph-ayodele/reportai/internal/entity"
	"github.com/joseph-ayodele/reportai/internal/persistence"
)

type Store struct {
	path   string
	logger *slog.Logger
}

var _ persistence.Persister = (*Store)(nil)

func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{path: path, logger: logger}
}

func (s *Store) Load(_ context.Context) (*entity.Snapshot, error) {
	b, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.path, err)
	}
	snap, err := persistence.DecodeSnapshot(b)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	s.logger.Debug("jsonfile.load", "path", s.path, "documents", len(snap.Documents), "reports", len(snap.Reports))
	return snap, nil
}

// Save writes to a temp file in the same directory and renames it over the
// target, so readers see either the old or the new snapshot.
func (s *Store) Save(ctx context.Context, snap *entity.Snapshot, _ ...persistence.Change) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b, err := persistence.EncodeSnapshot(snap)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op once renamed
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replace %s: %w", s.path, err)
	}
	return nil
}

func (s *Store) Close() error { return nil }
