// Package store is the single owner of documents, reports and settings.
//
// Readers get deep copies of an immutable snapshot that is swapped atomically,
// so they never block and never see a half-applied mutation. Writers are
// serialized; each mutation swaps the snapshot and is written through to the
// persistence medium before the call returns.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/joseph-ayodele/reportai/internal/common"
	"github.com/joseph-ayodele/reportai/internal/entity"
	"github.com/joseph-ayodele/reportai/internal/persistence"
)

type Store struct {
	persister persistence.Persister
	logger    *slog.Logger
	now       func() time.Time

	snap atomic.Pointer[entity.Snapshot]
	mu   sync.Mutex // held across snapshot swap and save

	loadErr error
}

type Option func(*Store)

// WithClock overrides the time source used for updated_at bumps.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New loads the last persisted snapshot. A missing snapshot starts empty with
// default settings; an unreadable one is logged, kept in LoadError, and also
// starts empty.
func New(ctx context.Context, p persistence.Persister, logger *slog.Logger, opts ...Option) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		persister: p,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC().Round(0) },
	}
	for _, o := range opts {
		o(s)
	}

	snap, err := p.Load(ctx)
	switch {
	case err != nil:
		s.loadErr = common.PersistenceError("load snapshot", err)
		if errors.Is(err, persistence.ErrCorrupt) {
			logger.Warn("store.load.corrupt, starting empty", "error", err)
		} else {
			logger.Warn("store.load.failed, starting empty", "error", err)
		}
		snap = entity.EmptySnapshot()
	case snap == nil:
		logger.Info("store.load.empty, starting with defaults")
		snap = entity.EmptySnapshot()
	default:
		logger.Info("store.load.ok", "documents", len(snap.Documents), "reports", len(snap.Reports))
	}
	s.snap.Store(snap)
	return s
}

// LoadError is the recovered load failure, nil after a clean start.
func (s *Store) LoadError() error { return s.loadErr }

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() *entity.Snapshot {
	return s.snap.Load().Clone()
}

func (s *Store) Documents() []entity.Document {
	return s.snap.Load().Clone().Documents
}

func (s *Store) Reports() []entity.Report {
	return s.snap.Load().Clone().Reports
}

func (s *Store) Settings() entity.Settings {
	return s.snap.Load().Settings
}

func (s *Store) Document(id string) (entity.Document, bool) {
	return s.snap.Load().Document(id)
}

func (s *Store) Report(id string) (entity.Report, bool) {
	return s.snap.Load().Report(id)
}

// commit publishes next and writes it through. The in-memory swap is kept
// even when the save fails.
func (s *Store) commit(ctx context.Context, next *entity.Snapshot, change persistence.Change) error {
	s.snap.Store(next)
	if err := s.persister.Save(ctx, next, change); err != nil {
		s.logger.Error("store.save.failed",
			"kind", change.Kind, "id", change.ID, "removed", change.Removed, "error", err)
		return common.PersistenceError("save snapshot", err)
	}
	return nil
}

// shallow copies the collections of the current snapshot so one element can
// be replaced without touching what readers hold.
func shallow(cur *entity.Snapshot) *entity.Snapshot {
	next := &entity.Snapshot{
		Documents: make([]entity.Document, len(cur.Documents)),
		Reports:   make([]entity.Report, len(cur.Reports)),
		Settings:  cur.Settings,
	}
	copy(next.Documents, cur.Documents)
	copy(next.Reports, cur.Reports)
	return next
}
