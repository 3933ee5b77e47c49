// Package sqlstore persists the store snapshot in relational tables. It
// backs both the sqlite and the postgres media; each mutation is written as
// a row-level upsert or delete inside one transaction.
package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joseph-ayodele/reportai/constants"
	"github.com/joseph-ayodele/reportai/internal/dbx"
	"github.com/joseph-ayodele/reportai/internal/entity"
	"github.com/joseph-ayodele/reportai/internal/persistence"
)

type Dialect string

const (
	DialectSQLite   Dialect = "sqlite3"
	DialectPostgres Dialect = "postgres"
)

// Store implements persistence.Persister over database/sql.
type Store struct {
	db      *sql.DB
	dialect Dialect
	logger  *slog.Logger
	onClose func()

	rebindMu sync.Mutex
	rebinds  map[string]string
}

var _ persistence.Persister = (*Store)(nil)

// New wraps an open database. Call Migrate before first use.
func New(db *sql.DB, dialect Dialect, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, dialect: dialect, logger: logger, rebinds: map[string]string{}}
}

func (s *Store) DB() *sql.DB { return s.db }

func (s *Store) Close() error {
	err := s.db.Close()
	if s.onClose != nil {
		s.onClose()
	}
	return err
}

func (s *Store) Load(ctx context.Context) (*entity.Snapshot, error) {
	snap := entity.EmptySnapshot()

	docs, err := s.listDocuments(ctx, s.db)
	if err != nil {
		return nil, err
	}
	reports, err := s.listReports(ctx, s.db)
	if err != nil {
		return nil, err
	}
	settings, found, err := s.getSettings(ctx, s.db)
	if err != nil {
		return nil, err
	}
	if !found && len(docs) == 0 && len(reports) == 0 {
		return nil, nil
	}

	snap.Documents = docs
	snap.Reports = reports
	if found {
		snap.Settings = settings
	}
	s.logger.Debug("sqlstore.load", "documents", len(docs), "reports", len(reports), "settings_found", found)
	return snap, nil
}

func (s *Store) Save(ctx context.Context, snap *entity.Snapshot, changes ...persistence.Change) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if len(changes) == 0 {
			return s.syncAll(ctx, tx, snap)
		}
		for _, c := range changes {
			if err := s.applyChange(ctx, tx, snap, c); err != nil {
				return fmt.Errorf("apply %s %s: %w", c.Kind, c.ID, err)
			}
		}
		return nil
	})
}

func (s *Store) applyChange(ctx context.Context, tx dbx.DBTX, snap *entity.Snapshot, c persistence.Change) error {
	switch c.Kind {
	case constants.EntityDocument:
		i := snap.DocumentIndex(c.ID)
		if c.Removed || i < 0 {
			return s.deleteByID(ctx, tx, "documents", c.ID)
		}
		return s.upsertDocument(ctx, tx, snap.Documents[i])
	case constants.EntityReport:
		i := snap.ReportIndex(c.ID)
		if c.Removed || i < 0 {
			return s.deleteByID(ctx, tx, "reports", c.ID)
		}
		return s.upsertReport(ctx, tx, snap.Reports[i])
	case constants.EntitySettings:
		return s.upsertSettings(ctx, tx, snap.Settings)
	default:
		return fmt.Errorf("unknown entity kind %q", c.Kind)
	}
}

// syncAll makes the tables mirror snap exactly.
func (s *Store) syncAll(ctx context.Context, tx dbx.DBTX, snap *entity.Snapshot) error {
	keepDocs := make(map[string]struct{}, len(snap.Documents))
	for _, d := range snap.Documents {
		keepDocs[d.ID] = struct{}{}
	}
	if err := s.pruneTable(ctx, tx, "documents", keepDocs); err != nil {
		return err
	}
	keepReports := make(map[string]struct{}, len(snap.Reports))
	for _, r := range snap.Reports {
		keepReports[r.ID] = struct{}{}
	}
	if err := s.pruneTable(ctx, tx, "reports", keepReports); err != nil {
		return err
	}

	for _, d := range snap.Documents {
		if err := s.upsertDocument(ctx, tx, d); err != nil {
			return fmt.Errorf("upsert document %s: %w", d.ID, err)
		}
	}
	for _, r := range snap.Reports {
		if err := s.upsertReport(ctx, tx, r); err != nil {
			return fmt.Errorf("upsert report %s: %w", r.ID, err)
		}
	}
	return s.upsertSettings(ctx, tx, snap.Settings)
}

func (s *Store) pruneTable(ctx context.Context, tx dbx.DBTX, table string, keep map[string]struct{}) error {
	rows, err := tx.QueryContext(ctx, "SELECT id FROM "+table)
	if err != nil {
		return fmt.Errorf("list %s ids: %w", table, err)
	}
	var stale []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return err
		}
		if _, ok := keep[id]; !ok {
			stale = append(stale, id)
		}
	}
	if err := rows.Close(); err != nil {
		return err
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, id := range stale {
		if err := s.deleteByID(ctx, tx, table, id); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) deleteByID(ctx context.Context, tx dbx.DBTX, table, id string) error {
	_, err := tx.ExecContext(ctx, s.rebind("DELETE FROM "+table+" WHERE id = ?"), id)
	return err
}

// rebind rewrites '?' placeholders for postgres.
func (s *Store) rebind(query string) string {
	if s.dialect != DialectPostgres {
		return query
	}
	s.rebindMu.Lock()
	defer s.rebindMu.Unlock()
	if q, ok := s.rebinds[query]; ok {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	s.rebinds[query] = b.String()
	return b.String()
}

// Ping checks database connectivity, bounded by timeout when positive.
func (s *Store) Ping(ctx context.Context, timeout time.Duration) error {
	s.logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	return s.db.PingContext(ctx)
}
