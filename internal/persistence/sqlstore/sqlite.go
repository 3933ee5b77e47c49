package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite"
)

// OpenSQLite opens (or creates) a sqlite database file and migrates it.
// path may be ":memory:" for a throwaway store.
func OpenSQLite(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	dsn := path
	if path != ":memory:" {
		dsn = "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	// One connection: the store serializes writers, and :memory: is per-connection.
	db.SetMaxOpenConns(1)

	s := New(db, DialectSQLite, logger)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	logger.Info("sqlite store ready", "path", path)
	return s, nil
}
