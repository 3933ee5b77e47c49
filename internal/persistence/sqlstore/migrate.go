package sqlstore

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/joseph-ayodele/reportai/internal/persistence/sqlstore/migrations"
)

// goose keeps its base FS and dialect in package globals.
var gooseMu sync.Mutex

// Migrate applies every pending migration for the store's dialect.
func (s *Store) Migrate(ctx context.Context) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(migrations.Migrations)
	goose.SetLogger(gooseLogger{s.logger})
	if err := goose.SetDialect(string(s.dialect)); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	dir := "sqlite"
	if s.dialect == DialectPostgres {
		dir = "postgres"
	}
	if err := goose.UpContext(ctx, s.db, dir); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

type gooseLogger struct{ l *slog.Logger }

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.l.Debug(fmt.Sprintf(format, v...), "component", "goose")
}

func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.l.Error(fmt.Sprintf(format, v...), "component", "goose")
}
