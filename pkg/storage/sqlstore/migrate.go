package sqlstore

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/pressly/goose/v3"

	"github.com/platinummonkey/poolguide/pkg/observability"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrationsFS embed.FS

// goose keeps its dialect, logger and base filesystem in package state
var gooseMu sync.Mutex

// gooseLogger routes goose progress output into the service logger
type gooseLogger struct {
	logger *observability.Logger
}

func (g gooseLogger) Printf(format string, v ...interface{}) {
	g.logger.Info(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

// Fatalf logs at error level and does not exit the process
func (g gooseLogger) Fatalf(format string, v ...interface{}) {
	g.logger.Error(strings.TrimSpace(fmt.Sprintf(format, v...)))
}

func newGooseLogger(logger *observability.Logger) goose.Logger {
	if logger == nil {
		return goose.NopLogger()
	}
	return gooseLogger{logger: logger.WithField("component", "migrations")}
}

// Migrate applies all pending migrations for the dialect. A nil logger discards goose output.
func Migrate(ctx context.Context, db *sql.DB, d Dialect, logger *observability.Logger) error {
	sub, err := fs.Sub(migrationsFS, "migrations/"+d.String())
	if err != nil {
		return fmt.Errorf("failed to open migrations: %w", err)
	}

	gooseMu.Lock()
	defer gooseMu.Unlock()

	goose.SetBaseFS(sub)
	defer goose.SetBaseFS(nil)
	goose.SetLogger(newGooseLogger(logger))

	if err := goose.SetDialect(d.gooseDialect()); err != nil {
		return fmt.Errorf("failed to set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "."); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}
	return nil
}

// MigrationVersion returns the current schema version
func MigrationVersion(ctx context.Context, db *sql.DB, d Dialect) (int64, error) {
	gooseMu.Lock()
	defer gooseMu.Unlock()

	if err := goose.SetDialect(d.gooseDialect()); err != nil {
		return 0, fmt.Errorf("failed to set migration dialect: %w", err)
	}
	return goose.GetDBVersionContext(ctx, db)
}
