package sqlstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/platinummonkey/poolguide/pkg/observability"
	"github.com/platinummonkey/poolguide/pkg/storage"
)

// Store implements storage.Store over database/sql
type Store struct {
	conns   *ConnectionManager
	dialect Dialect
	now     func() time.Time
}

var _ storage.Store = (*Store)(nil)

// Open connects to the backend described by cfg and applies migrations
func Open(ctx context.Context, cfg storage.Config, logger *observability.Logger) (*Store, error) {
	d, err := ParseDialect(cfg.Type)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = observability.GetLogger(ctx)
	}

	connCfg := ConnectionConfig{
		Dialect:     d,
		PrimaryURL:  cfg.PostgresURL,
		ReplicaURLs: cfg.PostgresReplicaURLs,
		MaxConns:    cfg.PostgresMaxConns,
		MinConns:    cfg.PostgresMinConns,
		Timeout:     cfg.PostgresTimeout,
		MaxLifetime: cfg.PostgresMaxLifetime,
		MaxIdleTime: cfg.PostgresMaxIdleTime,
	}
	if d == SQLite {
		connCfg.PrimaryURL = SQLiteDSN(cfg.SQLitePath)
	}

	conns, err := NewConnectionManager(ctx, connCfg, logger)
	if err != nil {
		return nil, err
	}

	if err := Migrate(ctx, conns.Primary(), d, logger); err != nil {
		conns.Close()
		return nil, err
	}

	version, err := MigrationVersion(ctx, conns.Primary(), d)
	if err != nil {
		conns.Close()
		return nil, err
	}
	logger.WithFields(map[string]interface{}{
		"dialect":        d.String(),
		"schema_version": version,
	}).Info("Database ready")

	return &Store{conns: conns, dialect: d, now: time.Now}, nil
}

// New wraps an open database. Callers are responsible for migrations.
func New(db *sql.DB, d Dialect) *Store {
	return &Store{
		conns:   newConnectionManager(db, ConnectionConfig{Dialect: d}, nil),
		dialect: d,
		now:     time.Now,
	}
}

// WithClock replaces the timestamp source
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

// DB returns the primary connection
func (s *Store) DB() *sql.DB {
	return s.conns.Primary()
}

// Connections returns the connection manager
func (s *Store) Connections() *ConnectionManager {
	return s.conns
}

// Dialect returns the SQL dialect of the store
func (s *Store) Dialect() Dialect {
	return s.dialect
}

// Ping checks the primary connection
func (s *Store) Ping(ctx context.Context) error {
	return s.conns.HealthCheck(ctx)
}

// Close closes all connections
func (s *Store) Close() error {
	return s.conns.Close()
}

func (s *Store) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

func (s *Store) reader() *sql.DB {
	return s.conns.Replica()
}

func (s *Store) writer() *sql.DB {
	return s.conns.Primary()
}

func (s *Store) q(query string) string {
	return s.dialect.Rebind(query)
}

// withTx runs fn in a transaction on the primary
func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.writer().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
