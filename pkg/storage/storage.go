package storage

import (
	"context"
	"errors"
	"time"

	"github.com/platinummonkey/poolguide/pkg/auth"
	"github.com/platinummonkey/poolguide/pkg/catalog"
)

var (
	// ErrNotFound is returned when the requested row does not exist
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write violates a unique constraint
	ErrConflict = errors.New("conflict")
)

// UserStore persists accounts
type UserStore interface {
	// CreateUser inserts u and sets its ID and timestamps
	CreateUser(ctx context.Context, u *auth.User) error
	// GetUserByID returns the user without its password hash
	GetUserByID(ctx context.Context, id int64) (*auth.User, error)
	// GetUserByEmail returns the user including its password hash
	GetUserByEmail(ctx context.Context, email string) (*auth.User, error)
	// FindUserByUsernameOrEmail returns the first user matching either value
	FindUserByUsernameOrEmail(ctx context.Context, username, email string) (*auth.User, error)
	// SetAdmin changes the admin flag of the user with the given email
	SetAdmin(ctx context.Context, email string, isAdmin bool) error
}

// PoolStore persists pools and their facilities
type PoolStore interface {
	ListPools(ctx context.Context) ([]catalog.Pool, error)
	// GetPool returns the pool with its facility but without reviews
	GetPool(ctx context.Context, id int64) (*catalog.Pool, error)
	// CreatePool inserts p and, when f is non-nil, its facility
	CreatePool(ctx context.Context, p *catalog.Pool, f *catalog.Facility) error
	// UpdatePool saves p and upserts f when it is non-nil
	UpdatePool(ctx context.Context, p *catalog.Pool, f *catalog.Facility) error
	// DeletePool removes the pool together with its facility and reviews
	DeletePool(ctx context.Context, id int64) error
}

// ReviewStore persists reviews
type ReviewStore interface {
	// ListReviews returns the reviews of a pool, newest first, with author usernames
	ListReviews(ctx context.Context, poolID int64) ([]catalog.Review, error)
	GetReview(ctx context.Context, id int64) (*catalog.Review, error)
	// CreateReview inserts r. A missing pool or user yields ErrNotFound.
	CreateReview(ctx context.Context, r *catalog.Review) error
	DeleteReview(ctx context.Context, id int64) error
}

// Store is the full persistence backend
type Store interface {
	UserStore
	PoolStore
	ReviewStore

	Ping(ctx context.Context) error
	Close() error
}

// Backend types
const (
	TypePostgres = "postgres"
	TypeSQLite   = "sqlite"
)

// Config for storage backend
type Config struct {
	Type string // "postgres" or "sqlite"

	// PostgreSQL config
	PostgresURL         string
	PostgresReplicaURLs []string
	PostgresMaxConns    int
	PostgresMinConns    int
	PostgresTimeout     time.Duration
	PostgresMaxLifetime time.Duration
	PostgresMaxIdleTime time.Duration

	// SQLite config
	SQLitePath string

	// Redis config
	RedisURL        string
	RedisPassword   string
	RedisDB         int
	RedisMaxRetries int
	RedisPoolSize   int

	// Cache config
	CacheEnabled bool
	CacheSize    int
	CacheTTL     time.Duration
}

// DefaultConfig returns sensible default configuration
func DefaultConfig() Config {
	return Config{
		Type:                TypeSQLite,
		SQLitePath:          "poolguide.db",
		PostgresMaxConns:    20,
		PostgresMinConns:    2,
		PostgresTimeout:     10 * time.Second,
		PostgresMaxLifetime: 30 * time.Minute,
		PostgresMaxIdleTime: 5 * time.Minute,
		RedisDB:             0,
		RedisMaxRetries:     3,
		RedisPoolSize:       10,
		CacheEnabled:        true,
		CacheSize:           256,
		CacheTTL:            time.Minute,
	}
}
