package sqlstore

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"

	"github.com/platinummonkey/poolguide/pkg/storage"
)

// Dialect selects driver specific SQL behaviour
type Dialect int

const (
	Postgres Dialect = iota
	SQLite
)

// ParseDialect maps a storage type to its dialect
func ParseDialect(storageType string) (Dialect, error) {
	switch storageType {
	case storage.TypePostgres:
		return Postgres, nil
	case storage.TypeSQLite:
		return SQLite, nil
	default:
		return 0, fmt.Errorf("unsupported storage type %q", storageType)
	}
}

func (d Dialect) String() string {
	if d == SQLite {
		return storage.TypeSQLite
	}
	return storage.TypePostgres
}

// DriverName is the database/sql driver registered for the dialect
func (d Dialect) DriverName() string {
	if d == SQLite {
		return "sqlite3"
	}
	return "postgres"
}

func (d Dialect) gooseDialect() string {
	if d == SQLite {
		return "sqlite3"
	}
	return "postgres"
}

// Rebind rewrites ? placeholders into $n for Postgres
func (d Dialect) Rebind(query string) string {
	if d != Postgres {
		return query
	}

	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// SQLiteDSN builds a go-sqlite3 DSN for a database file with foreign keys enforced
func SQLiteDSN(path string) string {
	return "file:" + path + "?_foreign_keys=on&_busy_timeout=5000&_journal_mode=WAL"
}

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqUniqueViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == pqForeignKeyViolation
	}
	var liteErr sqlite3.Error
	if errors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}

// classify maps driver constraint errors onto storage sentinels
func classify(op string, err error) error {
	switch {
	case err == nil:
		return nil
	case isUniqueViolation(err):
		return fmt.Errorf("%s: %w", op, storage.ErrConflict)
	case isForeignKeyViolation(err):
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// dateText renders a DATE column as YYYY-MM-DD text
func (d Dialect) dateText(column string) string {
	if d == Postgres {
		return "to_char(" + column + ", 'YYYY-MM-DD')"
	}
	return column
}
