// Package storage defines the persistence contracts of the pool guide.
//
// The API layer depends only on the UserStore, PoolStore and ReviewStore
// interfaces. The sqlstore subpackage implements all three over database/sql
// for PostgreSQL and SQLite; the cache subpackage decorates a PoolStore with
// an in-process read cache.
//
// Implementations report missing rows with ErrNotFound and unique constraint
// violations with ErrConflict so callers can classify failures with
// errors.Is without knowing the driver.
package storage
