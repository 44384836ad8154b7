package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/platinummonkey/poolguide/pkg/catalog"
	"github.com/platinummonkey/poolguide/pkg/storage"
)

const poolColumns = `
	p.id, p.name, p.latitude, p.longitude, p.description, p.entry_fee,
	p.opening_hours, p.website, p.created_at, p.updated_at,
	f.id, f.hot_tub, f.sauna, f.water_slide, f.child_friendly,
	f.disabled_access, f.gym, f.created_at, f.updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanPool reads a pool joined with its optional facility
func scanPool(row rowScanner) (*catalog.Pool, error) {
	var (
		p                         catalog.Pool
		fID                       sql.NullInt64
		hotTub, sauna, waterSlide sql.NullBool
		childFriendly, disabled   sql.NullBool
		gym                       sql.NullBool
		fCreated, fUpdated        sql.NullTime
	)

	err := row.Scan(
		&p.ID, &p.Name, &p.Latitude, &p.Longitude, &p.Description, &p.EntryFee,
		&p.OpeningHours, &p.Website, &p.CreatedAt, &p.UpdatedAt,
		&fID, &hotTub, &sauna, &waterSlide, &childFriendly,
		&disabled, &gym, &fCreated, &fUpdated,
	)
	if err != nil {
		return nil, err
	}

	if fID.Valid {
		p.Facility = &catalog.Facility{
			ID:             fID.Int64,
			PoolID:         p.ID,
			HotTub:         hotTub.Bool,
			Sauna:          sauna.Bool,
			WaterSlide:     waterSlide.Bool,
			ChildFriendly:  childFriendly.Bool,
			DisabledAccess: disabled.Bool,
			Gym:            gym.Bool,
			CreatedAt:      fCreated.Time,
			UpdatedAt:      fUpdated.Time,
		}
	}
	return &p, nil
}

// ListPools returns every pool with its facility, ordered by id
func (s *Store) ListPools(ctx context.Context) ([]catalog.Pool, error) {
	query := `SELECT ` + poolColumns + `
		FROM pools p
		LEFT JOIN facilities f ON f.pool_id = p.id
		ORDER BY p.id`

	rows, err := s.reader().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}
	defer rows.Close()

	pools := make([]catalog.Pool, 0)
	for rows.Next() {
		p, err := scanPool(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan pool: %w", err)
		}
		pools = append(pools, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list pools: %w", err)
	}
	return pools, nil
}

// GetPool returns the pool with its facility
func (s *Store) GetPool(ctx context.Context, id int64) (*catalog.Pool, error) {
	return s.getPool(ctx, s.reader(), id)
}

type queryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

func (s *Store) getPool(ctx context.Context, db queryRower, id int64) (*catalog.Pool, error) {
	query := s.q(`SELECT ` + poolColumns + `
		FROM pools p
		LEFT JOIN facilities f ON f.pool_id = p.id
		WHERE p.id = ?`)

	p, err := scanPool(db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("pool %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get pool: %w", err)
	}
	return p, nil
}

// CreatePool inserts p and, when f is non-nil, its facility in one transaction
func (s *Store) CreatePool(ctx context.Context, p *catalog.Pool, f *catalog.Facility) error {
	now := s.timestamp()

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		query := s.q(`
			INSERT INTO pools (name, latitude, longitude, description, entry_fee,
				opening_hours, website, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			RETURNING id
		`)
		err := tx.QueryRowContext(ctx, query,
			p.Name, p.Latitude, p.Longitude, p.Description, p.EntryFee,
			p.OpeningHours, p.Website, now, now,
		).Scan(&p.ID)
		if err != nil {
			return classify("create pool", err)
		}

		if f == nil {
			return nil
		}
		return s.upsertFacility(ctx, tx, p.ID, f, now)
	})
	if err != nil {
		return err
	}

	p.CreatedAt = now
	p.UpdatedAt = now
	if f != nil {
		p.Facility = f
	}
	return nil
}

// UpdatePool saves every column of p and upserts f when non-nil.
// p is refreshed from the primary afterwards.
func (s *Store) UpdatePool(ctx context.Context, p *catalog.Pool, f *catalog.Facility) error {
	now := s.timestamp()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, s.q(`
			UPDATE pools SET name = ?, latitude = ?, longitude = ?, description = ?,
				entry_fee = ?, opening_hours = ?, website = ?, updated_at = ?
			WHERE id = ?
		`),
			p.Name, p.Latitude, p.Longitude, p.Description,
			p.EntryFee, p.OpeningHours, p.Website, now, p.ID,
		)
		if err != nil {
			return classify("update pool", err)
		}
		if err := expectAffected(res, fmt.Sprintf("pool %d", p.ID)); err != nil {
			return err
		}

		if f != nil {
			if err := s.upsertFacility(ctx, tx, p.ID, f, now); err != nil {
				return err
			}
		}

		updated, err := s.getPool(ctx, tx, p.ID)
		if err != nil {
			return err
		}
		*p = *updated
		return nil
	})
}

func (s *Store) upsertFacility(ctx context.Context, tx *sql.Tx, poolID int64, f *catalog.Facility, now time.Time) error {
	query := s.q(`
		INSERT INTO facilities (pool_id, hot_tub, sauna, water_slide, child_friendly,
			disabled_access, gym, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (pool_id) DO UPDATE SET
			hot_tub = excluded.hot_tub,
			sauna = excluded.sauna,
			water_slide = excluded.water_slide,
			child_friendly = excluded.child_friendly,
			disabled_access = excluded.disabled_access,
			gym = excluded.gym,
			updated_at = excluded.updated_at
		RETURNING id
	`)

	err := tx.QueryRowContext(ctx, query,
		poolID, f.HotTub, f.Sauna, f.WaterSlide, f.ChildFriendly,
		f.DisabledAccess, f.Gym, now, now,
	).Scan(&f.ID)
	if err != nil {
		return classify("save facility", err)
	}

	f.PoolID = poolID
	if f.CreatedAt.IsZero() {
		f.CreatedAt = now
	}
	f.UpdatedAt = now
	return nil
}

// DeletePool removes the pool; facilities and reviews cascade
func (s *Store) DeletePool(ctx context.Context, id int64) error {
	res, err := s.writer().ExecContext(ctx, s.q(`DELETE FROM pools WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete pool: %w", err)
	}
	return expectAffected(res, fmt.Sprintf("pool %d", id))
}
