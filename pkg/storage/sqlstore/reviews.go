package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/platinummonkey/poolguide/pkg/catalog"
	"github.com/platinummonkey/poolguide/pkg/storage"
)

func (s *Store) reviewColumns() string {
	return `r.id, r.pool_id, r.user_id, r.rating, r.comment, ` +
		s.dialect.dateText("r.visit_date") + `, r.created_at, r.updated_at, u.username`
}

func scanReview(row rowScanner) (*catalog.Review, error) {
	var (
		r        catalog.Review
		username string
	)
	err := row.Scan(
		&r.ID, &r.PoolID, &r.UserID, &r.Rating, &r.Comment,
		&r.VisitDate, &r.CreatedAt, &r.UpdatedAt, &username,
	)
	if err != nil {
		return nil, err
	}
	r.Author = &catalog.ReviewAuthor{Username: username}
	return &r, nil
}

// ListReviews returns the reviews of a pool, newest first
func (s *Store) ListReviews(ctx context.Context, poolID int64) ([]catalog.Review, error) {
	query := s.q(`SELECT ` + s.reviewColumns() + `
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.pool_id = ?
		ORDER BY r.created_at DESC, r.id DESC`)

	rows, err := s.reader().QueryContext(ctx, query, poolID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	defer rows.Close()

	reviews := make([]catalog.Review, 0)
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan review: %w", err)
		}
		reviews = append(reviews, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list reviews: %w", err)
	}
	return reviews, nil
}

// GetReview returns one review with its author
func (s *Store) GetReview(ctx context.Context, id int64) (*catalog.Review, error) {
	query := s.q(`SELECT ` + s.reviewColumns() + `
		FROM reviews r
		JOIN users u ON u.id = r.user_id
		WHERE r.id = ?`)

	r, err := scanReview(s.writer().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("review %d: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get review: %w", err)
	}
	return r, nil
}

// CreateReview inserts r. A missing pool or user yields storage.ErrNotFound.
func (s *Store) CreateReview(ctx context.Context, r *catalog.Review) error {
	now := s.timestamp()

	query := s.q(`
		INSERT INTO reviews (pool_id, user_id, rating, comment, visit_date, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)
	err := s.writer().QueryRowContext(ctx, query,
		r.PoolID, r.UserID, r.Rating, r.Comment, r.VisitDate, now, now,
	).Scan(&r.ID)
	if err != nil {
		return classify("create review", err)
	}

	r.CreatedAt = now
	r.UpdatedAt = now
	return nil
}

// DeleteReview removes one review
func (s *Store) DeleteReview(ctx context.Context, id int64) error {
	res, err := s.writer().ExecContext(ctx, s.q(`DELETE FROM reviews WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("failed to delete review: %w", err)
	}
	return expectAffected(res, fmt.Sprintf("review %d", id))
}
