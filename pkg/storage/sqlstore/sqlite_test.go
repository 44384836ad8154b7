package sqlstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/poolguide/pkg/auth"
	"github.com/platinummonkey/poolguide/pkg/catalog"
	"github.com/platinummonkey/poolguide/pkg/observability"
	"github.com/platinummonkey/poolguide/pkg/storage"
)

func ptr[T any](v T) *T { return &v }

func poolFixture(name string) *catalog.Pool {
	return &catalog.Pool{
		Name:      name,
		Latitude:  ptr(64.1435),
		Longitude: ptr(-21.8766),
		EntryFee:  ptr(1090),
	}
}

func reviewFixture(poolID, userID int64) *catalog.Review {
	return &catalog.Review{PoolID: poolID, UserID: userID, Rating: 4, Comment: ptr("Warm and clean")}
}

func openSQLite(t *testing.T) *Store {
	t.Helper()

	cfg := storage.DefaultConfig()
	cfg.Type = storage.TypeSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "poolguide.db")

	s, err := Open(context.Background(), cfg, nil)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func createUser(t *testing.T, s *Store, username, email string) *auth.User {
	t.Helper()
	u := &auth.User{Username: username, Email: email, PasswordHash: "$2a$10$" + username}
	require.NoError(t, s.CreateUser(context.Background(), u))
	return u
}

func TestSQLite_Migrations(t *testing.T) {
	s := openSQLite(t)

	version, err := MigrationVersion(context.Background(), s.DB(), SQLite)
	require.NoError(t, err)
	assert.Equal(t, int64(2), version)

	// Re-applying is a no-op
	assert.NoError(t, Migrate(context.Background(), s.DB(), SQLite, nil))
}

func TestOpen_LogsMigrationsThroughServiceLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := observability.NewLogger(observability.InfoLevel, &buf)

	cfg := storage.DefaultConfig()
	cfg.Type = storage.TypeSQLite
	cfg.SQLitePath = filepath.Join(t.TempDir(), "poolguide.db")

	s, err := Open(context.Background(), cfg, logger)
	require.NoError(t, err)
	defer s.Close()

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.NotEmpty(t, lines)
	for _, line := range lines {
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry), "every line is JSON: %s", line)
	}
	assert.Contains(t, buf.String(), `"component":"migrations"`)
	assert.Contains(t, buf.String(), "00001_create_users.sql")
	assert.Contains(t, buf.String(), `"schema_version":2`)
}

func TestSQLite_Users(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	u := createUser(t, s, "pool_fan", "fan@example.com")
	assert.NotZero(t, u.ID)
	assert.False(t, u.IsAdmin)

	t.Run("by id omits hash", func(t *testing.T) {
		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.Equal(t, "pool_fan", got.Username)
		assert.Empty(t, got.PasswordHash)
	})

	t.Run("by email includes hash", func(t *testing.T) {
		got, err := s.GetUserByEmail(ctx, "fan@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.PasswordHash, got.PasswordHash)
	})

	t.Run("username or email", func(t *testing.T) {
		got, err := s.FindUserByUsernameOrEmail(ctx, "someone_else", "fan@example.com")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)

		_, err = s.FindUserByUsernameOrEmail(ctx, "nobody", "nobody@example.com")
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("duplicate username", func(t *testing.T) {
		err := s.CreateUser(ctx, &auth.User{Username: "pool_fan", Email: "other@example.com", PasswordHash: "x"})
		assert.True(t, errors.Is(err, storage.ErrConflict))
	})

	t.Run("duplicate email", func(t *testing.T) {
		err := s.CreateUser(ctx, &auth.User{Username: "other", Email: "fan@example.com", PasswordHash: "x"})
		assert.True(t, errors.Is(err, storage.ErrConflict))
	})

	t.Run("promote", func(t *testing.T) {
		require.NoError(t, s.SetAdmin(ctx, "fan@example.com", true))
		got, err := s.GetUserByID(ctx, u.ID)
		require.NoError(t, err)
		assert.True(t, got.IsAdmin)

		assert.True(t, errors.Is(s.SetAdmin(ctx, "missing@example.com", true), storage.ErrNotFound))
	})
}

func TestSQLite_Pools(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	plain := poolFixture("Sundhöllin")
	require.NoError(t, s.CreatePool(ctx, plain, nil))

	withFacility := poolFixture("Laugardalslaug")
	require.NoError(t, s.CreatePool(ctx, withFacility, &catalog.Facility{HotTub: true, WaterSlide: true}))
	require.NotNil(t, withFacility.Facility)
	assert.Equal(t, withFacility.ID, withFacility.Facility.PoolID)

	pools, err := s.ListPools(ctx)
	require.NoError(t, err)
	require.Len(t, pools, 2)
	assert.Nil(t, pools[0].Facility)
	require.NotNil(t, pools[1].Facility)
	assert.True(t, pools[1].Facility.HotTub)
	assert.False(t, pools[1].Facility.Gym)

	got, err := s.GetPool(ctx, plain.ID)
	require.NoError(t, err)
	assert.Equal(t, "Sundhöllin", got.Name)
	assert.Equal(t, 64.1435, *got.Latitude)
	assert.Equal(t, 1090, *got.EntryFee)
	assert.Nil(t, got.Website)

	t.Run("update upserts facility", func(t *testing.T) {
		got.Name = "Sundhöll Reykjavíkur"
		got.Website = ptr("https://reykjavik.is")
		require.NoError(t, s.UpdatePool(ctx, got, &catalog.Facility{Sauna: true}))

		assert.Equal(t, "Sundhöll Reykjavíkur", got.Name)
		require.NotNil(t, got.Facility)
		assert.True(t, got.Facility.Sauna)

		require.NoError(t, s.UpdatePool(ctx, got, &catalog.Facility{Gym: true}))
		reread, err := s.GetPool(ctx, got.ID)
		require.NoError(t, err)
		assert.True(t, reread.Facility.Gym)
		assert.False(t, reread.Facility.Sauna)
		assert.Equal(t, "https://reykjavik.is", *reread.Website)
	})

	t.Run("missing pool", func(t *testing.T) {
		_, err := s.GetPool(ctx, 9999)
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		missing := poolFixture("Nowhere")
		missing.ID = 9999
		assert.True(t, errors.Is(s.UpdatePool(ctx, missing, nil), storage.ErrNotFound))
		assert.True(t, errors.Is(s.DeletePool(ctx, 9999), storage.ErrNotFound))
	})
}

func TestSQLite_Reviews(t *testing.T) {
	ctx := context.Background()
	s := openSQLite(t)

	author := createUser(t, s, "swimmer", "swimmer@example.com")
	pool := poolFixture("Vesturbæjarlaug")
	require.NoError(t, s.CreatePool(ctx, pool, &catalog.Facility{ChildFriendly: true}))

	first := reviewFixture(pool.ID, author.ID)
	first.VisitDate = ptr("2026-09-01")
	require.NoError(t, s.CreateReview(ctx, first))
	second := reviewFixture(pool.ID, author.ID)
	second.Rating = 5
	require.NoError(t, s.CreateReview(ctx, second))

	reviews, err := s.ListReviews(ctx, pool.ID)
	require.NoError(t, err)
	require.Len(t, reviews, 2)
	assert.Equal(t, second.ID, reviews[0].ID)
	assert.Equal(t, "swimmer", reviews[0].Author.Username)
	assert.Equal(t, "2026-09-01", *reviews[1].VisitDate)

	got, err := s.GetReview(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Rating)
	assert.Equal(t, "Warm and clean", *got.Comment)

	t.Run("missing pool", func(t *testing.T) {
		err := s.CreateReview(ctx, reviewFixture(9999, author.ID))
		assert.True(t, errors.Is(err, storage.ErrNotFound))
	})

	t.Run("delete review", func(t *testing.T) {
		require.NoError(t, s.DeleteReview(ctx, first.ID))
		_, err := s.GetReview(ctx, first.ID)
		assert.True(t, errors.Is(err, storage.ErrNotFound))
		assert.True(t, errors.Is(s.DeleteReview(ctx, first.ID), storage.ErrNotFound))
	})

	t.Run("pool delete cascades", func(t *testing.T) {
		require.NoError(t, s.DeletePool(ctx, pool.ID))
		_, err := s.GetReview(ctx, second.ID)
		assert.True(t, errors.Is(err, storage.ErrNotFound))

		reviews, err := s.ListReviews(ctx, pool.ID)
		require.NoError(t, err)
		assert.Empty(t, reviews)
	})
}
