package api

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platinummonkey/poolguide/pkg/catalog"
	"github.com/platinummonkey/poolguide/pkg/middleware"
)

func reviewPath(id int64) string {
	return "/api/reviews/" + strconv.FormatInt(id, 10)
}

func TestReviewHandlers_CreateAndList(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.user("admin", true)
	author, authorToken := env.user("reviewer", false)
	pool := createPool(t, env, adminToken, map[string]interface{}{"name": "Sundhöllin"})

	rec := env.do(http.MethodPost, "/api/reviews", map[string]interface{}{
		"pool_id":    pool.ID,
		"rating":     5,
		"comment":    "Great hot tubs",
		"visit_date": "2024-06-01",
	}, authorToken)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	review := decodeJSON[catalog.Review](t, rec)
	assert.Equal(t, author.ID, review.UserID, "author comes from the token")
	assert.Equal(t, pool.ID, review.PoolID)
	assert.Equal(t, 5, review.Rating)

	rec = env.do(http.MethodGet, poolPath(pool.ID)+"/reviews", nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	reviews := decodeJSON[[]catalog.Review](t, rec)
	require.Len(t, reviews, 1)
	require.NotNil(t, reviews[0].Author)
	assert.Equal(t, "reviewer", reviews[0].Author.Username)
	require.NotNil(t, reviews[0].VisitDate)
	assert.Equal(t, "2024-06-01", *reviews[0].VisitDate)

	// Author projection carries only the username
	assert.NotContains(t, rec.Body.String(), "reviewer@example.com")
	assert.NotContains(t, rec.Body.String(), "password")

	detail := decodeJSON[map[string]interface{}](t, env.do(http.MethodGet, poolPath(pool.ID), nil, ""))
	assert.Len(t, detail["reviews"], 1)
}

func TestReviewHandlers_CreateErrors(t *testing.T) {
	env := newTestEnv(t)
	_, token := env.user("reviewer", false)

	rec := env.do(http.MethodPost, "/api/reviews", map[string]interface{}{"pool_id": 1, "rating": 4}, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = env.do(http.MethodPost, "/api/reviews", map[string]interface{}{"pool_id": 999, "rating": 4}, token)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Pool not found"}`, rec.Body.String())

	tests := []struct {
		name    string
		body    map[string]interface{}
		message string
	}{
		{"missing rating", map[string]interface{}{"pool_id": 1}, "Rating is required"},
		{"rating too high", map[string]interface{}{"pool_id": 1, "rating": 6}, "Rating must be between 1-5"},
		{"rating too low", map[string]interface{}{"pool_id": 1, "rating": 0}, "Rating must be between 1-5"},
		{"missing pool", map[string]interface{}{"rating": 3}, "Pool ID is required"},
		{"bad date", map[string]interface{}{"pool_id": 1, "rating": 3, "visit_date": "June 1st"}, "Visit date must be a date in YYYY-MM-DD format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/api/reviews", tt.body, token)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
		})
	}
}

func TestReviewHandlers_ListUnknownPool(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/pools/42/reviews", nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Pool not found"}`, rec.Body.String())
}

func TestReviewHandlers_Delete(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.user("admin", true)
	_, authorToken := env.user("author", false)
	_, strangerToken := env.user("stranger", false)
	pool := createPool(t, env, adminToken, map[string]interface{}{"name": "Árbæjarlaug"})

	newReview := func() int64 {
		rec := env.do(http.MethodPost, "/api/reviews", map[string]interface{}{"pool_id": pool.ID, "rating": 3}, authorToken)
		require.Equal(t, http.StatusCreated, rec.Code)
		return decodeJSON[catalog.Review](t, rec).ID
	}

	first := newReview()

	rec := env.do(http.MethodDelete, reviewPath(first), nil, strangerToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"`+MsgNotReviewAuthor+`"}`, rec.Body.String())

	rec = env.do(http.MethodDelete, reviewPath(first), nil, authorToken)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"`+catalog.MsgReviewDeleted+`"}`, rec.Body.String())

	second := newReview()
	rec = env.do(http.MethodDelete, reviewPath(second), nil, adminToken)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = env.do(http.MethodDelete, reviewPath(second), nil, adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"`+catalog.MsgReviewNotFound+`"}`, rec.Body.String())

	rec = env.do(http.MethodDelete, reviewPath(second), nil, "")
	assert.JSONEq(t, `{"error":"`+middleware.MsgNoToken+`"}`, rec.Body.String())
}

func TestReviewHandlers_DeletingPoolCascades(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.user("admin", true)
	_, token := env.user("swimmer", false)
	pool := createPool(t, env, adminToken, map[string]interface{}{"name": "Sundlaug Kópavogs"})

	rec := env.do(http.MethodPost, "/api/reviews", map[string]interface{}{"pool_id": pool.ID, "rating": 4}, token)
	require.Equal(t, http.StatusCreated, rec.Code)
	review := decodeJSON[catalog.Review](t, rec)

	require.Equal(t, http.StatusOK, env.do(http.MethodDelete, poolPath(pool.ID), nil, adminToken).Code)

	rec = env.do(http.MethodDelete, reviewPath(review.ID), nil, adminToken)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
