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

func createPool(t *testing.T, env *testEnv, token string, body interface{}) catalog.Pool {
	t.Helper()
	rec := env.do(http.MethodPost, "/api/pools", body, token)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeJSON[catalog.Pool](t, rec)
}

func poolPath(id int64) string {
	return "/api/pools/" + strconv.FormatInt(id, 10)
}

func TestPoolHandlers_CreateRequiresAdmin(t *testing.T) {
	env := newTestEnv(t)
	_, userToken := env.user("regular", false)
	body := map[string]interface{}{"name": "Laugardalslaug"}

	rec := env.do(http.MethodPost, "/api/pools", body, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.JSONEq(t, `{"error":"`+middleware.MsgNoToken+`"}`, rec.Body.String())

	rec = env.do(http.MethodPost, "/api/pools", body, userToken)
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.JSONEq(t, `{"error":"`+middleware.MsgAdminRequired+`"}`, rec.Body.String())

	pools := decodeJSON[[]catalog.Pool](t, env.do(http.MethodGet, "/api/pools", nil, ""))
	assert.Empty(t, pools)
}

func TestPoolHandlers_CRUD(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.user("admin", true)

	created := createPool(t, env, adminToken, map[string]interface{}{
		"name":          "Vesturbæjarlaug",
		"latitude":      64.1466,
		"longitude":     -21.9706,
		"entry_fee":     1290,
		"opening_hours": "06:30-22:00",
		"website":       "https://reykjavik.is/vesturbaejarlaug",
		"facilities": map[string]bool{
			"hot_tub": true,
			"sauna":   true,
		},
	})
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Vesturbæjarlaug", created.Name)
	require.NotNil(t, created.EntryFee)
	assert.Equal(t, 1290, *created.EntryFee)

	// List includes the facility
	pools := decodeJSON[[]catalog.Pool](t, env.do(http.MethodGet, "/api/pools", nil, ""))
	require.Len(t, pools, 1)
	require.NotNil(t, pools[0].Facility)
	assert.True(t, pools[0].Facility.HotTub)
	assert.True(t, pools[0].Facility.Sauna)
	assert.False(t, pools[0].Facility.Gym)

	// Detail always carries a reviews array
	rec := env.do(http.MethodGet, poolPath(created.ID), nil, "")
	require.Equal(t, http.StatusOK, rec.Code)
	detail := decodeJSON[map[string]interface{}](t, rec)
	assert.Equal(t, []interface{}{}, detail["reviews"])
	assert.NotNil(t, detail["facility"])

	// Update only touches present fields and upserts the facility
	rec = env.do(http.MethodPut, poolPath(created.ID), map[string]interface{}{
		"entry_fee":  1390,
		"facilities": map[string]bool{"gym": true},
	}, adminToken)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	updated := decodeJSON[catalog.Pool](t, rec)
	assert.Equal(t, "Vesturbæjarlaug", updated.Name)
	assert.Equal(t, 1390, *updated.EntryFee)
	require.NotNil(t, updated.Facility)
	assert.True(t, updated.Facility.Gym)
	assert.False(t, updated.Facility.HotTub)

	rec = env.do(http.MethodDelete, poolPath(created.ID), nil, adminToken)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"message":"`+catalog.MsgPoolDeleted+`"}`, rec.Body.String())

	rec = env.do(http.MethodGet, poolPath(created.ID), nil, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.JSONEq(t, `{"error":"Pool not found"}`, rec.Body.String())
}

func TestPoolHandlers_NotFound(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.user("admin", true)

	tests := []struct {
		method string
		body   interface{}
	}{
		{http.MethodGet, nil},
		{http.MethodPut, map[string]interface{}{"name": "Renamed"}},
		{http.MethodDelete, nil},
	}
	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			rec := env.do(tt.method, "/api/pools/999", tt.body, adminToken)
			assert.Equal(t, http.StatusNotFound, rec.Code)
			assert.JSONEq(t, `{"error":"Pool not found"}`, rec.Body.String())
		})
	}
}

func TestPoolHandlers_InvalidID(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(http.MethodGet, "/api/pools/abc", nil, "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "ID must be an integer")
	assert.Contains(t, rec.Body.String(), `"location":"params"`)
}

func TestPoolHandlers_Validation(t *testing.T) {
	env := newTestEnv(t)
	_, adminToken := env.user("admin", true)

	tests := []struct {
		name    string
		body    map[string]interface{}
		message string
	}{
		{"missing name", map[string]interface{}{}, "Pool name is required"},
		{"short name", map[string]interface{}{"name": "A"}, "Name must be between 2-100 characters"},
		{"latitude outside Iceland", map[string]interface{}{"name": "Far", "latitude": 40.0}, "Latitude must be a valid coordinate in Iceland (63-67)"},
		{"longitude outside Iceland", map[string]interface{}{"name": "Far", "longitude": 10.0}, "Longitude must be a valid coordinate in Iceland (-24 to -13)"},
		{"negative fee", map[string]interface{}{"name": "Cheap", "entry_fee": -1}, "Entry fee must be a positive number"},
		{"bad website", map[string]interface{}{"name": "Web", "website": "not a url"}, "Website must be a valid URL"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(http.MethodPost, "/api/pools", tt.body, adminToken)
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.message)
		})
	}

	created := createPool(t, env, adminToken, map[string]interface{}{"name": "Valid"})
	rec := env.do(http.MethodPut, poolPath(created.ID), map[string]interface{}{"latitude": 70.0}, adminToken)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
