package api

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/poolguide/pkg/audit"
	"github.com/platinummonkey/poolguide/pkg/catalog"
	"github.com/platinummonkey/poolguide/pkg/httputil"
	"github.com/platinummonkey/poolguide/pkg/middleware"
	"github.com/platinummonkey/poolguide/pkg/observability"
	"github.com/platinummonkey/poolguide/pkg/storage"
	"github.com/platinummonkey/poolguide/pkg/validation"
)

// PoolHandlers serves the pool catalog
type PoolHandlers struct {
	pools    storage.PoolStore
	reviews  storage.ReviewStore
	validate *validation.Validator
	authn    *middleware.Authenticator
	audit    *auditRecorder
}

// NewPoolHandlers creates the pool handlers
func NewPoolHandlers(pools storage.PoolStore, reviews storage.ReviewStore, v *validation.Validator, authn *middleware.Authenticator) *PoolHandlers {
	return &PoolHandlers{
		pools:    pools,
		reviews:  reviews,
		validate: v,
		authn:    authn,
		audit:    newAuditRecorder(nil, false),
	}
}

// RegisterRoutes registers the pool routes. Mutations require an admin.
func (h *PoolHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/pools", h.listPools).Methods(http.MethodGet)
	router.Handle("/api/pools", h.authn.RequireAdmin(http.HandlerFunc(h.createPool))).Methods(http.MethodPost)
	router.HandleFunc("/api/pools/{id}", h.getPool).Methods(http.MethodGet)
	router.Handle("/api/pools/{id}", h.authn.RequireAdmin(http.HandlerFunc(h.updatePool))).Methods(http.MethodPut)
	router.Handle("/api/pools/{id}", h.authn.RequireAdmin(http.HandlerFunc(h.deletePool))).Methods(http.MethodDelete)
}

// poolDetail always carries the reviews array, even when empty
type poolDetail struct {
	*catalog.Pool
	Reviews []catalog.Review `json:"reviews"`
}

// listPools handles GET /api/pools
func (h *PoolHandlers) listPools(w http.ResponseWriter, r *http.Request) {
	pools, err := h.pools.ListPools(r.Context())
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	if pools == nil {
		pools = []catalog.Pool{}
	}
	httputil.WriteSuccess(w, pools)
}

// getPool handles GET /api/pools/{id}
func (h *PoolHandlers) getPool(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathIDOrError(w, r, "id")
	if !ok {
		return
	}

	pool, err := h.pools.GetPool(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, catalog.MsgPoolNotFound)
		return
	}

	reviews, err := h.reviews.ListReviews(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, catalog.MsgPoolNotFound)
		return
	}
	if reviews == nil {
		reviews = []catalog.Review{}
	}

	httputil.WriteSuccess(w, poolDetail{Pool: pool, Reviews: reviews})
}

// createPool handles POST /api/pools
func (h *PoolHandlers) createPool(w http.ResponseWriter, r *http.Request) {
	var req catalog.CreatePoolRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	pool := req.Pool()
	if err := h.pools.CreatePool(r.Context(), pool, req.Facilities.Facility()); err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}

	observability.FromContext(r.Context()).
		WithField("pool_id", pool.ID).
		Info("Pool created")
	h.audit.record(r, audit.NewEvent(audit.EventTypePoolCreate, audit.EventStatusSuccess).
		WithResource(audit.ResourceTypePool, resourceID(pool.ID)))
	httputil.WriteCreated(w, pool)
}

// updatePool handles PUT /api/pools/{id}
func (h *PoolHandlers) updatePool(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathIDOrError(w, r, "id")
	if !ok {
		return
	}

	var req catalog.UpdatePoolRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	pool, err := h.pools.GetPool(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, catalog.MsgPoolNotFound)
		return
	}

	req.Apply(pool)
	if err := h.pools.UpdatePool(r.Context(), pool, req.Facilities.Facility()); err != nil {
		writeStoreError(w, r, err, catalog.MsgPoolNotFound)
		return
	}

	h.audit.record(r, audit.NewEvent(audit.EventTypePoolUpdate, audit.EventStatusSuccess).
		WithResource(audit.ResourceTypePool, resourceID(pool.ID)))
	httputil.WriteSuccess(w, pool)
}

// deletePool handles DELETE /api/pools/{id}
func (h *PoolHandlers) deletePool(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathIDOrError(w, r, "id")
	if !ok {
		return
	}

	if err := h.pools.DeletePool(r.Context(), id); err != nil {
		writeStoreError(w, r, err, catalog.MsgPoolNotFound)
		return
	}

	observability.FromContext(r.Context()).
		WithField("pool_id", id).
		Info("Pool deleted")
	h.audit.record(r, audit.NewEvent(audit.EventTypePoolDelete, audit.EventStatusSuccess).
		WithResource(audit.ResourceTypePool, resourceID(id)))
	httputil.WriteMessage(w, catalog.MsgPoolDeleted)
}
