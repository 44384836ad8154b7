package api

import (
	"errors"
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

// MsgNotReviewAuthor is returned when a non-admin deletes someone else's review
const MsgNotReviewAuthor = "Not authorized to delete this review"

// ReviewHandlers serves pool reviews
type ReviewHandlers struct {
	pools    storage.PoolStore
	reviews  storage.ReviewStore
	validate *validation.Validator
	authn    *middleware.Authenticator
	audit    *auditRecorder
}

// NewReviewHandlers creates the review handlers
func NewReviewHandlers(pools storage.PoolStore, reviews storage.ReviewStore, v *validation.Validator, authn *middleware.Authenticator) *ReviewHandlers {
	return &ReviewHandlers{
		pools:    pools,
		reviews:  reviews,
		validate: v,
		authn:    authn,
		audit:    newAuditRecorder(nil, false),
	}
}

// RegisterRoutes registers the review routes
func (h *ReviewHandlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/pools/{id}/reviews", h.listPoolReviews).Methods(http.MethodGet)
	router.Handle("/api/reviews", h.authn.Handler(http.HandlerFunc(h.createReview))).Methods(http.MethodPost)
	router.Handle("/api/reviews/{id}", h.authn.Handler(http.HandlerFunc(h.deleteReview))).Methods(http.MethodDelete)
}

// listPoolReviews handles GET /api/pools/{id}/reviews
func (h *ReviewHandlers) listPoolReviews(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathIDOrError(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.pools.GetPool(r.Context(), id); err != nil {
		writeStoreError(w, r, err, catalog.MsgPoolNotFound)
		return
	}

	reviews, err := h.reviews.ListReviews(r.Context(), id)
	if err != nil {
		httputil.WriteAppError(w, r, err)
		return
	}
	if reviews == nil {
		reviews = []catalog.Review{}
	}
	httputil.WriteSuccess(w, reviews)
}

// createReview handles POST /api/reviews. The author is the token's user.
func (h *ReviewHandlers) createReview(w http.ResponseWriter, r *http.Request) {
	var req catalog.CreateReviewRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	if _, err := h.pools.GetPool(r.Context(), *req.PoolID); err != nil {
		writeStoreError(w, r, err, catalog.MsgPoolNotFound)
		return
	}

	user := middleware.GetAuthContext(r).User
	review := req.Review(user.ID)
	// The pool may disappear between the check and the insert
	if err := h.reviews.CreateReview(r.Context(), review); err != nil {
		writeStoreError(w, r, err, catalog.MsgPoolNotFound)
		return
	}
	review.Author = &catalog.ReviewAuthor{Username: user.Username}

	observability.FromContext(r.Context()).
		WithFields(map[string]interface{}{"review_id": review.ID, "pool_id": review.PoolID}).
		Info("Review created")
	h.audit.record(r, audit.NewEvent(audit.EventTypeReviewCreate, audit.EventStatusSuccess).
		WithResource(audit.ResourceTypeReview, resourceID(review.ID)))
	httputil.WriteCreated(w, review)
}

// deleteReview handles DELETE /api/reviews/{id}. Only the author or an admin may delete.
func (h *ReviewHandlers) deleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := httputil.ParsePathIDOrError(w, r, "id")
	if !ok {
		return
	}

	review, err := h.reviews.GetReview(r.Context(), id)
	if err != nil {
		writeStoreError(w, r, err, catalog.MsgReviewNotFound)
		return
	}

	authCtx := middleware.GetAuthContext(r)
	if review.UserID != authCtx.User.ID && !authCtx.IsAdmin() {
		event := audit.NewEvent(audit.EventTypeAccessDenied, audit.EventStatusDenied).
			WithResource(audit.ResourceTypeReview, resourceID(id))
		event.Message = MsgNotReviewAuthor
		h.audit.record(r, event)
		httputil.WriteForbidden(w, MsgNotReviewAuthor)
		return
	}

	err = h.reviews.DeleteReview(r.Context(), id)
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		httputil.WriteAppError(w, r, err)
		return
	}

	event := audit.NewEvent(audit.EventTypeReviewDelete, audit.EventStatusSuccess).
		WithResource(audit.ResourceTypeReview, resourceID(id))
	event.Metadata = map[string]interface{}{"author_id": review.UserID}
	h.audit.record(r, event)
	httputil.WriteMessage(w, catalog.MsgReviewDeleted)
}
