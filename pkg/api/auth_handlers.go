package api

import (
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/platinummonkey/poolguide/pkg/accounts"
	"github.com/platinummonkey/poolguide/pkg/audit"
	"github.com/platinummonkey/poolguide/pkg/httputil"
	"github.com/platinummonkey/poolguide/pkg/middleware"
	"github.com/platinummonkey/poolguide/pkg/observability"
	"github.com/platinummonkey/poolguide/pkg/validation"
)

// AuthHandlers handles authentication-related HTTP requests
type AuthHandlers struct {
	service  *accounts.Service
	validate *validation.Validator
	authn    *middleware.Authenticator
	audit    *auditRecorder

	// limit is the auth rate limit class, nil when disabled
	limit func(http.Handler) http.Handler
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(service *accounts.Service, v *validation.Validator, authn *middleware.Authenticator) *AuthHandlers {
	return &AuthHandlers{
		service:  service,
		validate: v,
		authn:    authn,
		audit:    newAuditRecorder(nil, false),
	}
}

// RegisterRoutes registers authentication routes under /api/auth
func (h *AuthHandlers) RegisterRoutes(router *mux.Router) {
	sub := router.PathPrefix("/api/auth").Subrouter()
	if h.limit != nil {
		sub.Use(h.limit)
	}

	sub.HandleFunc("/login", h.login).Methods(http.MethodPost)
	sub.HandleFunc("/register", h.register).Methods(http.MethodPost)
	sub.Handle("/me", h.authn.Handler(http.HandlerFunc(h.me))).Methods(http.MethodGet)
}

// accountResponse is the message-keyed body of the login and register endpoints
type accountResponse struct {
	Message string      `json:"message"`
	Token   string      `json:"token,omitempty"`
	User    interface{} `json:"user,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type registeredUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// login handles POST /api/auth/login
func (h *AuthHandlers) login(w http.ResponseWriter, r *http.Request) {
	var req accounts.LoginRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	result, err := h.service.Login(r.Context(), req.Email, req.Password)
	if errors.Is(err, accounts.ErrInvalidCredentials) {
		event := audit.NewEvent(audit.EventTypeLoginFailed, audit.EventStatusFailure)
		event.Metadata = map[string]interface{}{"email": req.Email}
		h.audit.record(r, event)
		httputil.WriteJSON(w, http.StatusUnauthorized, accountResponse{Message: accounts.MsgInvalidCreds})
		return
	}
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	h.audit.record(r, audit.NewEvent(audit.EventTypeLogin, audit.EventStatusSuccess).
		WithActor(result.User.ID, result.User.Username))
	httputil.WriteSuccess(w, accountResponse{
		Message: accounts.MsgLoginSuccessful,
		Token:   result.Token,
		User:    result.User,
	})
}

// register handles POST /api/auth/register
func (h *AuthHandlers) register(w http.ResponseWriter, r *http.Request) {
	var req accounts.RegisterRequest
	if !decode(w, r, h.validate, &req) {
		return
	}

	user, err := h.service.Register(r.Context(), req.Username, req.Email, req.Password)
	if errors.Is(err, accounts.ErrUserExists) {
		event := audit.NewEvent(audit.EventTypeRegisterFailed, audit.EventStatusFailure)
		event.Message = "Username or email already taken"
		event.Metadata = map[string]interface{}{"username": req.Username, "email": req.Email}
		h.audit.record(r, event)
		httputil.WriteJSON(w, http.StatusBadRequest, accountResponse{Message: accounts.MsgUserExists})
		return
	}
	if err != nil {
		writeServerError(w, r, err)
		return
	}

	h.audit.record(r, audit.NewEvent(audit.EventTypeRegister, audit.EventStatusSuccess).
		WithActor(user.ID, user.Username).
		WithResource(audit.ResourceTypeUser, resourceID(user.ID)))
	httputil.WriteCreated(w, accountResponse{
		Message: accounts.MsgRegistered,
		User:    registeredUser{ID: user.ID, Username: user.Username},
	})
}

// me handles GET /api/auth/me
func (h *AuthHandlers) me(w http.ResponseWriter, r *http.Request) {
	authCtx := middleware.GetAuthContext(r)
	httputil.WriteSuccess(w, authCtx.User.Public())
}

func writeServerError(w http.ResponseWriter, r *http.Request, err error) {
	observability.FromContext(r.Context()).
		WithError(err).
		WithField("path", r.URL.Path).
		Error("Account request failed")
	httputil.WriteJSON(w, http.StatusInternalServerError, accountResponse{
		Message: accounts.MsgServerError,
		Error:   err.Error(),
	})
}
