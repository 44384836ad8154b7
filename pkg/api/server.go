package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/platinummonkey/poolguide/pkg/accounts"
	"github.com/platinummonkey/poolguide/pkg/audit"
	"github.com/platinummonkey/poolguide/pkg/catalog"
	"github.com/platinummonkey/poolguide/pkg/httputil"
	"github.com/platinummonkey/poolguide/pkg/middleware"
	"github.com/platinummonkey/poolguide/pkg/observability"
	"github.com/platinummonkey/poolguide/pkg/storage"
	"github.com/platinummonkey/poolguide/pkg/validation"
)

// maxBodyBytes bounds JSON request bodies
const maxBodyBytes = 1 << 20

// Options carries the dependencies of the API server
type Options struct {
	Accounts *accounts.Service
	Users    middleware.UserLookup
	Verifier middleware.TokenVerifier
	Pools    storage.PoolStore
	Reviews  storage.ReviewStore
	Health   *observability.HealthChecker

	Logger  *observability.Logger
	Metrics *observability.Metrics // optional
	Audit   audit.Logger           // optional, events are dropped when nil

	// Nil limiters disable the corresponding rate limit class
	GeneralLimiter middleware.Limiter
	AuthLimiter    middleware.Limiter
	TrustProxy     bool

	CORSOrigins []string

	// Tracing wraps the handler with otelhttp
	Tracing bool
}

// Server represents our API server
type Server struct {
	router  *mux.Router
	handler http.Handler

	authn    *middleware.Authenticator
	validate *validation.Validator

	authHandlers   *AuthHandlers
	poolHandlers   *PoolHandlers
	reviewHandlers *ReviewHandlers
	health         *observability.HealthChecker
}

// NewServer creates a new API server
func NewServer(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = observability.GetLogger(context.Background())
	}
	if len(opts.CORSOrigins) == 0 {
		opts.CORSOrigins = []string{"*"}
	}

	v := validation.New()
	accounts.RegisterMessages(v)
	catalog.RegisterMessages(v)

	s := &Server{
		router:   mux.NewRouter(),
		authn:    middleware.NewAuthenticator(opts.Verifier, opts.Users, opts.Metrics),
		validate: v,
		health:   opts.Health,
	}

	s.authHandlers = NewAuthHandlers(opts.Accounts, v, s.authn)
	if opts.AuthLimiter != nil {
		s.authHandlers.limit = middleware.RateLimit(opts.AuthLimiter, middleware.RateLimitOptions{
			Class:      middleware.ClassAuth,
			Message:    middleware.AuthLimitMessage,
			TrustProxy: opts.TrustProxy,
		}, opts.Metrics)
	}
	s.poolHandlers = NewPoolHandlers(opts.Pools, opts.Reviews, v, s.authn)
	s.reviewHandlers = NewReviewHandlers(opts.Pools, opts.Reviews, v, s.authn)

	recorder := newAuditRecorder(opts.Audit, opts.TrustProxy)
	s.authHandlers.audit = recorder
	s.poolHandlers.audit = recorder
	s.reviewHandlers.audit = recorder

	s.setupRoutes(opts.Metrics)

	chain := []func(http.Handler) http.Handler{
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(opts.Logger),
		httputil.RecoveryMiddleware,
		httputil.CORSMiddleware(opts.CORSOrigins),
		httputil.MaxBytesMiddleware(maxBodyBytes),
	}
	if opts.GeneralLimiter != nil {
		chain = append(chain, middleware.RateLimit(opts.GeneralLimiter, middleware.RateLimitOptions{
			Class:      middleware.ClassGeneral,
			Message:    middleware.GeneralLimitMessage,
			TrustProxy: opts.TrustProxy,
		}, opts.Metrics))
	}

	var handler http.Handler = httputil.Chain(chain...)(s.router)
	if opts.Tracing {
		handler = otelhttp.NewHandler(handler, "poolguide-api")
	}
	s.handler = handler

	return s
}

// setupRoutes configures all the API routes
func (s *Server) setupRoutes(metrics *observability.Metrics) {
	if metrics != nil {
		s.router.Use(observability.HTTPMetricsMiddleware(metrics))
	}

	s.router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteNotFoundError(w, "Route not found")
	})
	s.router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		httputil.WriteErrorMessage(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	if s.health != nil {
		s.router.HandleFunc("/api/health", s.health.APIHealth).Methods(http.MethodGet)
	}

	s.authHandlers.RegisterRoutes(s.router)
	s.poolHandlers.RegisterRoutes(s.router)
	s.reviewHandlers.RegisterRoutes(s.router)
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}

// decode parses the JSON body into dest and validates it.
// It writes the error response and returns false on failure.
func decode(w http.ResponseWriter, r *http.Request, v *validation.Validator, dest interface{}) bool {
	if !httputil.ParseJSONOrError(w, r, dest) {
		return false
	}
	if err := v.Struct(dest); err != nil {
		httputil.WriteAppError(w, r, err)
		return false
	}
	return true
}

// writeStoreError maps storage.ErrNotFound to a 404 carrying notFound
func writeStoreError(w http.ResponseWriter, r *http.Request, err error, notFound string) {
	if errors.Is(err, storage.ErrNotFound) {
		httputil.WriteNotFoundError(w, notFound)
		return
	}
	httputil.WriteAppError(w, r, err)
}
