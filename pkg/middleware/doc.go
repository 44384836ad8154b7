// Package middleware provides the HTTP gates of the pool guide: bearer token
// authentication, admin authorization, and fixed-window rate limiting.
//
// # Authentication
//
// Authenticator verifies the bearer token, loads the referenced user and
// attaches an auth.AuthContext to the request context:
//
//	authn := middleware.NewAuthenticator(issuer, store, metrics)
//	router.Handle("/api/reviews", authn.Handler(createReview))
//	router.Handle("/api/pools", authn.RequireAdmin(createPool))
//
// RequireAdmin always runs the token check first, so the admin gate can not
// be mounted on its own.
//
// # Rate limiting
//
// A Limiter counts requests per key in fixed windows. MemoryLimiter keeps the
// counters in process; RedisLimiter shares them between instances and fails
// open when Redis is unavailable. RateLimit keys each limiter by route class
// and client IP:
//
//	general := middleware.NewMemoryLimiter(100, 15*time.Minute)
//	router.Use(middleware.RateLimit(general, middleware.RateLimitOptions{
//		Class:   "general",
//		Message: middleware.GeneralLimitMessage,
//	}, metrics))
package middleware
