// Package api provides the HTTP REST API of the pool guide.
//
// # Overview
//
// The API is built on gorilla/mux and organized into handler groups, each
// registering its own routes:
//
//   - AuthHandlers: login, registration and the current user (/api/auth)
//   - PoolHandlers: the pool catalog; mutations require an admin
//   - ReviewHandlers: pool reviews; creating requires a token, deleting
//     requires the author or an admin
//
// Every request passes through request ID, access logging, panic recovery,
// CORS and the general rate limit. The /api/auth routes are additionally
// guarded by the stricter auth rate limit.
//
// Logins, registrations, catalog mutations and denied review deletions are
// reported to Options.Audit when set.
//
// # Usage
//
//	server := api.NewServer(api.Options{
//		Accounts:       accountsService,
//		Users:          store,
//		Verifier:       issuer,
//		Pools:          catalogStore,
//		Reviews:        catalogStore,
//		Health:         healthChecker,
//		Logger:         logger,
//		GeneralLimiter: middleware.NewMemoryLimiter(100, 15*time.Minute),
//		AuthLimiter:    middleware.NewMemoryLimiter(10, 15*time.Minute),
//	})
//	http.ListenAndServe(":3000", server)
//
// # Error Bodies
//
// Failures use {"error": "..."}; validation failures add an "errors" array of
// {field, message, location}. Login and registration answer with
// message-keyed bodies such as {"message": "Invalid credentials"}.
package api
