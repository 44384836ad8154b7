// Package auth provides password hashing, signed bearer tokens and the
// per-request authentication context for the poolguide API.
//
// # Overview
//
// Accounts authenticate with an email and password. Passwords are stored as
// bcrypt digests produced by PasswordHasher. A successful login yields an
// HS256 JSON Web Token issued by TokenIssuer that carries the user ID,
// username and admin flag and expires after a fixed TTL (24h by default).
//
// Verification is stateless: a token is accepted when its signature matches
// the configured secret and its expiry has not elapsed. There is no refresh
// token and no revocation list.
//
//	hasher := auth.NewPasswordHasher(bcrypt.DefaultCost)
//	hash, err := hasher.Hash("Sup3rSecret")
//	ok := hasher.Verify("Sup3rSecret", hash)
//
//	issuer, err := auth.NewTokenIssuer([]byte(secret), 24*time.Hour)
//	token, err := issuer.Issue(user)
//	claims, err := issuer.Verify(token)
//
// # Request Context
//
// The authentication middleware stores an *AuthContext in the request
// context; handlers read it with FromContext.
//
// # Related Packages
//
//   - pkg/middleware: Bearer gate, admin gate and rate limiting
//   - pkg/accounts: login and registration flows
package auth
