// Package accounts implements the login and registration flows on top of the
// credential store, the password hasher and the token issuer.
package accounts
