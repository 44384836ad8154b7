// Package httputil provides HTTP utilities for standardized request/response handling.
//
// # Overview
//
// This package offers helpers for JSON encoding/decoding, the error envelope
// shared by every endpoint, path parameter parsing and the generic HTTP
// middleware (request IDs, access logging, panic recovery, CORS, body limits).
//
// # Error Envelope
//
// Every error body has the form {"error": "<message>"}. Validation failures
// add the field-level list:
//
//	{"error": "Validation failed", "errors": [{"field": "email", "message": "...", "location": "body"}]}
//
// Handlers return typed errors and let WriteAppError choose the status:
//
//	if err != nil {
//		httputil.WriteAppError(w, r, err)
//		return
//	}
//
// # Request Parsing
//
//	var req catalog.CreatePoolRequest
//	if !httputil.ParseJSONOrError(w, r, &req) {
//		return // Error response already written
//	}
//
//	id, ok := httputil.ParsePathIDOrError(w, r, "id")
//
// # Middleware
//
//	httputil.Chain(
//		httputil.RequestIDMiddleware,
//		httputil.LoggingMiddleware(logger),
//		httputil.RecoveryMiddleware,
//		httputil.MaxBytesMiddleware(1<<20),
//	)
//
// # Related Packages
//
//   - pkg/middleware: Authentication, authorization and rate limiting middleware
package httputil
