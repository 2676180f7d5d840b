// Package middleware provides HTTP middleware for the router server:
// the shared-secret access guard, CORS, request ID tracking, request
// logging, and panic recovery.
package middleware
