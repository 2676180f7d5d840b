// Package backend wires the router's HTTP server: routes, middleware chain,
// and graceful lifecycle. Upstream calls run inside each request's handler
// goroutine, so a slow generation never blocks other requests.
package backend
