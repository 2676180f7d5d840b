// Package routertypes defines the request and response types of the router's
// HTTP API. It separates type definitions from the backend implementation so
// clients can import the wire shapes without pulling in server code.
package routertypes
