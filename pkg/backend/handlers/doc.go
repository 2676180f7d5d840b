// Package handlers implements the router's HTTP endpoints: health probing,
// text generation, and schema-constrained structured generation.
package handlers
