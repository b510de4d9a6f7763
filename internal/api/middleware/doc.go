// Package middleware provides the gin middleware shared by all routes:
// CORS, per-IP rate limiting and request body size limits.
package middleware
