// Package middleware holds the HTTP middleware of the web front end:
// trace ID propagation, structured request logging, panic recovery,
// rate limiting and request tracing.
package middleware
