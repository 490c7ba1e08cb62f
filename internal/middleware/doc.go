// Package middleware provides HTTP middleware for the player shell's
// control API.
//
// It includes:
//   - Request logging in W3C Extended Log Format
//   - Prometheus request metrics with identifier-normalized paths
//   - Configurable filtering for health check endpoints
package middleware
