// Package handlers implements the HTTP control API the shell UI talks to:
// playlist CRUD and reordering, playback transport, track selection,
// viewport geometry, a websocket snapshot stream, and health checks.
//
// Handlers translate reconciliation and engine failures into status codes:
// an unavailable engine maps to 502, rejected commands and partial binds to
// 422, and reconciliation conflicts (lost playing entry, unbound or
// mismatched playlist) to 409.
package handlers
