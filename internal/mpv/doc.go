// Package mpv implements the command gateway to the native playback engine.
//
// The gateway speaks the engine's line-delimited JSON IPC protocol over a
// unix socket. Commands are correlated with responses by request id, so
// responses may arrive out of order relative to other callers. Engine
// lifecycle events (start-file, file-loaded, end-file, shutdown) are pushed
// on the same socket and fanned out to subscribed handlers in registration
// order.
//
// The gateway holds no playback state and performs no retries: every
// operation translates 1:1 to an engine call and every failure is surfaced
// to the caller, either as ErrEngineUnavailable (socket gone) or as a
// CommandRejectedError (engine refused the request). Caching and
// aggregation live in the player package; retry policy belongs to callers.
package mpv
