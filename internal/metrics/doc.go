// Package metrics provides Prometheus instrumentation for the player
// shell. All metrics are prefixed with "player_shell_" to avoid naming
// collisions with other applications.
//
// The metrics are organized into the following categories:
//
//   - HTTP: request counts, durations, and in-flight gauge, recorded by
//     the middleware package.
//   - Engine: IPC command counts and round-trip latency, lifecycle events,
//     and socket connectivity, recorded through the mpv.Observer
//     implementation returned by NewEngineObserver.
//   - Snapshot: refresh counts by trigger, refresh latency, and coalesced
//     triggers, recorded by the player bridge.
//   - Reconcile: playlist reconciliation operation counts, queue rebuild
//     load commands, and durations.
//   - Viewport: geometry push counts, coalesced rectangles, and the
//     singleton activation guard.
//   - Database: query counts, latency, and open connections.
//   - Websocket: connected snapshot-stream clients and dropped messages.
//   - Metadata: lookup counts by outcome (cache, extracted, fallback,
//     video).
//
// Call InitializeMetrics once at startup to pre-populate known label
// combinations so every series is present from the first scrape.
package metrics
