// Package playlist reconciles the durable, reorderable playlist model with
// the playback engine's live linear queue.
//
// The two orderings mutate independently: the user reorders, inserts, and
// deletes entries (bulk sort-index reassignment in the database) while the
// engine advances through a position-addressed queue that only supports
// coarse replace/append/insert-at primitives. The Manager keeps them
// consistent without ever losing the currently playing entry and without
// any lock shared with the engine.
//
// A binding follows a simple lifecycle: unbound, bound via Bind (engine
// queue mirrors the playlist's sort order), transiently reconciling while
// Update rebuilds the queue around the playing entry, then bound again,
// or unbound after Unbind. Update is idempotent: rebuilding from the
// authoritative desired order converges from any starting point, so the
// documented recovery path for a failed reconciliation is simply calling
// Update again.
//
// The package also builds the synthetic current-folder playlist, a
// read-only playlist derived from the directory of the currently playing
// file that never touches durable storage.
package playlist
