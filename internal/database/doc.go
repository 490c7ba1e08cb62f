// Package database provides SQLite storage for the player shell.
//
// It handles storage and retrieval of:
//   - Playlists and their ordered entries
//   - Cached media metadata keyed by file path
//
// Entry ordering uses two fields: idx records original insertion order and
// never changes, while sort_index is the current playback order and is
// reassigned in bulk on user reorders. Entries are always returned sorted
// ascending by sort_index.
//
// The database uses WAL mode for concurrent read performance, enables
// foreign keys so playlist deletion cascades to entries, and initializes
// its schema automatically.
package database
