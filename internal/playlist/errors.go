package playlist

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoPlaylistBound is returned by navigation and position operations when
// no playlist is bound to the engine.
var ErrNoPlaylistBound = errors.New("no playlist bound")

// ErrPlaylistMismatch is returned by Update when the caller passes a
// different playlist than the one currently bound. Reconciliation only
// applies in-place edits; switching playlists requires Bind. This indicates
// incorrect call sequencing and fails loudly rather than silently
// reassigning the binding.
var ErrPlaylistMismatch = errors.New("playlist does not match the bound playlist")

// ErrCurrentEntryLost is returned by Update when the currently playing
// entry no longer exists in the new ordering (it was deleted). The
// condition is recoverable; the caller decides fallback behavior, the
// reconciler does not guess.
var ErrCurrentEntryLost = errors.New("currently playing entry not present in updated playlist")

// LoadFailure records one entry that failed to load during a bind.
type LoadFailure struct {
	Path string
	Err  error
}

// BindFailedError reports entries that failed to load during Bind. Partial
// loads are not rolled back: whatever loaded remains in the engine queue.
type BindFailedError struct {
	Failures []LoadFailure
}

func (e *BindFailedError) Error() string {
	paths := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		paths[i] = f.Path
	}
	return fmt.Sprintf("bind failed for %d of the playlist's entries: %s",
		len(e.Failures), strings.Join(paths, ", "))
}

// Unwrap exposes the first underlying load error for errors.Is checks
// (typically ErrEngineUnavailable).
func (e *BindFailedError) Unwrap() error {
	if len(e.Failures) == 0 {
		return nil
	}
	return e.Failures[0].Err
}
