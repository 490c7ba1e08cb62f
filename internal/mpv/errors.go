package mpv

import (
	"errors"
	"fmt"
)

// ErrEngineUnavailable is returned when the IPC socket to the playback
// engine is gone (never connected, closed, or the engine shut down). It is
// fatal to the current operation, not to the daemon.
var ErrEngineUnavailable = errors.New("playback engine unavailable")

// CommandRejectedError is returned when the engine understood a command but
// refused it (seeking past EOF, unknown property, invalid track id). The
// condition is recoverable and surfaced to the caller unchanged.
type CommandRejectedError struct {
	Command string
	Reason  string
}

func (e *CommandRejectedError) Error() string {
	return fmt.Sprintf("engine rejected %q: %s", e.Command, e.Reason)
}

// IsRejected reports whether err is a CommandRejectedError.
func IsRejected(err error) bool {
	var rejected *CommandRejectedError
	return errors.As(err, &rejected)
}
