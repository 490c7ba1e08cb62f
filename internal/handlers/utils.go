package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"player-shell/internal/logging"
	"player-shell/internal/mpv"
	"player-shell/internal/playlist"
)

// writeJSON encodes v as JSON and writes it to the response writer.
// Any encoding or write errors are logged since we typically cannot
// recover from them in an HTTP handler context.
func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logging.Error("failed to encode JSON response: %v", err)
	}
}

// writeJSONError writes an error response as JSON with the given status code.
func writeJSONError(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": message}); err != nil {
		logging.Error("failed to encode JSON error response: %v", err)
	}
}

// writeJSONStatus writes a simple status response as JSON.
func writeJSONStatus(w http.ResponseWriter, status string) {
	writeJSON(w, map[string]string{"status": status})
}

// pathID extracts a numeric path variable.
func pathID(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(mux.Vars(r)[name], 10, 64)
}

// decodeBody decodes the JSON request body into v.
func decodeBody(r *http.Request, v interface{}) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// writeEngineError maps playback and reconciliation failures onto HTTP
// status codes. The engine being gone is an upstream failure; a rejected
// command or a reconciliation conflict is the caller's to resolve.
func writeEngineError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, mpv.ErrEngineUnavailable):
		writeJSONError(w, "playback engine unavailable", http.StatusBadGateway)
	case errors.Is(err, playlist.ErrNoPlaylistBound):
		writeJSONError(w, "no playlist bound", http.StatusConflict)
	case errors.Is(err, playlist.ErrCurrentEntryLost):
		writeJSONError(w, "currently playing entry is gone from the playlist", http.StatusConflict)
	case errors.Is(err, playlist.ErrPlaylistMismatch):
		writeJSONError(w, "a different playlist is bound", http.StatusConflict)
	case mpv.IsRejected(err):
		writeJSONError(w, err.Error(), http.StatusUnprocessableEntity)
	default:
		var bindErr *playlist.BindFailedError
		if errors.As(err, &bindErr) {
			writeJSONError(w, bindErr.Error(), http.StatusUnprocessableEntity)
			return
		}
		logging.Error("engine operation failed: %v", err)
		writeJSONError(w, "playback operation failed", http.StatusInternalServerError)
	}
}
