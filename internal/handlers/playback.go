package handlers

import (
	"net/http"

	"player-shell/internal/mpv"
)

// PlayerState returns the latest playback snapshot.
func (h *Handlers) PlayerState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, h.bridge.Snapshot())
}

// Play resumes playback.
func (h *Handlers) Play(w http.ResponseWriter, r *http.Request) {
	if err := h.bridge.Play(r.Context()); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, "playing")
}

// Pause pauses playback.
func (h *Handlers) Pause(w http.ResponseWriter, r *http.Request) {
	if err := h.bridge.Pause(r.Context()); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, "paused")
}

// Stop halts playback and unbinds any bound playlist.
func (h *Handlers) Stop(w http.ResponseWriter, r *http.Request) {
	if h.playlists.Bound() != nil {
		if err := h.playlists.Unbind(r.Context()); err != nil {
			writeEngineError(w, err)
			return
		}
	} else if err := h.bridge.Stop(r.Context()); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, "stopped")
}

// Seek jumps to an absolute position in seconds.
func (h *Handlers) Seek(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Position float64 `json:"position"`
	}
	if err := decodeBody(r, &body); err != nil || body.Position < 0 {
		writeJSONError(w, "invalid position", http.StatusBadRequest)
		return
	}

	if err := h.bridge.Seek(r.Context(), body.Position); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, "seeked")
}

// SetVolume sets playback volume (0-100).
func (h *Handlers) SetVolume(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Volume float64 `json:"volume"`
	}
	if err := decodeBody(r, &body); err != nil || body.Volume < 0 || body.Volume > 100 {
		writeJSONError(w, "volume must be between 0 and 100", http.StatusBadRequest)
		return
	}

	if err := h.bridge.SetVolume(r.Context(), body.Volume); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, "volume set")
}

// Next advances to the following playlist entry, wrapping at the end.
func (h *Handlers) Next(w http.ResponseWriter, r *http.Request) {
	if err := h.playlists.Next(r.Context()); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, "advanced")
}

// Previous moves to the preceding playlist entry, wrapping at the start.
func (h *Handlers) Previous(w http.ResponseWriter, r *http.Request) {
	if err := h.playlists.Previous(r.Context()); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, "rewound")
}

// PlayPlaylist binds a playlist and starts playback, optionally at a
// specific entry.
func (h *Handlers) PlayPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid playlist id", http.StatusBadRequest)
		return
	}

	var body struct {
		EntryID *int64 `json:"entryId"`
	}
	// An empty body starts from the first entry.
	_ = decodeBody(r, &body)

	p, err := h.db.GetPlaylistByID(r.Context(), id)
	if err != nil {
		writeJSONError(w, "failed to get playlist", http.StatusInternalServerError)
		return
	}
	if p == nil {
		writeJSONError(w, "playlist not found", http.StatusNotFound)
		return
	}
	if len(p.Entries) == 0 {
		writeJSONError(w, "playlist is empty", http.StatusUnprocessableEntity)
		return
	}

	if body.EntryID != nil {
		err = h.playlists.PlayEntry(r.Context(), p, *body.EntryID)
	} else {
		err = h.playlists.Bind(r.Context(), p)
	}
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, "playing")
}

// GetTracks returns the loaded file's streams with selection flags.
func (h *Handlers) GetTracks(w http.ResponseWriter, r *http.Request) {
	tracks, err := h.engine.GetTracks(r.Context())
	if err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSON(w, tracks)
}

// SetTracks selects audio/subtitle/video streams. Omitted fields are left
// unchanged.
func (h *Handlers) SetTracks(w http.ResponseWriter, r *http.Request) {
	var sel mpv.TrackSelection
	if err := decodeBody(r, &sel); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.engine.SetTracks(r.Context(), sel); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, "tracks set")
}
