package handlers

import (
	"net/http"

	"player-shell/internal/database"
	"player-shell/internal/logging"
	"player-shell/internal/playlist"
)

// ListPlaylists returns all persisted playlists.
func (h *Handlers) ListPlaylists(w http.ResponseWriter, r *http.Request) {
	playlists, err := h.db.ListPlaylists(r.Context())
	if err != nil {
		writeJSONError(w, "failed to list playlists", http.StatusInternalServerError)
		return
	}
	writeJSON(w, playlists)
}

// CreatePlaylist creates a new empty playlist.
func (h *Handlers) CreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	if err := decodeBody(r, &body); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	created, err := h.db.CreatePlaylist(r.Context(), body.Name)
	if err != nil {
		writeJSONError(w, "failed to create playlist", http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, created)
}

// GetPlaylist returns one playlist with entries sorted by playback order.
func (h *Handlers) GetPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid playlist id", http.StatusBadRequest)
		return
	}

	p, err := h.db.GetPlaylistByID(r.Context(), id)
	if err != nil {
		writeJSONError(w, "failed to get playlist", http.StatusInternalServerError)
		return
	}
	if p == nil {
		writeJSONError(w, "playlist not found", http.StatusNotFound)
		return
	}
	writeJSON(w, p)
}

// UpdatePlaylist applies a partial update (rename, shelf position).
func (h *Handlers) UpdatePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid playlist id", http.StatusBadRequest)
		return
	}

	var patch database.PlaylistPatch
	if err := decodeBody(r, &patch); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.db.UpdatePlaylistByID(r.Context(), id, patch)
	if err != nil {
		writeJSONError(w, "failed to update playlist", http.StatusInternalServerError)
		return
	}
	if p == nil {
		writeJSONError(w, "playlist not found", http.StatusNotFound)
		return
	}
	writeJSON(w, p)
}

// DeletePlaylist removes a playlist. Deleting the bound playlist unbinds it
// and stops playback first.
func (h *Handlers) DeletePlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid playlist id", http.StatusBadRequest)
		return
	}

	if bound := h.playlists.Bound(); bound != nil && bound.ID == id {
		if err := h.playlists.Unbind(r.Context()); err != nil {
			logging.Warn("unbind before delete failed: %v", err)
		}
	}

	if err := h.db.DeletePlaylistByID(r.Context(), id); err != nil {
		writeJSONError(w, "failed to delete playlist", http.StatusInternalServerError)
		return
	}
	writeJSONStatus(w, "deleted")
}

// AddEntry appends a media file to a playlist. When the playlist is bound
// the live queue picks up the new entry through reconciliation.
func (h *Handlers) AddEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid playlist id", http.StatusBadRequest)
		return
	}

	var body struct {
		Path string `json:"path"`
	}
	if err := decodeBody(r, &body); err != nil || body.Path == "" {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	entry, err := h.db.CreatePlaylistEntry(r.Context(), body.Path, id)
	if err != nil {
		writeJSONError(w, "failed to add entry", http.StatusInternalServerError)
		return
	}
	if entry == nil {
		writeJSONError(w, "playlist not found", http.StatusNotFound)
		return
	}

	if h.resolver != nil {
		if info, rerr := h.resolver.Resolve(r.Context(), body.Path); rerr == nil {
			entry.MediaInfo = info
		}
	}

	if err := h.reconcileIfBound(r, id); err != nil {
		writeEngineError(w, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
	writeJSON(w, entry)
}

// DeleteEntry removes an entry from a playlist. Removing the currently
// playing entry of the bound playlist is reported as a conflict; the
// persisted playlist keeps the deletion and the live queue is untouched.
func (h *Handlers) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid playlist id", http.StatusBadRequest)
		return
	}
	entryID, err := pathID(r, "entryId")
	if err != nil {
		writeJSONError(w, "invalid entry id", http.StatusBadRequest)
		return
	}

	if err := h.db.DeletePlaylistEntryByID(r.Context(), entryID); err != nil {
		writeJSONError(w, "failed to delete entry", http.StatusInternalServerError)
		return
	}

	if err := h.reconcileIfBound(r, id); err != nil {
		writeEngineError(w, err)
		return
	}
	writeJSONStatus(w, "deleted")
}

// ReorderPlaylist persists new sort indexes and reconciles the live queue
// when the playlist is bound.
func (h *Handlers) ReorderPlaylist(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeJSONError(w, "invalid playlist id", http.StatusBadRequest)
		return
	}

	var body struct {
		Entries []struct {
			ID        int64 `json:"id"`
			SortIndex int   `json:"sortIndex"`
		} `json:"entries"`
	}
	if err := decodeBody(r, &body); err != nil || len(body.Entries) == 0 {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	for _, e := range body.Entries {
		if err := h.db.UpdatePlaylistEntrySortIndex(r.Context(), e.ID, e.SortIndex); err != nil {
			writeJSONError(w, "failed to persist new order", http.StatusInternalServerError)
			return
		}
	}

	if err := h.reconcileIfBound(r, id); err != nil {
		writeEngineError(w, err)
		return
	}

	p, err := h.db.GetPlaylistByID(r.Context(), id)
	if err != nil || p == nil {
		writeJSONError(w, "failed to reload playlist", http.StatusInternalServerError)
		return
	}
	writeJSON(w, p)
}

// GetCurrentFolder returns the synthetic playlist built from the directory
// of the file the engine is currently playing.
func (h *Handlers) GetCurrentFolder(w http.ResponseWriter, r *http.Request) {
	snap := h.bridge.Snapshot()
	p, err := playlist.BuildCurrentFolder(r.Context(), snap.Path, h.resolver)
	if err != nil {
		writeJSONError(w, "failed to read current folder", http.StatusInternalServerError)
		return
	}
	writeJSON(w, p)
}

// reconcileIfBound pushes the persisted state of playlist id into the live
// queue when that playlist is the bound one. Edits to unbound playlists
// need no engine work.
func (h *Handlers) reconcileIfBound(r *http.Request, id int64) error {
	bound := h.playlists.Bound()
	if bound == nil || bound.ID != id {
		return nil
	}

	fresh, err := h.db.GetPlaylistByID(r.Context(), id)
	if err != nil {
		return err
	}
	if fresh == nil {
		return playlist.ErrPlaylistMismatch
	}
	return h.playlists.Update(r.Context(), fresh)
}
