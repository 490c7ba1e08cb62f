package handlers

import (
	"net/http"

	"player-shell/internal/viewport"
)

// PushViewportRect accepts the overlay surface rectangle measured by the
// shell UI and forwards it to the geometry driver. Bursts coalesce inside
// the driver; this endpoint never blocks on the windowing channel.
func (h *Handlers) PushViewportRect(w http.ResponseWriter, r *http.Request) {
	if h.driver == nil {
		writeJSONError(w, "no viewport driver active", http.StatusServiceUnavailable)
		return
	}

	var rect viewport.Rect
	if err := decodeBody(r, &rect); err != nil {
		writeJSONError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if rect.Width < 0 || rect.Height < 0 {
		writeJSONError(w, "rectangle dimensions must be non-negative", http.StatusBadRequest)
		return
	}

	h.driver.Push(rect)
	writeJSONStatus(w, "accepted")
}
