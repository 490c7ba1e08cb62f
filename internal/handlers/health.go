package handlers

import (
	"net/http"
	"runtime"
	"time"

	"player-shell/internal/startup"
)

const (
	statusHealthy  = "healthy"
	statusDegraded = "degraded"
)

var startTime = time.Now()

// HealthResponse contains the health check response
type HealthResponse struct {
	Status          string `json:"status"`
	Version         string `json:"version"`
	Uptime          string `json:"uptime"`
	EngineConnected bool   `json:"engineConnected"`
	BoundPlaylistID *int64 `json:"boundPlaylistId,omitempty"`

	// System info
	GoVersion    string `json:"goVersion"`
	NumCPU       int    `json:"numCpu"`
	NumGoroutine int    `json:"numGoroutine"`
}

// HealthCheck reports service health. The service is degraded, not down,
// while the engine socket is disconnected: the API and persisted playlists
// keep working.
func (h *Handlers) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	snap := h.bridge.Snapshot()

	response := HealthResponse{
		Version:         startup.Version,
		Uptime:          time.Since(startTime).Round(time.Second).String(),
		EngineConnected: snap.Connected,
		GoVersion:       runtime.Version(),
		NumCPU:          runtime.NumCPU(),
		NumGoroutine:    runtime.NumGoroutine(),
	}

	if bound := h.playlists.Bound(); bound != nil {
		id := bound.ID
		response.BoundPlaylistID = &id
	}

	if snap.Connected {
		response.Status = statusHealthy
	} else {
		response.Status = statusDegraded
	}

	writeJSON(w, response)
}

// Version returns build information.
func (h *Handlers) Version(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, startup.GetBuildInfo())
}
