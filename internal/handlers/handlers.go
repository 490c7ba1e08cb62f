package handlers

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"player-shell/internal/database"
	"player-shell/internal/mediainfo"
	"player-shell/internal/mpv"
	"player-shell/internal/player"
	"player-shell/internal/playlist"
	"player-shell/internal/viewport"
)

// TrackEngine is the slice of the command gateway used by the track
// selection endpoints.
type TrackEngine interface {
	GetTracks(ctx context.Context) ([]mpv.Track, error)
	GetCurrentTracks(ctx context.Context) ([]mpv.Track, error)
	SetTracks(ctx context.Context, sel mpv.TrackSelection) error
}

type Handlers struct {
	db        *database.Database
	bridge    *player.Bridge
	playlists *playlist.Manager
	engine    TrackEngine
	resolver  *mediainfo.Resolver
	driver    *viewport.Driver
	hub       *Hub
}

func New(db *database.Database, bridge *player.Bridge, manager *playlist.Manager, engine TrackEngine, resolver *mediainfo.Resolver, driver *viewport.Driver) *Handlers {
	h := &Handlers{
		db:        db,
		bridge:    bridge,
		playlists: manager,
		engine:    engine,
		resolver:  resolver,
		driver:    driver,
		hub:       NewHub(bridge),
	}
	return h
}

// Hub returns the websocket hub so the caller can run and stop it.
func (h *Handlers) Hub() *Hub {
	return h.hub
}

// RegisterRoutes attaches every API route to the router.
func (h *Handlers) RegisterRoutes(r *mux.Router) {
	api := r.PathPrefix("/api").Subrouter()

	// Playlists
	api.HandleFunc("/playlists", h.ListPlaylists).Methods(http.MethodGet)
	api.HandleFunc("/playlists", h.CreatePlaylist).Methods(http.MethodPost)
	api.HandleFunc("/playlists/current-folder", h.GetCurrentFolder).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.GetPlaylist).Methods(http.MethodGet)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.UpdatePlaylist).Methods(http.MethodPatch)
	api.HandleFunc("/playlists/{id:[0-9]+}", h.DeletePlaylist).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{id:[0-9]+}/entries", h.AddEntry).Methods(http.MethodPost)
	api.HandleFunc("/playlists/{id:[0-9]+}/entries/{entryId:[0-9]+}", h.DeleteEntry).Methods(http.MethodDelete)
	api.HandleFunc("/playlists/{id:[0-9]+}/reorder", h.ReorderPlaylist).Methods(http.MethodPut)
	api.HandleFunc("/playlists/{id:[0-9]+}/play", h.PlayPlaylist).Methods(http.MethodPost)

	// Player transport and state
	api.HandleFunc("/player/state", h.PlayerState).Methods(http.MethodGet)
	api.HandleFunc("/player/play", h.Play).Methods(http.MethodPost)
	api.HandleFunc("/player/pause", h.Pause).Methods(http.MethodPost)
	api.HandleFunc("/player/stop", h.Stop).Methods(http.MethodPost)
	api.HandleFunc("/player/seek", h.Seek).Methods(http.MethodPost)
	api.HandleFunc("/player/volume", h.SetVolume).Methods(http.MethodPost)
	api.HandleFunc("/player/next", h.Next).Methods(http.MethodPost)
	api.HandleFunc("/player/previous", h.Previous).Methods(http.MethodPost)
	api.HandleFunc("/player/tracks", h.GetTracks).Methods(http.MethodGet)
	api.HandleFunc("/player/tracks", h.SetTracks).Methods(http.MethodPut)

	// Viewport geometry
	api.HandleFunc("/viewport/rect", h.PushViewportRect).Methods(http.MethodPost)

	// Snapshot stream
	api.HandleFunc("/ws", h.ServeWebsocket)

	// Health
	api.HandleFunc("/version", h.Version).Methods(http.MethodGet)

	r.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/livez", h.HealthCheck).Methods(http.MethodGet)
	r.HandleFunc("/readyz", h.HealthCheck).Methods(http.MethodGet)
}
