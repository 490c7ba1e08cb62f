package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_shell_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "player_shell_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "player_shell_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Engine (mpv IPC) metrics
var (
	EngineCommandsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_shell_engine_commands_total",
			Help: "Total number of commands issued to the playback engine",
		},
		[]string{"command", "status"},
	)

	EngineCommandDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "player_shell_engine_command_duration_seconds",
			Help:    "Engine command round-trip duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"command"},
	)

	EngineEventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_shell_engine_events_total",
			Help: "Total number of lifecycle events received from the playback engine",
		},
		[]string{"event"},
	)

	EngineConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "player_shell_engine_connected",
			Help: "Whether the engine IPC socket is currently connected (1) or not (0)",
		},
	)
)

// Snapshot refresh metrics
var (
	SnapshotRefreshesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_shell_snapshot_refreshes_total",
			Help: "Total number of player snapshot refreshes by trigger",
		},
		[]string{"trigger"},
	)

	SnapshotRefreshDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "player_shell_snapshot_refresh_duration_seconds",
			Help:    "Player snapshot refresh duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
	)

	SnapshotRefreshesCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "player_shell_snapshot_refreshes_coalesced_total",
			Help: "Refresh triggers merged into an already-pending refresh",
		},
	)
)

// Playlist reconciliation metrics
var (
	ReconcileOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_shell_reconcile_operations_total",
			Help: "Total number of playlist reconciliation operations",
		},
		[]string{"operation", "status"},
	)

	ReconcileRebuildLoads = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "player_shell_reconcile_rebuild_loads_total",
			Help: "Engine load commands issued during queue rebuilds",
		},
	)

	ReconcileDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "player_shell_reconcile_duration_seconds",
			Help:    "Playlist reconciliation duration in seconds",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

// Viewport metrics
var (
	ViewportPushesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_shell_viewport_pushes_total",
			Help: "Total number of surface geometry pushes to the engine",
		},
		[]string{"status"},
	)

	ViewportRectsCoalesced = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "player_shell_viewport_rects_coalesced_total",
			Help: "Layout rectangles dropped in favour of a newer one before pushing",
		},
	)

	ViewportActiveDrivers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "player_shell_viewport_active_drivers",
			Help: "Number of active viewport geometry drivers (never above 1)",
		},
	)

	ViewportRejectedActivations = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "player_shell_viewport_rejected_activations_total",
			Help: "Viewport driver activations rejected by the singleton guard",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_shell_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "player_shell_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"operation"},
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "player_shell_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Websocket metrics
var (
	WebsocketClientsConnected = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "player_shell_websocket_clients_connected",
			Help: "Number of UI clients connected to the snapshot stream",
		},
	)

	WebsocketMessagesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "player_shell_websocket_messages_dropped_total",
			Help: "Snapshot messages dropped because a client send buffer was full",
		},
	)
)

// Metadata extraction metrics
var (
	MetadataLookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "player_shell_metadata_lookups_total",
			Help: "Total number of media metadata lookups by outcome",
		},
		[]string{"outcome"},
	)
)
