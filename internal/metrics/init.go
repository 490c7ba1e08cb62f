package metrics

// InitializeMetrics pre-populates all expected label combinations so that
// every metric is exported from the first Prometheus scrape.
// Call this once at startup after metric registration.
func InitializeMetrics() {
	// --- Engine commands ---
	engineCommands := []string{
		"loadfile", "get_property", "set_property", "seek", "stop",
		"playlist-clear", "script-message",
	}
	for _, cmd := range engineCommands {
		EngineCommandsTotal.WithLabelValues(cmd, "success")
		EngineCommandsTotal.WithLabelValues(cmd, "error")
		EngineCommandDuration.WithLabelValues(cmd)
	}

	// --- Engine lifecycle events ---
	for _, ev := range []string{"start-file", "file-loaded", "end-file", "shutdown"} {
		EngineEventsTotal.WithLabelValues(ev)
	}
	EngineConnected.Set(0)

	// --- Snapshot refresh triggers ---
	for _, trigger := range []string{"poll", "event"} {
		SnapshotRefreshesTotal.WithLabelValues(trigger)
	}

	// --- Reconciliation operations ---
	reconcileOps := []string{"bind", "unbind", "update", "next", "previous"}
	for _, op := range reconcileOps {
		ReconcileOperationsTotal.WithLabelValues(op, "success")
		ReconcileOperationsTotal.WithLabelValues(op, "error")
		ReconcileDuration.WithLabelValues(op)
	}

	// --- Viewport pushes ---
	ViewportPushesTotal.WithLabelValues("success")
	ViewportPushesTotal.WithLabelValues("error")
	ViewportActiveDrivers.Set(0)

	// --- Database operations ---
	dbOps := []string{
		"create_playlist", "get_playlist", "update_playlist",
		"delete_playlist", "list_playlists", "create_entry",
		"delete_entry", "update_entry_sort",
		"get_media_info", "upsert_media_info",
	}
	for _, op := range dbOps {
		DBQueryTotal.WithLabelValues(op, "success")
		DBQueryTotal.WithLabelValues(op, "error")
		DBQueryDuration.WithLabelValues(op)
	}

	// --- Metadata lookup outcomes ---
	for _, outcome := range []string{"cache", "extracted", "fallback", "video"} {
		MetadataLookupsTotal.WithLabelValues(outcome)
	}
}
