package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"player-shell/internal/database"
	"player-shell/internal/handlers"
	"player-shell/internal/logging"
	"player-shell/internal/mediainfo"
	"player-shell/internal/metrics"
	"player-shell/internal/middleware"
	"player-shell/internal/mpv"
	"player-shell/internal/player"
	"player-shell/internal/playlist"
	"player-shell/internal/startup"
	"player-shell/internal/viewport"
)

func main() {
	startTime := time.Now()
	ctx := context.Background()

	// Load configuration
	config, err := startup.LoadConfig()
	if err != nil {
		startup.LogFatal("Configuration error: %v", err)
	}

	if config.MetricsEnabled {
		metrics.InitializeMetrics()
	}

	// Initialize database
	dbStart := time.Now()
	db, err := database.New(ctx, config.DatabasePath)
	if err != nil {
		startup.LogFatal("Failed to initialize database: %v", err)
	}
	defer db.Close()
	startup.LogDatabaseInit(time.Since(dbStart))

	// Refresh database pool metrics periodically
	go func() {
		ticker := time.NewTicker(time.Minute)
		for range ticker.C {
			db.UpdateDBMetrics()
		}
	}()

	// Connect to the playback engine
	startup.LogEngineInit(config.EngineSocket)
	gateway, err := mpv.Dial(config.EngineSocket, metrics.NewEngineObserver())
	if err != nil {
		startup.LogFatal("Failed to connect to playback engine: %v", err)
	}
	defer gateway.Close()
	startup.LogEngineConnected()

	// Metadata resolution with the database as cache
	resolver := mediainfo.NewResolver(db)

	// Playlist reconciliation against the engine queue
	manager := playlist.NewManager(gateway)

	// Playback state bridge: poll plus engine events
	bridge := player.NewBridge(gateway, manager, config.PollInterval)
	bridge.Start(ctx)
	defer bridge.Close()

	// Viewport geometry driver
	registry := viewport.NewRegistry()
	driver := registry.Activate(ctx, gateway)
	defer driver.Close()

	// Control API
	h := handlers.New(db, bridge, manager, gateway, resolver, driver)
	go h.Hub().Run()
	defer h.Hub().Stop()

	router := mux.NewRouter()
	h.RegisterRoutes(router)
	startup.LogHTTPRoutes(router)

	loggingConfig := middleware.DefaultLoggingConfig()
	loggingConfig.LogHealthChecks = config.LogHealthChecks
	handler := middleware.Logger(loggingConfig)(router)
	handler = middleware.Metrics(middleware.DefaultMetricsConfig())(handler)

	srv := &http.Server{
		Addr:         ":" + config.Port,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 0,
		IdleTimeout:  60 * time.Second,
	}

	var metricsSrv *http.Server
	if config.MetricsEnabled {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", promhttp.Handler())
		metricsSrv = &http.Server{
			Addr:         ":" + config.MetricsPort,
			Handler:      metricsMux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
		}
		go func() {
			if err := metricsSrv.ListenAndServe(); err != http.ErrServerClosed {
				logging.Error("Metrics server error: %v", err)
			}
		}()
	}

	go handleShutdown(srv, metricsSrv, bridge, driver, h.Hub())

	startup.LogServerStarted(startup.ServerConfig{
		Port:            config.Port,
		MetricsPort:     config.MetricsPort,
		MetricsEnabled:  config.MetricsEnabled,
		StartupDuration: time.Since(startTime),
	})
	if err := srv.ListenAndServe(); err != http.ErrServerClosed {
		startup.LogFatal("Server error: %v", err)
	}
}

func handleShutdown(srv, metricsSrv *http.Server, bridge *player.Bridge, driver *viewport.Driver, hub *handlers.Hub) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigChan

	startup.LogShutdownInitiated(sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	startup.LogShutdownStep("Stopping snapshot stream")
	hub.Stop()
	startup.LogShutdownStepComplete("Snapshot stream stopped")

	startup.LogShutdownStep("Stopping state bridge")
	bridge.Close()
	startup.LogShutdownStepComplete("State bridge stopped")

	startup.LogShutdownStep("Detaching viewport driver")
	driver.Close()
	startup.LogShutdownStepComplete("Viewport driver detached")

	startup.LogShutdownStep("Shutting down HTTP server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Server shutdown error: %v", err)
	} else {
		startup.LogShutdownStepComplete("HTTP server stopped")
	}

	if metricsSrv != nil {
		startup.LogShutdownStep("Shutting down metrics server")
		if err := metricsSrv.Shutdown(ctx); err != nil {
			logging.Warn("Metrics server shutdown error: %v", err)
		} else {
			startup.LogShutdownStepComplete("Metrics server stopped")
		}
	}

	startup.LogShutdownComplete()
}
