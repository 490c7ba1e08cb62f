package metrics

import "player-shell/internal/mpv"

// engineObserver implements mpv.Observer using the Prometheus metrics
// declared in this package.
type engineObserver struct{}

// NewEngineObserver creates an observer that records engine IPC metrics
// into the Prometheus counters and histograms declared in metrics.go.
func NewEngineObserver() mpv.Observer {
	return &engineObserver{}
}

func (o *engineObserver) ObserveCommand(command string, durationSeconds float64, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	EngineCommandsTotal.WithLabelValues(command, status).Inc()
	EngineCommandDuration.WithLabelValues(command).Observe(durationSeconds)
}

func (o *engineObserver) ObserveEvent(event string) {
	EngineEventsTotal.WithLabelValues(event).Inc()
}

func (o *engineObserver) ObserveConnected(connected bool) {
	if connected {
		EngineConnected.Set(1)
	} else {
		EngineConnected.Set(0)
	}
}
