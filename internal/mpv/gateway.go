package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net"
	"sync"
	"time"

	"player-shell/internal/logging"
)

// Observer records gateway metrics. The implementation is provided by the
// metrics package to keep this package free of a metrics dependency.
type Observer interface {
	// ObserveCommand records round-trip duration and error status for one
	// issued engine command.
	ObserveCommand(command string, durationSeconds float64, err error)
	// ObserveEvent records one received lifecycle event.
	ObserveEvent(event string)
	// ObserveConnected records socket connectivity transitions.
	ObserveConnected(connected bool)
}

// nopObserver is used when no observer is injected (tests).
type nopObserver struct{}

func (nopObserver) ObserveCommand(string, float64, error) {}
func (nopObserver) ObserveEvent(string)                   {}
func (nopObserver) ObserveConnected(bool)                 {}

// request is the mpv JSON IPC request envelope.
type request struct {
	Command   []interface{} `json:"command"`
	RequestID int64         `json:"request_id"`
}

// response is the mpv JSON IPC response envelope. Responses carry a
// request_id; asynchronous events carry an event name instead.
type response struct {
	Error     string          `json:"error,omitempty"`
	Data      json.RawMessage `json:"data,omitempty"`
	RequestID int64           `json:"request_id,omitempty"`
	Event     string          `json:"event,omitempty"`
}

// Gateway is a typed asynchronous boundary to the playback engine over its
// JSON IPC socket. Every operation translates 1:1 to an engine call; no
// state is cached here. All failures surface to the caller; the gateway
// never retries.
type Gateway struct {
	conn net.Conn
	obs  Observer

	writeMu sync.Mutex // serializes request writes

	mu      sync.Mutex
	pending map[int64]chan response
	nextID  int64
	closed  bool

	events      *registry
	done        chan struct{}
	sawShutdown bool // only ever touched by readLoop
}

// Dial connects to the engine's IPC socket and starts the response reader.
// The engine must have been started with --input-ipc-server=<socketPath>.
func Dial(socketPath string, obs Observer) (*Gateway, error) {
	if obs == nil {
		obs = nopObserver{}
	}

	conn, err := net.Dial("unix", socketPath)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", ErrEngineUnavailable, socketPath, err)
	}

	g := &Gateway{
		conn:    conn,
		obs:     obs,
		pending: make(map[int64]chan response),
		events:  newRegistry(),
		done:    make(chan struct{}),
	}

	obs.ObserveConnected(true)
	go g.readLoop()

	logging.Info("Connected to engine IPC socket at %s", socketPath)
	return g, nil
}

// Subscribe registers a handler for an event kind. Handlers for a kind are
// invoked in registration order, once per received event occurrence.
func (g *Gateway) Subscribe(kind EventKind, h Handler) *Subscription {
	return g.events.add(kind, h)
}

// Unsubscribe removes a previously registered handler.
func (g *Gateway) Unsubscribe(sub *Subscription) {
	g.events.remove(sub)
}

// Close tears down the socket. Pending commands fail with
// ErrEngineUnavailable.
func (g *Gateway) Close() error {
	err := g.conn.Close()
	<-g.done
	return err
}

// issue sends one command and waits for the matching response. The context
// bounds the wait; the command itself runs to completion or failure in the
// engine regardless (no mid-flight cancellation).
func (g *Gateway) issue(ctx context.Context, cmd ...interface{}) (json.RawMessage, error) {
	name, _ := cmd[0].(string)
	start := time.Now()

	data, err := g.issueNamed(ctx, name, cmd)
	g.obs.ObserveCommand(name, time.Since(start).Seconds(), err)
	return data, err
}

func (g *Gateway) issueNamed(ctx context.Context, name string, cmd []interface{}) (json.RawMessage, error) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: socket closed", ErrEngineUnavailable)
	}
	g.nextID++
	id := g.nextID
	ch := make(chan response, 1)
	g.pending[id] = ch
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.pending, id)
		g.mu.Unlock()
	}()

	payload, err := json.Marshal(request{Command: cmd, RequestID: id})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %q: %w", name, err)
	}
	payload = append(payload, '\n')

	g.writeMu.Lock()
	_, err = g.conn.Write(payload)
	g.writeMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("%w: write %q: %v", ErrEngineUnavailable, name, err)
	}

	select {
	case resp := <-ch:
		if resp.Error != "" && resp.Error != "success" {
			return nil, &CommandRejectedError{Command: name, Reason: resp.Error}
		}
		return resp.Data, nil
	case <-g.done:
		return nil, fmt.Errorf("%w: engine closed the socket", ErrEngineUnavailable)
	case <-ctx.Done():
		return nil, fmt.Errorf("waiting for %q: %w", name, ctx.Err())
	}
}

// readLoop demultiplexes responses to pending commands and pushed events to
// subscribed handlers. It exits when the socket closes, failing everything
// pending and dispatching a final shutdown event.
func (g *Gateway) readLoop() {
	scanner := bufio.NewScanner(g.conn)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		var resp response
		if err := json.Unmarshal(scanner.Bytes(), &resp); err != nil {
			logging.Warn("Discarding malformed engine IPC message: %v", err)
			continue
		}

		if resp.Event != "" {
			if EventKind(resp.Event) == EventShutdown {
				g.sawShutdown = true
			}
			g.dispatch(EventKind(resp.Event))
			continue
		}

		g.mu.Lock()
		ch, ok := g.pending[resp.RequestID]
		g.mu.Unlock()
		if ok {
			ch <- resp
		}
	}

	if err := scanner.Err(); err != nil {
		logging.Warn("Engine IPC read error: %v", err)
	}

	g.mu.Lock()
	g.closed = true
	g.mu.Unlock()
	g.obs.ObserveConnected(false)

	close(g.done)

	// A vanished socket is a shutdown even when the engine never managed to
	// say so itself.
	if !g.sawShutdown {
		g.dispatch(EventShutdown)
	}
	logging.Info("Engine IPC socket closed")
}

func (g *Gateway) dispatch(kind EventKind) {
	g.obs.ObserveEvent(string(kind))
	for _, h := range g.events.snapshot(kind) {
		h(kind)
	}
}
