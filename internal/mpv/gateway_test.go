package mpv

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// fakeEngine is a scripted IPC peer listening on a unix socket. Property
// reads are served from the props map; unknown properties are rejected the
// way the engine rejects them.
type fakeEngine struct {
	t        *testing.T
	listener net.Listener

	mu       sync.Mutex
	conn     net.Conn
	props    map[string]interface{}
	commands [][]interface{}
}

func newFakeEngine(t *testing.T) *fakeEngine {
	t.Helper()

	socketPath := filepath.Join(t.TempDir(), "mpv.sock")
	l, err := net.Listen("unix", socketPath)
	if err != nil {
		t.Fatalf("failed to listen on %s: %v", socketPath, err)
	}

	f := &fakeEngine{
		t:        t,
		listener: l,
		props:    make(map[string]interface{}),
	}
	go f.serve()
	t.Cleanup(func() { l.Close() })

	return f
}

func (f *fakeEngine) addr() string {
	return f.listener.Addr().String()
}

func (f *fakeEngine) setProp(name string, value interface{}) {
	f.mu.Lock()
	f.props[name] = value
	f.mu.Unlock()
}

func (f *fakeEngine) sentCommands() [][]interface{} {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]interface{}, len(f.commands))
	copy(out, f.commands)
	return out
}

// pushEvent writes an asynchronous event line to the client.
func (f *fakeEngine) pushEvent(event string) {
	// The client's Dial can return before serve() has accepted the
	// connection, so wait for it.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		conn := f.conn
		f.mu.Unlock()
		if conn != nil {
			fmt.Fprintf(conn, `{"event":%q}`+"\n", event)
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	f.t.Fatalf("pushEvent(%q) before client connected", event)
}

func (f *fakeEngine) closeConn() {
	// The client's Dial can return before serve() has accepted the
	// connection, so wait for it rather than silently closing nothing.
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		f.mu.Lock()
		conn := f.conn
		f.mu.Unlock()
		if conn != nil {
			conn.Close()
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	f.t.Fatal("closeConn() before client connected")
}

func (f *fakeEngine) serve() {
	conn, err := f.listener.Accept()
	if err != nil {
		return
	}
	f.mu.Lock()
	f.conn = conn
	f.mu.Unlock()

	scanner := bufio.NewScanner(conn)
	for scanner.Scan() {
		var req struct {
			Command   []interface{} `json:"command"`
			RequestID int64         `json:"request_id"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &req); err != nil {
			f.t.Errorf("fake engine got malformed request: %v", err)
			continue
		}

		f.mu.Lock()
		f.commands = append(f.commands, req.Command)
		f.mu.Unlock()

		resp := f.respond(req.Command)
		resp["request_id"] = req.RequestID
		payload, _ := json.Marshal(resp)
		conn.Write(append(payload, '\n'))
	}
}

func (f *fakeEngine) respond(cmd []interface{}) map[string]interface{} {
	name, _ := cmd[0].(string)
	switch name {
	case "get_property":
		prop, _ := cmd[1].(string)
		f.mu.Lock()
		value, ok := f.props[prop]
		f.mu.Unlock()
		if !ok {
			return map[string]interface{}{"error": "property unavailable"}
		}
		return map[string]interface{}{"error": "success", "data": value}
	case "set_property":
		prop, _ := cmd[1].(string)
		f.mu.Lock()
		f.props[prop] = cmd[2]
		f.mu.Unlock()
		return map[string]interface{}{"error": "success"}
	default:
		return map[string]interface{}{"error": "success"}
	}
}

func dialFake(t *testing.T, f *fakeEngine) *Gateway {
	t.Helper()

	g, err := Dial(f.addr(), nil)
	if err != nil {
		t.Fatalf("Dial() error: %v", err)
	}
	t.Cleanup(func() { g.Close() })
	return g
}

// TestGetProperties tests typed getters against scripted values.
func TestGetProperties(t *testing.T) {
	t.Parallel()

	f := newFakeEngine(t)
	f.setProp("duration", 123.5)
	f.setProp("volume", 80.0)
	f.setProp("pause", true)
	f.setProp("path", "/media/a.mp3")
	f.setProp("playlist-pos", 2)

	g := dialFake(t, f)
	ctx := context.Background()

	if d, err := g.GetDuration(ctx); err != nil || d != 123.5 {
		t.Errorf("GetDuration() = %v, %v, want 123.5", d, err)
	}
	if v, err := g.GetVolume(ctx); err != nil || v != 80 {
		t.Errorf("GetVolume() = %v, %v, want 80", v, err)
	}
	if p, err := g.IsPaused(ctx); err != nil || !p {
		t.Errorf("IsPaused() = %v, %v, want true", p, err)
	}
	if p, err := g.GetPath(ctx); err != nil || p != "/media/a.mp3" {
		t.Errorf("GetPath() = %q, %v", p, err)
	}
	if pos, err := g.GetQueuePosition(ctx); err != nil || pos != 2 {
		t.Errorf("GetQueuePosition() = %d, %v, want 2", pos, err)
	}
}

// TestCommandRejected tests that engine error payloads surface as
// CommandRejectedError.
func TestCommandRejected(t *testing.T) {
	t.Parallel()

	f := newFakeEngine(t)
	g := dialFake(t, f)

	// "time-pos" is not scripted, so the fake rejects it.
	_, err := g.GetPosition(context.Background())
	if !IsRejected(err) {
		t.Fatalf("GetPosition() error = %v, want CommandRejectedError", err)
	}
	var rejected *CommandRejectedError
	if errors.As(err, &rejected) && rejected.Reason != "property unavailable" {
		t.Errorf("Reason = %q, want %q", rejected.Reason, "property unavailable")
	}
}

// TestEngineUnavailableAfterClose tests that commands fail with
// ErrEngineUnavailable once the engine side closes the socket.
func TestEngineUnavailableAfterClose(t *testing.T) {
	t.Parallel()

	f := newFakeEngine(t)
	g := dialFake(t, f)

	f.closeConn()
	<-g.done

	_, err := g.GetDuration(context.Background())
	if !errors.Is(err, ErrEngineUnavailable) {
		t.Errorf("error after close = %v, want ErrEngineUnavailable", err)
	}
}

// TestLoadModes tests loadfile flag and index encoding.
func TestLoadModes(t *testing.T) {
	t.Parallel()

	f := newFakeEngine(t)
	g := dialFake(t, f)
	ctx := context.Background()

	if err := g.Load(ctx, "/m/a.mp3", LoadReplace, 0); err != nil {
		t.Fatalf("Load(replace) error: %v", err)
	}
	if err := g.Load(ctx, "/m/b.mp3", LoadInsertAt, 3); err != nil {
		t.Fatalf("Load(insert-at) error: %v", err)
	}

	cmds := f.sentCommands()
	if len(cmds) != 2 {
		t.Fatalf("got %d commands, want 2", len(cmds))
	}
	if len(cmds[0]) != 3 || cmds[0][2] != "replace" {
		t.Errorf("replace command = %v", cmds[0])
	}
	// insert-at carries the queue index as a fourth element.
	if len(cmds[1]) != 4 || cmds[1][2] != "insert-at" || cmds[1][3] != float64(3) {
		t.Errorf("insert-at command = %v", cmds[1])
	}
}

// TestEventDispatchOrder tests handler registration-order invocation and
// unsubscribe semantics.
func TestEventDispatchOrder(t *testing.T) {
	t.Parallel()

	f := newFakeEngine(t)
	g := dialFake(t, f)

	var mu sync.Mutex
	var calls []string
	record := func(name string) Handler {
		return func(kind EventKind) {
			mu.Lock()
			calls = append(calls, name)
			mu.Unlock()
		}
	}

	first := g.Subscribe(EventFileLoaded, record("first"))
	g.Subscribe(EventFileLoaded, record("second"))
	g.Subscribe(EventEndFile, record("other-kind"))

	f.pushEvent("file-loaded")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 2
	})

	mu.Lock()
	if calls[0] != "first" || calls[1] != "second" {
		t.Errorf("dispatch order = %v, want [first second]", calls)
	}
	calls = nil
	mu.Unlock()

	// After unsubscribe only the second handler fires.
	g.Unsubscribe(first)
	f.pushEvent("file-loaded")
	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(calls) == 1
	})

	mu.Lock()
	if calls[0] != "second" {
		t.Errorf("post-unsubscribe dispatch = %v, want [second]", calls)
	}
	mu.Unlock()
}

// TestShutdownSynthesized tests that a vanished socket produces exactly one
// shutdown event.
func TestShutdownSynthesized(t *testing.T) {
	t.Parallel()

	f := newFakeEngine(t)
	g := dialFake(t, f)

	var mu sync.Mutex
	shutdowns := 0
	g.Subscribe(EventShutdown, func(EventKind) {
		mu.Lock()
		shutdowns++
		mu.Unlock()
	})

	f.closeConn()
	<-g.done

	waitFor(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return shutdowns == 1
	})
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not reached before deadline")
}
