package player

import (
	"context"
	"sync"
	"testing"
	"time"

	"player-shell/internal/database"
	"player-shell/internal/mpv"
)

type fakeBridgeEngine struct {
	mu       sync.Mutex
	path     string
	filename string
	duration float64
	position float64
	volume   float64
	paused   bool
	tracks   []mpv.Track
	queuePos int
	queueLen int
	err      error
	commands []string

	// when non-nil, GetDuration blocks until the channel closes
	durationGate  chan struct{}
	durationCalls int

	// when true, Seek succeeds without updating the readable position,
	// simulating an engine that has not applied the seek yet
	lagSeek bool

	handlers map[mpv.EventKind]mpv.Handler
}

func newFakeBridgeEngine() *fakeBridgeEngine {
	return &fakeBridgeEngine{paused: false, handlers: map[mpv.EventKind]mpv.Handler{}}
}

func (f *fakeBridgeEngine) record(cmd string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, cmd)
	return f.err
}

func (f *fakeBridgeEngine) Play(context.Context) error  { return f.record("play") }
func (f *fakeBridgeEngine) Pause(context.Context) error { return f.record("pause") }
func (f *fakeBridgeEngine) Stop(context.Context) error  { return f.record("stop") }

func (f *fakeBridgeEngine) Seek(_ context.Context, pos float64) error {
	if err := f.record("seek"); err != nil {
		return err
	}
	f.mu.Lock()
	if !f.lagSeek {
		f.position = pos
	}
	f.mu.Unlock()
	return nil
}

func (f *fakeBridgeEngine) SetVolume(_ context.Context, vol float64) error {
	if err := f.record("volume"); err != nil {
		return err
	}
	f.mu.Lock()
	f.volume = vol
	f.mu.Unlock()
	return nil
}

func (f *fakeBridgeEngine) GetDuration(context.Context) (float64, error) {
	f.mu.Lock()
	f.durationCalls++
	gate := f.durationGate
	f.mu.Unlock()
	if gate != nil {
		<-gate
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.duration, f.err
}

func (f *fakeBridgeEngine) GetPosition(context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.position, f.err
}

func (f *fakeBridgeEngine) GetVolume(context.Context) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.volume, f.err
}

func (f *fakeBridgeEngine) IsPaused(context.Context) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.paused, f.err
}

func (f *fakeBridgeEngine) GetPath(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.path, f.err
}

func (f *fakeBridgeEngine) GetFilename(context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.filename, f.err
}

func (f *fakeBridgeEngine) GetCurrentTracks(context.Context) ([]mpv.Track, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tracks, f.err
}

func (f *fakeBridgeEngine) GetQueuePosition(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queuePos, f.err
}

func (f *fakeBridgeEngine) GetQueueCount(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.queueLen, f.err
}

func (f *fakeBridgeEngine) Subscribe(kind mpv.EventKind, h mpv.Handler) *mpv.Subscription {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.handlers[kind] = h
	return &mpv.Subscription{}
}

func (f *fakeBridgeEngine) Unsubscribe(*mpv.Subscription) {}

func (f *fakeBridgeEngine) fire(kind mpv.EventKind) {
	f.mu.Lock()
	h := f.handlers[kind]
	f.mu.Unlock()
	if h != nil {
		h(kind)
	}
}

type fakePlaylists struct {
	bound *database.Playlist
}

func (f *fakePlaylists) Bound() *database.Playlist { return f.bound }

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

// TestRefreshPopulates tests a full snapshot read including the bound-entry
// derivation.
func TestRefreshPopulates(t *testing.T) {
	t.Parallel()

	f := newFakeBridgeEngine()
	f.path = "/m/b.mp3"
	f.filename = "b.mp3"
	f.duration = 180.5
	f.position = 42.25
	f.volume = 80
	f.paused = false
	f.queuePos = 1
	f.queueLen = 3

	bound := &database.Playlist{ID: 1, Entries: []database.PlaylistEntry{
		{ID: 10, Path: "/m/a.mp3"},
		{ID: 11, Path: "/m/b.mp3"},
		{ID: 12, Path: "/m/c.mp3"},
	}}

	b := NewBridge(f, &fakePlaylists{bound: bound}, time.Hour)
	b.refresh(context.Background(), "poll")

	snap := b.Snapshot()
	if snap.Path != "/m/b.mp3" || snap.Filename != "b.mp3" {
		t.Errorf("path/filename = %q/%q", snap.Path, snap.Filename)
	}
	if snap.Duration != 180.5 || snap.Position != 42.25 || snap.Volume != 80 {
		t.Errorf("duration/position/volume = %v/%v/%v", snap.Duration, snap.Position, snap.Volume)
	}
	if snap.IsPaused {
		t.Error("IsPaused = true, want false")
	}
	if !snap.Connected {
		t.Error("Connected = false, want true")
	}
	if snap.QueuePosition != 1 || snap.QueueCount != 3 {
		t.Errorf("queue = %d/%d", snap.QueuePosition, snap.QueueCount)
	}
	if snap.CurrentEntry == nil || snap.CurrentEntry.ID != 11 {
		t.Errorf("CurrentEntry = %+v, want entry 11", snap.CurrentEntry)
	}
	if snap.PlaylistID == nil || *snap.PlaylistID != 1 {
		t.Errorf("PlaylistID = %v, want 1", snap.PlaylistID)
	}
}

// TestRefreshDefaults tests that a fully failing engine yields the
// documented defaults instead of an error.
func TestRefreshDefaults(t *testing.T) {
	t.Parallel()

	f := newFakeBridgeEngine()
	f.err = mpv.ErrEngineUnavailable

	b := NewBridge(f, &fakePlaylists{}, time.Hour)
	b.refresh(context.Background(), "poll")

	snap := b.Snapshot()
	if !snap.IsPaused {
		t.Error("IsPaused = false, want default true")
	}
	if snap.Duration != 0 || snap.Position != 0 || snap.Volume != 0 {
		t.Errorf("numeric defaults = %v/%v/%v, want zeros", snap.Duration, snap.Position, snap.Volume)
	}
	if snap.Path != "" || snap.Filename != "" {
		t.Errorf("path/filename = %q/%q, want empty", snap.Path, snap.Filename)
	}
	if len(snap.Tracks) != 0 {
		t.Errorf("tracks = %v, want none", snap.Tracks)
	}
	if snap.CurrentEntry != nil {
		t.Errorf("CurrentEntry = %+v, want nil", snap.CurrentEntry)
	}
	if snap.Connected {
		t.Error("Connected = true, want false")
	}
}

// TestOptimisticUpdate tests that transport commands update the snapshot
// without waiting for a refresh.
func TestOptimisticUpdate(t *testing.T) {
	t.Parallel()

	f := newFakeBridgeEngine()
	b := NewBridge(f, &fakePlaylists{}, time.Hour)
	ctx := context.Background()

	if err := b.Pause(ctx); err != nil {
		t.Fatalf("Pause() error: %v", err)
	}
	if !b.Snapshot().IsPaused {
		t.Error("snapshot not paused after Pause")
	}

	if err := b.Play(ctx); err != nil {
		t.Fatalf("Play() error: %v", err)
	}
	if b.Snapshot().IsPaused {
		t.Error("snapshot paused after Play")
	}

	if err := b.Seek(ctx, 93.5); err != nil {
		t.Fatalf("Seek() error: %v", err)
	}
	if got := b.Snapshot().Position; got != 93.5 {
		t.Errorf("position = %v, want 93.5", got)
	}

	if err := b.SetVolume(ctx, 55); err != nil {
		t.Fatalf("SetVolume() error: %v", err)
	}
	if got := b.Snapshot().Volume; got != 55 {
		t.Errorf("volume = %v, want 55", got)
	}
}

// TestOptimisticFailureLeavesSnapshot tests that a rejected command does
// not touch the snapshot.
func TestOptimisticFailureLeavesSnapshot(t *testing.T) {
	t.Parallel()

	f := newFakeBridgeEngine()
	f.err = &mpv.CommandRejectedError{Command: "seek", Reason: "no file loaded"}
	b := NewBridge(f, &fakePlaylists{}, time.Hour)

	if err := b.Seek(context.Background(), 10); err == nil {
		t.Fatal("Seek() succeeded against failing engine")
	}
	if got := b.Snapshot().Position; got != 0 {
		t.Errorf("position = %v after failed seek, want 0", got)
	}
}

// TestRefreshDiscardedAfterCommand tests the generation guard: a refresh
// that was already reading when a command landed must not install its stale
// view.
func TestRefreshDiscardedAfterCommand(t *testing.T) {
	t.Parallel()

	f := newFakeBridgeEngine()
	f.position = 10
	f.lagSeek = true
	gate := make(chan struct{})
	f.durationGate = gate

	b := NewBridge(f, &fakePlaylists{}, time.Hour)

	refreshDone := make(chan struct{})
	go func() {
		b.refresh(context.Background(), "poll")
		close(refreshDone)
	}()

	// Wait until the refresh is blocked inside the duration read, then
	// land a seek the engine has not applied yet.
	waitFor(t, func() bool {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.durationCalls > 0
	})
	if err := b.Seek(context.Background(), 200); err != nil {
		t.Fatalf("Seek() error: %v", err)
	}

	close(gate)
	<-refreshDone

	if got := b.Snapshot().Position; got != 200 {
		t.Errorf("position = %v, want optimistic 200", got)
	}
}

// TestEventTriggersRefresh tests the event half of the dual trigger.
func TestEventTriggersRefresh(t *testing.T) {
	t.Parallel()

	f := newFakeBridgeEngine()
	f.path = "/m/first.mp3"

	b := NewBridge(f, &fakePlaylists{}, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	b.Start(ctx)
	defer b.Close()

	waitFor(t, func() bool { return b.Snapshot().Path == "/m/first.mp3" })

	f.mu.Lock()
	f.path = "/m/second.mp3"
	f.mu.Unlock()
	f.fire(mpv.EventFileLoaded)

	waitFor(t, func() bool { return b.Snapshot().Path == "/m/second.mp3" })
}

// TestSubscribeLatestWins tests the single-slot subscriber channel.
func TestSubscribeLatestWins(t *testing.T) {
	t.Parallel()

	b := NewBridge(newFakeBridgeEngine(), &fakePlaylists{}, time.Hour)
	ch, cancel := b.Subscribe()
	defer cancel()

	b.publish(Snapshot{Position: 1})
	b.publish(Snapshot{Position: 2})
	b.publish(Snapshot{Position: 3})

	got := <-ch
	if got.Position != 3 {
		t.Errorf("received position %v, want latest 3", got.Position)
	}

	select {
	case extra := <-ch:
		t.Errorf("unexpected extra snapshot: %+v", extra)
	default:
	}
}

// TestSubscribeCancel tests that cancel closes the stream exactly once.
func TestSubscribeCancel(t *testing.T) {
	t.Parallel()

	b := NewBridge(newFakeBridgeEngine(), &fakePlaylists{}, time.Hour)
	ch, cancel := b.Subscribe()
	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Error("channel still open after cancel")
	}

	// Publishing after cancel must not panic.
	b.publish(Snapshot{})
}
