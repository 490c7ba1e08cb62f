package player

import (
	"context"
	"sync"
	"time"

	"player-shell/internal/database"
	"player-shell/internal/logging"
	"player-shell/internal/metrics"
	"player-shell/internal/mpv"
)

// DefaultPollInterval is how often the bridge refreshes the snapshot when
// no engine event forces an earlier refresh.
const DefaultPollInterval = 1 * time.Second

// Snapshot is a point-in-time view of engine playback state. Fields that
// could not be read from the engine carry their documented zero defaults
// (paused, zero duration/position/volume, empty path) so consumers never
// see a partially missing state.
type Snapshot struct {
	Path          string                  `json:"path"`
	Filename      string                  `json:"filename"`
	Duration      float64                 `json:"duration"`
	Position      float64                 `json:"position"`
	Volume        float64                 `json:"volume"`
	IsPaused      bool                    `json:"isPaused"`
	Tracks        []mpv.Track             `json:"tracks"`
	QueuePosition int                     `json:"queuePosition"`
	QueueCount    int                     `json:"queueCount"`
	PlaylistID    *int64                  `json:"playlistId,omitempty"`
	CurrentEntry  *database.PlaylistEntry `json:"currentEntry,omitempty"`
	Connected     bool                    `json:"connected"`
	UpdatedAt     time.Time               `json:"updatedAt"`
}

// Engine is the slice of the command gateway the bridge reads state from
// and issues transport commands through.
type Engine interface {
	Play(ctx context.Context) error
	Pause(ctx context.Context) error
	Stop(ctx context.Context) error
	Seek(ctx context.Context, position float64) error
	SetVolume(ctx context.Context, volume float64) error
	GetDuration(ctx context.Context) (float64, error)
	GetPosition(ctx context.Context) (float64, error)
	GetVolume(ctx context.Context) (float64, error)
	IsPaused(ctx context.Context) (bool, error)
	GetPath(ctx context.Context) (string, error)
	GetFilename(ctx context.Context) (string, error)
	GetCurrentTracks(ctx context.Context) ([]mpv.Track, error)
	GetQueuePosition(ctx context.Context) (int, error)
	GetQueueCount(ctx context.Context) (int, error)
	Subscribe(kind mpv.EventKind, handler mpv.Handler) *mpv.Subscription
	Unsubscribe(sub *mpv.Subscription)
}

// Playlists is the slice of the reconciler the bridge derives the current
// playlist entry from.
type Playlists interface {
	Bound() *database.Playlist
}

// Bridge keeps a playback snapshot synchronized with the engine through a
// dual trigger: a fixed poll interval plus engine load/end events. Both
// triggers funnel into a single-slot signal so bursts collapse into one
// refresh.
//
// Transport commands go through the bridge so the snapshot can be updated
// optimistically; a refresh that raced an optimistic write is discarded
// rather than letting stale engine reads roll the snapshot backward.
type Bridge struct {
	engine    Engine
	playlists Playlists
	interval  time.Duration

	mu   sync.Mutex
	snap Snapshot
	gen  uint64

	subsMu sync.Mutex
	subs   map[int64]chan Snapshot
	nextID int64

	kick      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
	wg        sync.WaitGroup
	events    []*mpv.Subscription
}

// NewBridge creates a bridge polling at the given interval. A zero or
// negative interval selects DefaultPollInterval.
func NewBridge(engine Engine, playlists Playlists, interval time.Duration) *Bridge {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Bridge{
		engine:    engine,
		playlists: playlists,
		interval:  interval,
		snap:      Snapshot{IsPaused: true},
		subs:      make(map[int64]chan Snapshot),
		kick:      make(chan struct{}, 1),
		done:      make(chan struct{}),
	}
}

// Start subscribes to engine events and launches the refresh loop.
func (b *Bridge) Start(ctx context.Context) {
	for _, kind := range []mpv.EventKind{
		mpv.EventStartFile,
		mpv.EventFileLoaded,
		mpv.EventEndFile,
		mpv.EventShutdown,
	} {
		b.events = append(b.events, b.engine.Subscribe(kind, func(mpv.EventKind) {
			b.signal()
		}))
	}

	b.wg.Add(1)
	go b.loop(ctx)
	b.signal()
}

// Close stops the refresh loop and detaches event subscriptions. Subscriber
// channels are closed after the loop exits.
func (b *Bridge) Close() {
	b.closeOnce.Do(func() {
		for _, sub := range b.events {
			b.engine.Unsubscribe(sub)
		}
		close(b.done)
		b.wg.Wait()

		b.subsMu.Lock()
		for id, ch := range b.subs {
			close(ch)
			delete(b.subs, id)
		}
		b.subsMu.Unlock()
	})
}

// signal requests a refresh. A pending request absorbs this one.
func (b *Bridge) signal() {
	select {
	case b.kick <- struct{}{}:
	default:
		metrics.SnapshotRefreshesCoalesced.Inc()
	}
}

func (b *Bridge) loop(ctx context.Context) {
	defer b.wg.Done()

	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-b.done:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.refresh(ctx, "poll")
		case <-b.kick:
			b.refresh(ctx, "event")
		}
	}
}

// refresh reads every snapshot field from the engine, defaulting fields
// whose reads fail, and installs the result unless an optimistic write
// landed while the reads were in flight.
//
// The property reads are issued sequentially: a full refresh is a handful
// of sub-millisecond round-trips on a local socket once a second, so
// fanning the reads out would buy nothing measurable.
func (b *Bridge) refresh(ctx context.Context, trigger string) {
	start := time.Now()
	metrics.SnapshotRefreshesTotal.WithLabelValues(trigger).Inc()

	b.mu.Lock()
	startGen := b.gen
	b.mu.Unlock()

	next := Snapshot{IsPaused: true, UpdatedAt: time.Now()}

	if path, err := b.engine.GetPath(ctx); err == nil {
		next.Path = path
		next.Connected = true
	}
	if name, err := b.engine.GetFilename(ctx); err == nil {
		next.Filename = name
	}
	if d, err := b.engine.GetDuration(ctx); err == nil {
		next.Duration = d
	}
	if pos, err := b.engine.GetPosition(ctx); err == nil {
		next.Position = pos
	}
	if vol, err := b.engine.GetVolume(ctx); err == nil {
		next.Volume = vol
	}
	if paused, err := b.engine.IsPaused(ctx); err == nil {
		next.IsPaused = paused
		next.Connected = true
	}
	if tracks, err := b.engine.GetCurrentTracks(ctx); err == nil {
		next.Tracks = tracks
	}
	if count, err := b.engine.GetQueueCount(ctx); err == nil {
		next.QueueCount = count
	}
	if qpos, err := b.engine.GetQueuePosition(ctx); err == nil {
		next.QueuePosition = qpos
		next.CurrentEntry = b.entryAt(qpos)
	}
	if bound := b.playlists.Bound(); bound != nil {
		id := bound.ID
		next.PlaylistID = &id
	}

	b.mu.Lock()
	if b.gen != startGen {
		// A command updated the snapshot mid-refresh; its view is newer
		// than what was just read.
		b.mu.Unlock()
		logging.Debug("snapshot refresh (%s) discarded after concurrent command", trigger)
		return
	}
	b.snap = next
	b.mu.Unlock()

	metrics.SnapshotRefreshDuration.Observe(time.Since(start).Seconds())
	b.publish(next)
}

// entryAt maps an engine queue position to the bound playlist entry at that
// position, or nil when nothing is bound or the position is out of range.
func (b *Bridge) entryAt(pos int) *database.PlaylistEntry {
	bound := b.playlists.Bound()
	if bound == nil || pos < 0 || pos >= len(bound.Entries) {
		return nil
	}
	e := bound.Entries[pos]
	return &e
}

// Snapshot returns the most recent playback snapshot.
func (b *Bridge) Snapshot() Snapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.snap
}

// Subscribe registers a snapshot stream. Each subscriber holds a single
// slot; when a subscriber is slow the pending snapshot is replaced by the
// newer one. Cancel releases the subscription and closes the channel.
func (b *Bridge) Subscribe() (<-chan Snapshot, func()) {
	ch := make(chan Snapshot, 1)

	b.subsMu.Lock()
	id := b.nextID
	b.nextID++
	b.subs[id] = ch
	b.subsMu.Unlock()

	cancel := func() {
		b.subsMu.Lock()
		if c, ok := b.subs[id]; ok {
			delete(b.subs, id)
			close(c)
		}
		b.subsMu.Unlock()
	}
	return ch, cancel
}

func (b *Bridge) publish(snap Snapshot) {
	b.subsMu.Lock()
	defer b.subsMu.Unlock()
	for _, ch := range b.subs {
		select {
		case ch <- snap:
		default:
			// Latest wins: evict the stale pending snapshot.
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- snap:
			default:
			}
		}
	}
}

// Play resumes playback.
func (b *Bridge) Play(ctx context.Context) error {
	if err := b.engine.Play(ctx); err != nil {
		return err
	}
	b.optimistic(func(s *Snapshot) { s.IsPaused = false })
	return nil
}

// Pause pauses playback.
func (b *Bridge) Pause(ctx context.Context) error {
	if err := b.engine.Pause(ctx); err != nil {
		return err
	}
	b.optimistic(func(s *Snapshot) { s.IsPaused = true })
	return nil
}

// Stop halts playback and clears the loaded file.
func (b *Bridge) Stop(ctx context.Context) error {
	if err := b.engine.Stop(ctx); err != nil {
		return err
	}
	b.optimistic(func(s *Snapshot) {
		*s = Snapshot{IsPaused: true, Connected: s.Connected, UpdatedAt: s.UpdatedAt}
	})
	return nil
}

// Seek jumps to an absolute position in seconds.
func (b *Bridge) Seek(ctx context.Context, position float64) error {
	if err := b.engine.Seek(ctx, position); err != nil {
		return err
	}
	b.optimistic(func(s *Snapshot) { s.Position = position })
	return nil
}

// SetVolume sets the engine volume.
func (b *Bridge) SetVolume(ctx context.Context, volume float64) error {
	if err := b.engine.SetVolume(ctx, volume); err != nil {
		return err
	}
	b.optimistic(func(s *Snapshot) { s.Volume = volume })
	return nil
}

// optimistic applies a local mutation and bumps the generation so an
// in-flight refresh started before the command cannot overwrite it.
func (b *Bridge) optimistic(mutate func(*Snapshot)) {
	b.mu.Lock()
	mutate(&b.snap)
	b.snap.UpdatedAt = time.Now()
	b.gen++
	snap := b.snap
	b.mu.Unlock()

	b.publish(snap)
	b.signal()
}
