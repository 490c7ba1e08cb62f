package playlist

import (
	"context"
	"sort"
	"sync"
	"time"

	"player-shell/internal/database"
	"player-shell/internal/logging"
	"player-shell/internal/metrics"
	"player-shell/internal/mpv"
)

// Engine is the subset of the command gateway the reconciler drives.
type Engine interface {
	Load(ctx context.Context, path string, mode mpv.LoadMode, index int) error
	Stop(ctx context.Context) error
	ClearQueue(ctx context.Context) error
	GetQueuePosition(ctx context.Context) (int, error)
	SetQueuePosition(ctx context.Context, index int) error
}

// Manager owns the mapping between the durable, reorderable playlist and
// the engine's live linear queue.
//
// The bound playlist is stored as a deep copy with entries sorted ascending
// by sort index, so queue position i always addresses bound entry i. Later
// mutation of the caller's playlist cannot desynchronize this mapping.
//
// Engine operations inside one call are issued strictly in sequence: the
// queue is position-addressed and concurrent inserts would race on shifting
// positions. Across calls nothing is serialized; callers are expected to
// avoid overlapping mutating actions, and a failed Update is recovered by
// re-invoking it (clear-and-rebuild converges from any starting point).
type Manager struct {
	engine Engine

	mu    sync.Mutex
	bound *database.Playlist
}

// NewManager creates a Manager driving the given engine. Nothing is bound
// initially.
func NewManager(engine Engine) *Manager {
	return &Manager{engine: engine}
}

// Bind replaces the engine queue with the playlist's entries in ascending
// sort-index order and records the playlist as bound.
//
// Load failures are collected into a BindFailedError rather than rolled
// back: whatever loaded stays in the queue, and the playlist is bound so
// that a subsequent Update can converge the queue.
func (m *Manager) Bind(ctx context.Context, p *database.Playlist) error {
	start := time.Now()
	var err error
	defer func() { recordOperation("bind", start, err) }()

	entries := sortedBySortIndex(p.Entries)

	// An empty playlist still displaces whatever was playing.
	if len(entries) == 0 {
		if err = m.engine.Stop(ctx); err != nil {
			return err
		}
		m.mu.Lock()
		m.bound = copyPlaylist(p, entries)
		m.mu.Unlock()
		return nil
	}

	var failures []LoadFailure
	loaded := 0
	for _, e := range entries {
		mode := mpv.LoadAppend
		if loaded == 0 {
			// First successful load replaces whatever the engine had.
			mode = mpv.LoadReplace
		}
		if loadErr := m.engine.Load(ctx, e.Path, mode, 0); loadErr != nil {
			failures = append(failures, LoadFailure{Path: e.Path, Err: loadErr})
			continue
		}
		loaded++
		metrics.ReconcileRebuildLoads.Inc()
	}

	m.mu.Lock()
	m.bound = copyPlaylist(p, entries)
	m.mu.Unlock()

	logging.Debug("bound playlist %d with %d/%d entries loaded", p.ID, loaded, len(entries))

	if len(failures) > 0 {
		err = &BindFailedError{Failures: failures}
		return err
	}
	return nil
}

// Unbind stops playback and releases the binding.
func (m *Manager) Unbind(ctx context.Context) error {
	start := time.Now()
	var err error
	defer func() { recordOperation("unbind", start, err) }()

	m.mu.Lock()
	m.bound = nil
	m.mu.Unlock()

	err = m.engine.Stop(ctx)
	return err
}

// Bound returns a deep copy of the currently bound playlist, or nil when
// nothing is bound.
func (m *Manager) Bound() *database.Playlist {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.bound == nil {
		return nil
	}
	return copyPlaylist(m.bound, m.bound.Entries)
}

// LivePosition returns the engine's zero-based queue position.
func (m *Manager) LivePosition(ctx context.Context) (int, error) {
	if m.Bound() == nil {
		return 0, ErrNoPlaylistBound
	}
	return m.engine.GetQueuePosition(ctx)
}

// SetLivePosition jumps playback to the given queue position.
func (m *Manager) SetLivePosition(ctx context.Context, pos int) error {
	if m.Bound() == nil {
		return ErrNoPlaylistBound
	}
	return m.engine.SetQueuePosition(ctx, pos)
}

// Next advances to the following entry, wrapping from the last entry to the
// first.
func (m *Manager) Next(ctx context.Context) error {
	return m.step(ctx, "next", +1)
}

// Previous moves to the preceding entry, wrapping from the first entry to
// the last.
func (m *Manager) Previous(ctx context.Context) error {
	return m.step(ctx, "previous", -1)
}

func (m *Manager) step(ctx context.Context, op string, delta int) error {
	start := time.Now()
	var err error
	defer func() { recordOperation(op, start, err) }()

	m.mu.Lock()
	var count int
	if m.bound != nil {
		count = len(m.bound.Entries)
	}
	m.mu.Unlock()

	if count == 0 {
		err = ErrNoPlaylistBound
		return err
	}

	pos, err := m.engine.GetQueuePosition(ctx)
	if err != nil {
		return err
	}

	err = m.engine.SetQueuePosition(ctx, ((pos+delta)%count+count)%count)
	return err
}

// PlayEntry binds the playlist and starts playback at the given entry.
// Returns ErrCurrentEntryLost when the entry is not part of the playlist.
func (m *Manager) PlayEntry(ctx context.Context, p *database.Playlist, entryID int64) error {
	target := -1
	for i, e := range sortedBySortIndex(p.Entries) {
		if e.ID == entryID {
			target = i
			break
		}
	}
	if target < 0 {
		return ErrCurrentEntryLost
	}

	if err := m.Bind(ctx, p); err != nil {
		return err
	}
	return m.engine.SetQueuePosition(ctx, target)
}

// Update reconciles an in-place edit (reorder, insert, delete) of the bound
// playlist into the engine queue without disrupting the playing entry.
//
// The engine only offers replace/append/insert-at primitives against
// position-based addressing that shifts under every insert, so instead of a
// minimal diff the queue is rebuilt anchored on the one invariant that
// matters: the currently playing entry keeps playing. Entries ordered
// before it are pushed to the front in reverse order (front insertion
// displaces earlier pushes backward, so pushing in reverse yields ascending
// order) and entries after it are appended in order. Redundant reloads for
// large playlists are the accepted cost.
func (m *Manager) Update(ctx context.Context, newPlaylist *database.Playlist) error {
	start := time.Now()
	var err error
	defer func() { recordOperation("update", start, err) }()

	m.mu.Lock()
	bound := m.bound
	m.mu.Unlock()

	if bound == nil {
		err = ErrNoPlaylistBound
		return err
	}
	if newPlaylist.ID != bound.ID {
		err = ErrPlaylistMismatch
		return err
	}

	desired := sortedBySortIndex(newPlaylist.Entries)

	// Anchor on the playing entry: engine position indexes the previously
	// bound (sorted) entries, stable id re-finds it in the new order.
	livePos, err := m.engine.GetQueuePosition(ctx)
	if err != nil {
		return err
	}
	if livePos < 0 || livePos >= len(bound.Entries) {
		err = ErrCurrentEntryLost
		return err
	}
	playing := bound.Entries[livePos]

	target := -1
	for i, e := range desired {
		if e.ID == playing.ID {
			target = i
			break
		}
	}
	if target < 0 {
		// Checked before any engine mutation so the queue is left unchanged.
		err = ErrCurrentEntryLost
		return err
	}

	// Everything but the playing entry goes; the engine keeps the current
	// item across a queue clear.
	if err = m.engine.ClearQueue(ctx); err != nil {
		return err
	}

	for i := target - 1; i >= 0; i-- {
		if err = m.engine.Load(ctx, desired[i].Path, mpv.LoadInsertAt, 0); err != nil {
			return err
		}
		metrics.ReconcileRebuildLoads.Inc()
	}
	for _, e := range desired[target+1:] {
		if err = m.engine.Load(ctx, e.Path, mpv.LoadAppend, 0); err != nil {
			return err
		}
		metrics.ReconcileRebuildLoads.Inc()
	}

	// Swap the binding only after the whole rebuild succeeded.
	m.mu.Lock()
	m.bound = copyPlaylist(newPlaylist, desired)
	m.mu.Unlock()

	logging.Debug("reconciled playlist %d: %d entries, playing entry now at %d",
		newPlaylist.ID, len(desired), target)
	return nil
}

// sortedBySortIndex returns a copy of entries ordered ascending by sort
// index, with original insertion index as tie-break.
func sortedBySortIndex(entries []database.PlaylistEntry) []database.PlaylistEntry {
	sorted := make([]database.PlaylistEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].SortIndex != sorted[j].SortIndex {
			return sorted[i].SortIndex < sorted[j].SortIndex
		}
		return sorted[i].Index < sorted[j].Index
	})
	return sorted
}

// copyPlaylist deep-copies a playlist with the given (already sorted)
// entries so callers cannot mutate the binding from outside.
func copyPlaylist(p *database.Playlist, entries []database.PlaylistEntry) *database.Playlist {
	cp := *p
	cp.Entries = make([]database.PlaylistEntry, len(entries))
	copy(cp.Entries, entries)
	for i := range cp.Entries {
		if cp.Entries[i].MediaInfo != nil {
			mi := *cp.Entries[i].MediaInfo
			cp.Entries[i].MediaInfo = &mi
		}
	}
	return &cp
}

// recordOperation records reconciliation metrics.
func recordOperation(operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.ReconcileOperationsTotal.WithLabelValues(operation, status).Inc()
	metrics.ReconcileDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
