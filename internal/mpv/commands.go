package mpv

import (
	"context"
	"encoding/json"
	"fmt"
)

// LoadMode controls how a load command interacts with the engine queue.
// These map directly onto the engine's loadfile flags; the engine exposes
// no arbitrary-reorder primitive, which is why queue reconciliation is a
// rebuild (see the playlist package).
type LoadMode string

const (
	LoadReplace        LoadMode = "replace"
	LoadAppend         LoadMode = "append"
	LoadAppendPlay     LoadMode = "append-play"
	LoadInsertNext     LoadMode = "insert-next"
	LoadInsertNextPlay LoadMode = "insert-next-play"
	LoadInsertAt       LoadMode = "insert-at"
	LoadInsertAtPlay   LoadMode = "insert-at-play"
)

// requiresIndex reports whether the mode takes an explicit queue index.
func (m LoadMode) requiresIndex() bool {
	return m == LoadInsertAt || m == LoadInsertAtPlay
}

// Track describes one video/audio/subtitle stream of the loaded file.
type Track struct {
	ID       int64  `json:"id"`
	Type     string `json:"type"`
	Title    string `json:"title,omitempty"`
	Lang     string `json:"lang,omitempty"`
	Codec    string `json:"codec,omitempty"`
	Default  bool   `json:"default,omitempty"`
	Selected bool   `json:"selected,omitempty"`
}

// TrackSelection names the tracks to select. Nil fields are left unchanged.
type TrackSelection struct {
	AudioID    *int64 `json:"audioId,omitempty"`
	SubtitleID *int64 `json:"subtitleId,omitempty"`
	VideoID    *int64 `json:"videoId,omitempty"`
}

// Load loads a file into the engine queue. index is only consulted for the
// insert-at modes.
func (g *Gateway) Load(ctx context.Context, path string, mode LoadMode, index int) error {
	cmd := []interface{}{"loadfile", path, string(mode)}
	if mode.requiresIndex() {
		cmd = append(cmd, index)
	}
	_, err := g.issue(ctx, cmd...)
	return err
}

// Play resumes playback.
func (g *Gateway) Play(ctx context.Context) error {
	return g.setProperty(ctx, "pause", false)
}

// Pause pauses playback.
func (g *Gateway) Pause(ctx context.Context) error {
	return g.setProperty(ctx, "pause", true)
}

// Stop stops playback and clears the queue.
func (g *Gateway) Stop(ctx context.Context) error {
	_, err := g.issue(ctx, "stop")
	return err
}

// Seek seeks to an absolute position in seconds.
func (g *Gateway) Seek(ctx context.Context, position float64) error {
	_, err := g.issue(ctx, "seek", position, "absolute")
	return err
}

// GetDuration returns the duration of the loaded file in seconds.
func (g *Gateway) GetDuration(ctx context.Context) (float64, error) {
	return g.getFloat(ctx, "duration")
}

// GetPosition returns the playback position in seconds.
func (g *Gateway) GetPosition(ctx context.Context) (float64, error) {
	return g.getFloat(ctx, "time-pos")
}

// GetVolume returns the volume in the 0-100 range.
func (g *Gateway) GetVolume(ctx context.Context) (float64, error) {
	return g.getFloat(ctx, "volume")
}

// SetVolume sets the volume in the 0-100 range.
func (g *Gateway) SetVolume(ctx context.Context, volume float64) error {
	return g.setProperty(ctx, "volume", volume)
}

// IsPaused reports whether playback is paused.
func (g *Gateway) IsPaused(ctx context.Context) (bool, error) {
	var paused bool
	err := g.getProperty(ctx, "pause", &paused)
	return paused, err
}

// GetPath returns the absolute path of the loaded file, or an error when
// nothing is loaded.
func (g *Gateway) GetPath(ctx context.Context) (string, error) {
	var path string
	err := g.getProperty(ctx, "path", &path)
	return path, err
}

// GetFilename returns the bare filename of the loaded file.
func (g *Gateway) GetFilename(ctx context.Context) (string, error) {
	var name string
	err := g.getProperty(ctx, "filename", &name)
	return name, err
}

// GetTracks returns all track descriptors of the loaded file.
func (g *Gateway) GetTracks(ctx context.Context) ([]Track, error) {
	var tracks []Track
	err := g.getProperty(ctx, "track-list", &tracks)
	return tracks, err
}

// GetCurrentTracks returns only the currently selected tracks.
func (g *Gateway) GetCurrentTracks(ctx context.Context) ([]Track, error) {
	tracks, err := g.GetTracks(ctx)
	if err != nil {
		return nil, err
	}
	selected := tracks[:0:0]
	for _, t := range tracks {
		if t.Selected {
			selected = append(selected, t)
		}
	}
	return selected, nil
}

// SetTracks selects the given audio/subtitle/video tracks. Fields left nil
// are untouched. The first rejection aborts the remaining selections.
func (g *Gateway) SetTracks(ctx context.Context, sel TrackSelection) error {
	if sel.AudioID != nil {
		if err := g.setProperty(ctx, "aid", *sel.AudioID); err != nil {
			return err
		}
	}
	if sel.SubtitleID != nil {
		if err := g.setProperty(ctx, "sid", *sel.SubtitleID); err != nil {
			return err
		}
	}
	if sel.VideoID != nil {
		if err := g.setProperty(ctx, "vid", *sel.VideoID); err != nil {
			return err
		}
	}
	return nil
}

// ClearQueue removes every queue entry except the one currently playing.
func (g *Gateway) ClearQueue(ctx context.Context) error {
	_, err := g.issue(ctx, "playlist-clear")
	return err
}

// GetQueuePosition returns the zero-based live queue position.
func (g *Gateway) GetQueuePosition(ctx context.Context) (int, error) {
	var pos int
	err := g.getProperty(ctx, "playlist-pos", &pos)
	return pos, err
}

// SetQueuePosition jumps playback to the given zero-based queue position.
func (g *Gateway) SetQueuePosition(ctx context.Context, index int) error {
	return g.setProperty(ctx, "playlist-pos", index)
}

// GetQueueCount returns the number of entries in the live queue.
func (g *Gateway) GetQueueCount(ctx context.Context) (int, error) {
	var count int
	err := g.getProperty(ctx, "playlist-count", &count)
	return count, err
}

// SetSurfacePosition moves the native overlay surface. Coordinates are
// integer device pixels; the shell-side script consumes the message.
func (g *Gateway) SetSurfacePosition(ctx context.Context, x, y int) error {
	_, err := g.issue(ctx, "script-message", "surface/pos", x, y)
	return err
}

// SetSurfaceSize resizes the native overlay surface in integer device
// pixels.
func (g *Gateway) SetSurfaceSize(ctx context.Context, width, height int) error {
	_, err := g.issue(ctx, "script-message", "surface/size", width, height)
	return err
}

func (g *Gateway) getProperty(ctx context.Context, name string, out interface{}) error {
	data, err := g.issue(ctx, "get_property", name)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode property %q: %w", name, err)
	}
	return nil
}

func (g *Gateway) getFloat(ctx context.Context, name string) (float64, error) {
	var v float64
	err := g.getProperty(ctx, name, &v)
	return v, err
}

func (g *Gateway) setProperty(ctx context.Context, name string, value interface{}) error {
	_, err := g.issue(ctx, "set_property", name, value)
	return err
}
