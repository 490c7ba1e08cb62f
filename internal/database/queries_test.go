package database

import (
	"context"
	"path/filepath"
	"testing"
)

// newTestDB creates a Database backed by a temp-dir sqlite file.
func newTestDB(t *testing.T) *Database {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "playlists.db")
	d, err := New(context.Background(), dbPath)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	t.Cleanup(func() {
		if err := d.Close(); err != nil {
			t.Errorf("Close() error: %v", err)
		}
	})
	return d
}

// TestCreateAndGetPlaylist tests playlist creation and retrieval.
func TestCreateAndGetPlaylist(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	ctx := context.Background()

	p, err := d.CreatePlaylist(ctx, "Road Trip")
	if err != nil {
		t.Fatalf("CreatePlaylist() error: %v", err)
	}
	if p.Name != "Road Trip" {
		t.Errorf("Name = %q, want %q", p.Name, "Road Trip")
	}
	if p.Index != 0 {
		t.Errorf("Index = %d, want 0", p.Index)
	}
	if len(p.Entries) != 0 {
		t.Errorf("Entries = %d, want 0", len(p.Entries))
	}

	// Second playlist appends at the end of the library.
	p2, err := d.CreatePlaylist(ctx, "")
	if err != nil {
		t.Fatalf("CreatePlaylist() error: %v", err)
	}
	if p2.Name != "New Playlist" {
		t.Errorf("default name = %q, want %q", p2.Name, "New Playlist")
	}
	if p2.Index != 1 {
		t.Errorf("second playlist Index = %d, want 1", p2.Index)
	}

	got, err := d.GetPlaylistByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPlaylistByID() error: %v", err)
	}
	if got == nil || got.Name != "Road Trip" {
		t.Errorf("GetPlaylistByID() = %+v, want Road Trip", got)
	}
}

// TestGetPlaylistNotFound tests the nil, nil contract for missing playlists.
func TestGetPlaylistNotFound(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)

	got, err := d.GetPlaylistByID(context.Background(), 9999)
	if err != nil {
		t.Fatalf("GetPlaylistByID() error: %v", err)
	}
	if got != nil {
		t.Errorf("GetPlaylistByID(missing) = %+v, want nil", got)
	}
}

// TestEntryOrdering tests that entries come back sorted by sort index, not
// insertion order.
func TestEntryOrdering(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	ctx := context.Background()

	p, err := d.CreatePlaylist(ctx, "ordering")
	if err != nil {
		t.Fatalf("CreatePlaylist() error: %v", err)
	}

	paths := []string{"/m/a.mp3", "/m/b.mp3", "/m/c.mp3"}
	ids := make([]int64, 0, len(paths))
	for i, path := range paths {
		e, err := d.CreatePlaylistEntry(ctx, path, p.ID)
		if err != nil {
			t.Fatalf("CreatePlaylistEntry(%q) error: %v", path, err)
		}
		if e.Index != i || e.SortIndex != i {
			t.Errorf("entry %q Index/SortIndex = %d/%d, want %d/%d", path, e.Index, e.SortIndex, i, i)
		}
		ids = append(ids, e.ID)
	}

	// Reorder to c, a, b.
	reorder := map[int64]int{ids[2]: 0, ids[0]: 1, ids[1]: 2}
	for id, sortIndex := range reorder {
		if err := d.UpdatePlaylistEntrySortIndex(ctx, id, sortIndex); err != nil {
			t.Fatalf("UpdatePlaylistEntrySortIndex() error: %v", err)
		}
	}

	got, err := d.GetPlaylistByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPlaylistByID() error: %v", err)
	}

	wantPaths := []string{"/m/c.mp3", "/m/a.mp3", "/m/b.mp3"}
	if len(got.Entries) != len(wantPaths) {
		t.Fatalf("got %d entries, want %d", len(got.Entries), len(wantPaths))
	}
	for i, e := range got.Entries {
		if e.Path != wantPaths[i] {
			t.Errorf("entry[%d].Path = %q, want %q", i, e.Path, wantPaths[i])
		}
	}

	// Insertion index is untouched by reorder.
	for _, e := range got.Entries {
		switch e.Path {
		case "/m/a.mp3":
			if e.Index != 0 {
				t.Errorf("a.mp3 Index = %d, want 0", e.Index)
			}
		case "/m/c.mp3":
			if e.Index != 2 {
				t.Errorf("c.mp3 Index = %d, want 2", e.Index)
			}
		}
	}
}

// TestDeleteCascades tests that deleting a playlist removes its entries.
func TestDeleteCascades(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	ctx := context.Background()

	p, err := d.CreatePlaylist(ctx, "doomed")
	if err != nil {
		t.Fatalf("CreatePlaylist() error: %v", err)
	}
	e, err := d.CreatePlaylistEntry(ctx, "/m/x.mp3", p.ID)
	if err != nil {
		t.Fatalf("CreatePlaylistEntry() error: %v", err)
	}

	if err := d.DeletePlaylistByID(ctx, p.ID); err != nil {
		t.Fatalf("DeletePlaylistByID() error: %v", err)
	}

	var count int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM playlist_entries WHERE id = ?`, e.ID).Scan(&count); err != nil {
		t.Fatalf("count query error: %v", err)
	}
	if count != 0 {
		t.Errorf("entry survived playlist deletion")
	}
}

// TestListPlaylists tests library ordering.
func TestListPlaylists(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := d.CreatePlaylist(ctx, name); err != nil {
			t.Fatalf("CreatePlaylist(%q) error: %v", name, err)
		}
	}

	playlists, err := d.ListPlaylists(ctx)
	if err != nil {
		t.Fatalf("ListPlaylists() error: %v", err)
	}
	if len(playlists) != 3 {
		t.Fatalf("got %d playlists, want 3", len(playlists))
	}
	for i, want := range []string{"first", "second", "third"} {
		if playlists[i].Name != want {
			t.Errorf("playlists[%d].Name = %q, want %q", i, playlists[i].Name, want)
		}
	}
}

// TestUpdatePlaylist tests rename and reindex patches.
func TestUpdatePlaylist(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	ctx := context.Background()

	p, err := d.CreatePlaylist(ctx, "old name")
	if err != nil {
		t.Fatalf("CreatePlaylist() error: %v", err)
	}

	newName := "new name"
	newIndex := 5
	got, err := d.UpdatePlaylistByID(ctx, p.ID, PlaylistPatch{Name: &newName, Index: &newIndex})
	if err != nil {
		t.Fatalf("UpdatePlaylistByID() error: %v", err)
	}
	if got.Name != newName || got.Index != newIndex {
		t.Errorf("updated playlist = %q/%d, want %q/%d", got.Name, got.Index, newName, newIndex)
	}

	// Patch with nil fields changes nothing.
	got, err = d.UpdatePlaylistByID(ctx, p.ID, PlaylistPatch{})
	if err != nil {
		t.Fatalf("UpdatePlaylistByID() error: %v", err)
	}
	if got.Name != newName || got.Index != newIndex {
		t.Errorf("empty patch changed playlist to %q/%d", got.Name, got.Index)
	}
}

// TestMediaInfoCache tests the cache-through metadata store.
func TestMediaInfoCache(t *testing.T) {
	t.Parallel()

	d := newTestDB(t)
	ctx := context.Background()

	got, err := d.GetMediaInfo(ctx, "/m/unknown.mp3")
	if err != nil {
		t.Fatalf("GetMediaInfo() error: %v", err)
	}
	if got != nil {
		t.Errorf("GetMediaInfo(miss) = %+v, want nil", got)
	}

	in := &MediaInfo{
		Path:     "/m/song.mp3",
		Title:    "A Song",
		Artist:   "The Band",
		Album:    "The Album",
		Year:     2003,
		Track:    7,
		Duration: 241.5,
	}
	if err := d.UpsertMediaInfo(ctx, in); err != nil {
		t.Fatalf("UpsertMediaInfo() error: %v", err)
	}

	got, err = d.GetMediaInfo(ctx, in.Path)
	if err != nil {
		t.Fatalf("GetMediaInfo() error: %v", err)
	}
	if got == nil {
		t.Fatal("GetMediaInfo(hit) = nil")
	}
	if got.Title != in.Title || got.Artist != in.Artist || got.Track != in.Track {
		t.Errorf("GetMediaInfo() = %+v, want %+v", got, in)
	}

	// Upsert replaces.
	in.Title = "Renamed"
	if err := d.UpsertMediaInfo(ctx, in); err != nil {
		t.Fatalf("UpsertMediaInfo() error: %v", err)
	}
	got, err = d.GetMediaInfo(ctx, in.Path)
	if err != nil {
		t.Fatalf("GetMediaInfo() error: %v", err)
	}
	if got.Title != "Renamed" {
		t.Errorf("Title after upsert = %q, want %q", got.Title, "Renamed")
	}

	// Entries joined with cached metadata expose it.
	p, err := d.CreatePlaylist(ctx, "joined")
	if err != nil {
		t.Fatalf("CreatePlaylist() error: %v", err)
	}
	if _, err := d.CreatePlaylistEntry(ctx, in.Path, p.ID); err != nil {
		t.Fatalf("CreatePlaylistEntry() error: %v", err)
	}
	p, err = d.GetPlaylistByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetPlaylistByID() error: %v", err)
	}
	if p.Entries[0].MediaInfo == nil || p.Entries[0].MediaInfo.Title != "Renamed" {
		t.Errorf("joined MediaInfo = %+v, want title Renamed", p.Entries[0].MediaInfo)
	}
}
