package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"player-shell/internal/logging"
)

// CreatePlaylist creates a new playlist appended at the end of the library
// ordering and returns it with an empty entry list.
func (d *Database) CreatePlaylist(ctx context.Context, name string) (*Playlist, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_playlist", start, err) }()

	if name == "" {
		name = "New Playlist"
	}

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	// New playlists go at the end of the library.
	var count int
	if err = d.db.QueryRowContext(queryCtx, `SELECT COUNT(*) FROM playlists`).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count playlists: %w", err)
	}

	res, err := d.db.ExecContext(queryCtx,
		`INSERT INTO playlists (name, idx) VALUES (?, ?)`, name, count)
	if err != nil {
		return nil, fmt.Errorf("failed to create playlist: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read playlist id: %w", err)
	}

	logging.Debug("created playlist %d (%q) at index %d", id, name, count)
	return d.GetPlaylistByID(ctx, id)
}

// GetPlaylistByID returns a playlist with its entries ordered ascending by
// sort index and media info attached where cached. Returns (nil, nil) when
// no playlist with the given id exists.
func (d *Database) GetPlaylistByID(ctx context.Context, id int64) (*Playlist, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_playlist", start, err) }()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	p := &Playlist{ID: id}
	var createdAt int64
	err = d.db.QueryRowContext(queryCtx,
		`SELECT name, idx, created_at FROM playlists WHERE id = ?`, id).
		Scan(&p.Name, &p.Index, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get playlist %d: %w", id, err)
	}
	p.CreatedAt = time.Unix(createdAt, 0)

	p.Entries, err = d.getEntries(queryCtx, id)
	if err != nil {
		return nil, err
	}

	return p, nil
}

// getEntries loads a playlist's entries pre-sorted by sort index, with the
// original insertion index as tie-break.
func (d *Database) getEntries(ctx context.Context, playlistID int64) ([]PlaylistEntry, error) {
	rows, err := d.db.QueryContext(ctx, `
		SELECT e.id, e.playlist_id, e.path, e.idx, e.sort_index,
		       m.title, m.artist, m.album, m.year, m.track, m.total_tracks,
		       m.disc, m.total_discs, m.genre, m.duration, m.is_video
		FROM playlist_entries e
		LEFT JOIN media_info m ON m.path = e.path
		WHERE e.playlist_id = ?
		ORDER BY e.sort_index ASC, e.idx ASC`, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to query entries for playlist %d: %w", playlistID, err)
	}
	defer rows.Close()

	entries := []PlaylistEntry{}
	for rows.Next() {
		var e PlaylistEntry
		var (
			title                    sql.NullString
			artist, album, genre     sql.NullString
			year, track, totalTracks sql.NullInt64
			disc, totalDiscs         sql.NullInt64
			duration                 sql.NullFloat64
			isVideo                  sql.NullBool
		)

		if err := rows.Scan(&e.ID, &e.PlaylistID, &e.Path, &e.Index, &e.SortIndex,
			&title, &artist, &album, &year, &track, &totalTracks,
			&disc, &totalDiscs, &genre, &duration, &isVideo); err != nil {
			return nil, fmt.Errorf("failed to scan playlist entry: %w", err)
		}

		if title.Valid {
			e.MediaInfo = &MediaInfo{
				Path:        e.Path,
				Title:       title.String,
				Artist:      artist.String,
				Album:       album.String,
				Year:        int(year.Int64),
				Track:       int(track.Int64),
				TotalTracks: int(totalTracks.Int64),
				Disc:        int(disc.Int64),
				TotalDiscs:  int(totalDiscs.Int64),
				Genre:       genre.String,
				Duration:    duration.Float64,
				IsVideo:     isVideo.Bool,
			}
		}

		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// UpdatePlaylistByID applies a partial update (rename, library reorder) and
// returns the updated playlist. Returns (nil, nil) when the playlist does
// not exist.
func (d *Database) UpdatePlaylistByID(ctx context.Context, id int64, patch PlaylistPatch) (*Playlist, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_playlist", start, err) }()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if patch.Name != nil {
		if _, err = d.db.ExecContext(queryCtx,
			`UPDATE playlists SET name = ? WHERE id = ?`, *patch.Name, id); err != nil {
			return nil, fmt.Errorf("failed to rename playlist %d: %w", id, err)
		}
	}
	if patch.Index != nil {
		if _, err = d.db.ExecContext(queryCtx,
			`UPDATE playlists SET idx = ? WHERE id = ?`, *patch.Index, id); err != nil {
			return nil, fmt.Errorf("failed to reindex playlist %d: %w", id, err)
		}
	}

	return d.GetPlaylistByID(ctx, id)
}

// DeletePlaylistByID removes a playlist; its entries cascade.
func (d *Database) DeletePlaylistByID(ctx context.Context, id int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_playlist", start, err) }()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(queryCtx, `DELETE FROM playlists WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete playlist %d: %w", id, err)
	}
	return nil
}

// ListPlaylists returns all playlists ordered by library index, without
// entries loaded.
func (d *Database) ListPlaylists(ctx context.Context) ([]Playlist, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("list_playlists", start, err) }()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	rows, err := d.db.QueryContext(queryCtx,
		`SELECT id, name, idx, created_at FROM playlists ORDER BY idx ASC, id ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlists: %w", err)
	}
	defer rows.Close()

	playlists := []Playlist{}
	for rows.Next() {
		var p Playlist
		var createdAt int64
		if err = rows.Scan(&p.ID, &p.Name, &p.Index, &createdAt); err != nil {
			return nil, fmt.Errorf("failed to scan playlist: %w", err)
		}
		p.CreatedAt = time.Unix(createdAt, 0)
		playlists = append(playlists, p)
	}

	return playlists, rows.Err()
}

// CreatePlaylistEntry appends a file to a playlist, assigning the next
// insertion index and sort index, and returns the stored entry.
func (d *Database) CreatePlaylistEntry(ctx context.Context, path string, playlistID int64) (*PlaylistEntry, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("create_entry", start, err) }()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var count int
	if err = d.db.QueryRowContext(queryCtx,
		`SELECT COUNT(*) FROM playlist_entries WHERE playlist_id = ?`, playlistID).Scan(&count); err != nil {
		return nil, fmt.Errorf("failed to count entries for playlist %d: %w", playlistID, err)
	}

	res, err := d.db.ExecContext(queryCtx,
		`INSERT INTO playlist_entries (playlist_id, path, idx, sort_index) VALUES (?, ?, ?, ?)`,
		playlistID, path, count, count)
	if err != nil {
		return nil, fmt.Errorf("failed to create entry in playlist %d: %w", playlistID, err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read entry id: %w", err)
	}

	return &PlaylistEntry{
		ID:         id,
		PlaylistID: playlistID,
		Path:       path,
		Index:      count,
		SortIndex:  count,
	}, nil
}

// DeletePlaylistEntryByID removes a single entry.
func (d *Database) DeletePlaylistEntryByID(ctx context.Context, id int64) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("delete_entry", start, err) }()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(queryCtx, `DELETE FROM playlist_entries WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete entry %d: %w", id, err)
	}
	return nil
}

// UpdatePlaylistEntrySortIndex moves an entry within its playlist's ordering.
// The insertion index is never touched.
func (d *Database) UpdatePlaylistEntrySortIndex(ctx context.Context, id int64, sortIndex int) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("update_entry_sort", start, err) }()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(queryCtx,
		`UPDATE playlist_entries SET sort_index = ? WHERE id = ?`, sortIndex, id)
	if err != nil {
		return fmt.Errorf("failed to update sort index for entry %d: %w", id, err)
	}
	return nil
}

// GetMediaInfo returns cached metadata for a path, or (nil, nil) on a cache
// miss.
func (d *Database) GetMediaInfo(ctx context.Context, path string) (*MediaInfo, error) {
	start := time.Now()
	var err error
	defer func() { recordQuery("get_media_info", start, err) }()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	m := &MediaInfo{Path: path}
	var (
		artist, album, genre     sql.NullString
		year, track, totalTracks sql.NullInt64
		disc, totalDiscs         sql.NullInt64
		duration                 sql.NullFloat64
	)
	err = d.db.QueryRowContext(queryCtx, `
		SELECT title, artist, album, year, track, total_tracks,
		       disc, total_discs, genre, duration, is_video
		FROM media_info WHERE path = ?`, path).
		Scan(&m.Title, &artist, &album, &year, &track, &totalTracks,
			&disc, &totalDiscs, &genre, &duration, &m.IsVideo)
	if errors.Is(err, sql.ErrNoRows) {
		err = nil
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get media info for %q: %w", path, err)
	}

	m.Artist = artist.String
	m.Album = album.String
	m.Genre = genre.String
	m.Year = int(year.Int64)
	m.Track = int(track.Int64)
	m.TotalTracks = int(totalTracks.Int64)
	m.Disc = int(disc.Int64)
	m.TotalDiscs = int(totalDiscs.Int64)
	m.Duration = duration.Float64

	return m, nil
}

// UpsertMediaInfo stores or replaces cached metadata for a path.
func (d *Database) UpsertMediaInfo(ctx context.Context, m *MediaInfo) error {
	start := time.Now()
	var err error
	defer func() { recordQuery("upsert_media_info", start, err) }()

	queryCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	_, err = d.db.ExecContext(queryCtx, `
		INSERT INTO media_info (path, title, artist, album, year, track, total_tracks,
		                        disc, total_discs, genre, duration, is_video)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			title = excluded.title,
			artist = excluded.artist,
			album = excluded.album,
			year = excluded.year,
			track = excluded.track,
			total_tracks = excluded.total_tracks,
			disc = excluded.disc,
			total_discs = excluded.total_discs,
			genre = excluded.genre,
			duration = excluded.duration,
			is_video = excluded.is_video`,
		m.Path, m.Title, m.Artist, m.Album, m.Year, m.Track, m.TotalTracks,
		m.Disc, m.TotalDiscs, m.Genre, m.Duration, m.IsVideo)
	if err != nil {
		return fmt.Errorf("failed to upsert media info for %q: %w", m.Path, err)
	}
	return nil
}
