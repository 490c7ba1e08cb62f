package database

import "time"

// Playlist is a user-ordered collection of media files.
// Index orders playlists in the library; Entries are ordered by SortIndex.
type Playlist struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Index     int             `json:"index"`
	Entries   []PlaylistEntry `json:"entries"`
	CreatedAt time.Time       `json:"createdAt"`
}

// PlaylistEntry is one media file inside a playlist.
//
// Index records the original insertion order and never changes; it is an
// audit/tie-break field only. SortIndex is the current playback and display
// order and is reassigned in bulk when the user reorders the playlist.
type PlaylistEntry struct {
	ID         int64      `json:"id"`
	PlaylistID int64      `json:"playlistId"`
	Path       string     `json:"path"`
	Index      int        `json:"index"`
	SortIndex  int        `json:"sortIndex"`
	MediaInfo  *MediaInfo `json:"mediaInfo,omitempty"`
}

// MediaInfo is cached media metadata keyed by file path.
type MediaInfo struct {
	Path        string  `json:"path"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist,omitempty"`
	Album       string  `json:"album,omitempty"`
	Year        int     `json:"year,omitempty"`
	Track       int     `json:"track,omitempty"`
	TotalTracks int     `json:"totalTracks,omitempty"`
	Disc        int     `json:"disc,omitempty"`
	TotalDiscs  int     `json:"totalDiscs,omitempty"`
	Genre       string  `json:"genre,omitempty"`
	Duration    float64 `json:"duration,omitempty"`
	IsVideo     bool    `json:"isVideo"`
}

// PlaylistPatch describes a partial update to a playlist. Nil fields are
// left unchanged.
type PlaylistPatch struct {
	Name  *string
	Index *int
}
