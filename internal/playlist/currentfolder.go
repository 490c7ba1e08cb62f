package playlist

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"player-shell/internal/database"
	"player-shell/internal/logging"
	"player-shell/internal/mediatypes"
)

// CurrentFolderID is the transient id of the synthetic current-folder
// playlist. It is never written to durable storage; entries are recomputed
// from the filesystem on every build and carry transient negative ids.
const CurrentFolderID int64 = -1

// CurrentFolderName is the sentinel playlist identifier used by the control
// API.
const CurrentFolderName = "current-folder"

// MetadataResolver resolves cached-or-extracted media metadata for a path.
type MetadataResolver interface {
	Resolve(ctx context.Context, path string) (*database.MediaInfo, error)
}

// Prefetcher warms the metadata cache for a batch of paths ahead of
// per-entry resolution. Resolvers that implement it get the whole folder
// handed over at once instead of one blocking extraction per entry.
type Prefetcher interface {
	Prefetch(ctx context.Context, paths []string)
}

// BuildCurrentFolder derives the synthetic current-folder playlist from the
// directory of the file the engine is currently playing. currentPath may be
// empty (nothing loaded), which yields an empty playlist.
//
// Metadata resolution failures are tolerated per entry; the entry is kept
// with no attached metadata.
func BuildCurrentFolder(ctx context.Context, currentPath string, resolver MetadataResolver) (*database.Playlist, error) {
	p := &database.Playlist{
		ID:      CurrentFolderID,
		Name:    CurrentFolderName,
		Index:   -1,
		Entries: []database.PlaylistEntry{},
	}

	if currentPath == "" {
		return p, nil
	}

	dir := filepath.Dir(currentPath)
	files, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read current folder %q: %w", dir, err)
	}

	names := make([]string, 0, len(files))
	for _, f := range files {
		if f.IsDir() {
			continue
		}
		path := filepath.Join(dir, f.Name())
		if mediatypes.IsMediaFile(path) {
			names = append(names, f.Name())
		}
	}
	sort.Strings(names)

	if pf, ok := resolver.(Prefetcher); ok && len(names) > 0 {
		paths := make([]string, len(names))
		for i, name := range names {
			paths[i] = filepath.Join(dir, name)
		}
		pf.Prefetch(ctx, paths)
	}

	for i, name := range names {
		path := filepath.Join(dir, name)
		entry := database.PlaylistEntry{
			ID:         -int64(i + 1),
			PlaylistID: CurrentFolderID,
			Path:       path,
			Index:      i,
			SortIndex:  i,
		}

		if resolver != nil {
			info, err := resolver.Resolve(ctx, path)
			if err != nil {
				logging.Debug("no metadata for %q: %v", path, err)
			} else {
				entry.MediaInfo = info
			}
		}

		p.Entries = append(p.Entries, entry)
	}

	return p, nil
}
