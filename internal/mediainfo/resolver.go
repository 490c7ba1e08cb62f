package mediainfo

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/dhowden/tag"

	"player-shell/internal/database"
	"player-shell/internal/logging"
	"player-shell/internal/mediatypes"
	"player-shell/internal/metrics"
	"player-shell/internal/workers"
)

// Store is the cache layer the resolver reads through.
type Store interface {
	GetMediaInfo(ctx context.Context, path string) (*database.MediaInfo, error)
	UpsertMediaInfo(ctx context.Context, info *database.MediaInfo) error
}

// Resolver resolves media metadata for a path: durable cache first, then
// tag extraction from the file, caching the result. Extraction failures
// degrade to a filename-derived title instead of an error, so a missing or
// unreadable tag never blocks playlist assembly.
type Resolver struct {
	store Store
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store}
}

// Resolve returns metadata for path. The result always carries at least a
// title.
func (r *Resolver) Resolve(ctx context.Context, path string) (*database.MediaInfo, error) {
	if r.store != nil {
		cached, err := r.store.GetMediaInfo(ctx, path)
		if err != nil {
			logging.Warn("media info cache read failed for %q: %v", path, err)
		} else if cached != nil {
			metrics.MetadataLookupsTotal.WithLabelValues("cache").Inc()
			return cached, nil
		}
	}

	info := extract(path)

	if r.store != nil {
		if err := r.store.UpsertMediaInfo(ctx, info); err != nil {
			logging.Warn("media info cache write failed for %q: %v", path, err)
		}
	}
	return info, nil
}

// Prefetch resolves metadata for many paths concurrently and returns once
// all are done or the context is cancelled. Used to warm the cache before
// a playlist is served.
func (r *Resolver) Prefetch(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}

	start := time.Now()
	sem := make(chan struct{}, workers.ForIO(0))
	var wg sync.WaitGroup

	for _, path := range paths {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		case sem <- struct{}{}:
		}

		wg.Add(1)
		go func(p string) {
			defer wg.Done()
			defer func() { <-sem }()
			if _, err := r.Resolve(ctx, p); err != nil {
				logging.Debug("prefetch failed for %q: %v", p, err)
			}
		}(path)
	}

	wg.Wait()
	logging.Debug("prefetched metadata for %d paths in %v", len(paths), time.Since(start))
}

// extract reads tags from the file. Video files and unreadable tags both
// fall back to the filename as the title.
func extract(path string) *database.MediaInfo {
	info := &database.MediaInfo{
		Path:  path,
		Title: titleFromPath(path),
	}

	if mediatypes.IsVideoFile(path) {
		// Container tags on video files are unreliable; the filename is
		// the display name.
		info.IsVideo = true
		metrics.MetadataLookupsTotal.WithLabelValues("video").Inc()
		return info
	}

	f, err := os.Open(path)
	if err != nil {
		logging.Debug("cannot open %q for tag extraction: %v", path, err)
		metrics.MetadataLookupsTotal.WithLabelValues("fallback").Inc()
		return info
	}
	defer f.Close()

	meta, err := tag.ReadFrom(f)
	if err != nil {
		logging.Debug("cannot parse tags from %q: %v", path, err)
		metrics.MetadataLookupsTotal.WithLabelValues("fallback").Inc()
		return info
	}

	if title := meta.Title(); title != "" {
		info.Title = title
	}
	info.Artist = meta.Artist()
	if albumArtist := meta.AlbumArtist(); info.Artist == "" && albumArtist != "" {
		info.Artist = albumArtist
	}
	info.Album = meta.Album()
	info.Genre = meta.Genre()
	info.Year = meta.Year()
	info.Track, info.TotalTracks = meta.Track()
	info.Disc, info.TotalDiscs = meta.Disc()

	metrics.MetadataLookupsTotal.WithLabelValues("extracted").Inc()
	return info
}

func titleFromPath(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
