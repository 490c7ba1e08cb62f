// Package mediainfo resolves display metadata for media files. Lookups go
// through the durable path-keyed cache; misses extract embedded tags from
// the file and write back. Extraction is strictly best effort: anything
// unreadable degrades to the filename as the title.
package mediainfo
