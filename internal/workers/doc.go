// Package workers provides worker pool sizing helpers for concurrent media
// metadata extraction.
//
// Worker counts are derived from GOMAXPROCS so container CPU limits are
// respected, with an optional METADATA_WORKERS environment override.
package workers
