// Package mediatypes provides media file classification by extension for the
// player shell.
//
// This package exists as a dependency-free foundation that can be imported by
// other packages without creating import cycles. It contains only primitive
// types, constants, and pure utility functions.
//
// # Extension Detection
//
// Use IsMediaFile to decide whether a directory entry belongs in the
// current-folder playlist:
//
//	if mediatypes.IsMediaFile(path) {
//	    // include in playlist
//	}
//
// Use IsVideoFile to decide whether a file's display title should come from
// its filename rather than embedded metadata tags:
//
//	if mediatypes.IsVideoFile(path) {
//	    title = filepath.Base(path)
//	}
//
// The extension maps (AudioExtensions, VideoExtensions) can be used directly
// for format validation or iteration.
package mediatypes
