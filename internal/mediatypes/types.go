package mediatypes

import (
	"path/filepath"
	"strings"
)

// FileType represents the playback category of a media file.
type FileType string

const (
	// FileTypeAudio represents an audio file.
	FileTypeAudio FileType = "audio"
	// FileTypeVideo represents a video file.
	FileTypeVideo FileType = "video"
	// FileTypeOther represents an unknown or unsupported file type.
	FileTypeOther FileType = "other"
)

// AudioExtensions maps file extensions to whether they are supported audio formats.
var AudioExtensions = map[string]bool{
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".oga":  true,
	".opus": true,
	".m4a":  true,
	".aac":  true,
	".wav":  true,
	".wma":  true,
	".aiff": true,
	".ape":  true,
}

// VideoExtensions maps file extensions to whether they are supported video formats.
var VideoExtensions = map[string]bool{
	".mp4":  true,
	".mkv":  true,
	".avi":  true,
	".mov":  true,
	".wmv":  true,
	".flv":  true,
	".webm": true,
	".m4v":  true,
	".mpeg": true,
	".mpg":  true,
	".3gp":  true,
	".ts":   true,
}

// GetFileType returns the FileType for a given file extension.
// The extension should be lowercase and include the leading dot (e.g., ".mp3").
// Returns FileTypeOther if the extension is not recognized.
func GetFileType(ext string) FileType {
	if AudioExtensions[ext] {
		return FileTypeAudio
	}
	if VideoExtensions[ext] {
		return FileTypeVideo
	}
	return FileTypeOther
}

// IsMediaFile returns true if the path has a supported audio or video extension.
func IsMediaFile(path string) bool {
	return GetFileType(extOf(path)) != FileTypeOther
}

// IsVideoFile returns true if the path has a supported video extension.
// Video files use their filename as display title instead of embedded tags.
func IsVideoFile(path string) bool {
	return GetFileType(extOf(path)) == FileTypeVideo
}

func extOf(path string) string {
	return strings.ToLower(filepath.Ext(path))
}
