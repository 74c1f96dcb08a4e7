// Package media classifies files as photo, video or unsupported by extension.
package media

import (
	"path/filepath"
	"sort"
	"strings"
)

// Kind is the media type of a file.
type Kind string

const (
	// KindUnsupported marks files the library never ingests.
	KindUnsupported Kind = "unsupported"
	// KindPhoto marks still images.
	KindPhoto Kind = "photo"
	// KindVideo marks video clips.
	KindVideo Kind = "video"
)

var photoExtensions = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".heic": true,
	".webp": true,
	".gif":  true,
	".bmp":  true,
	".tiff": true,
	".tif":  true,
}

var videoExtensions = map[string]bool{
	".mp4":  true,
	".mov":  true,
	".avi":  true,
	".webm": true,
	".mkv":  true,
}

// Classify returns the Kind of path based on its extension, case-insensitively.
// It never touches the filesystem.
func Classify(path string) Kind {
	ext := strings.ToLower(filepath.Ext(path))
	switch {
	case photoExtensions[ext]:
		return KindPhoto
	case videoExtensions[ext]:
		return KindVideo
	default:
		return KindUnsupported
	}
}

// IsSupported returns true if path is a photo or a video.
func IsSupported(path string) bool {
	return Classify(path) != KindUnsupported
}

// ParseKind converts a stored kind string back into a Kind.
// Unknown values map to KindUnsupported.
func ParseKind(s string) Kind {
	switch Kind(s) {
	case KindPhoto, KindVideo:
		return Kind(s)
	default:
		return KindUnsupported
	}
}

// PhotoExtensions returns the supported photo extensions, sorted.
func PhotoExtensions() []string {
	return sortedKeys(photoExtensions)
}

// VideoExtensions returns the supported video extensions, sorted.
func VideoExtensions() []string {
	return sortedKeys(videoExtensions)
}

func sortedKeys(m map[string]bool) []string {
	exts := make([]string, 0, len(m))
	for ext := range m {
		exts = append(exts, ext)
	}
	sort.Strings(exts)
	return exts
}
