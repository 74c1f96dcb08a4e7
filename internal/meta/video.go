package meta

import (
	"os"
	"strings"
	"time"

	"github.com/dhowden/tag"
)

// raw keys under which tag exposes the QuickTime/MP4 creation date
var containerDateKeys = []string{"\xa9day", "day", "year"}

var containerDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05Z0700",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// containerTime reads the creation date atom of an MP4/MOV file.
// A bare year is not precise enough to place a file and is ignored.
func containerTime(path string) (time.Time, bool) {
	f, err := os.Open(path)
	if err != nil {
		return time.Time{}, false
	}
	defer f.Close()

	m, err := tag.ReadFrom(f)
	if err != nil {
		return time.Time{}, false
	}

	raw := m.Raw()
	if raw == nil {
		return time.Time{}, false
	}

	for _, key := range containerDateKeys {
		val, ok := raw[key].(string)
		if !ok {
			continue
		}
		if t, ok := parseContainerDate(val); ok {
			return t, true
		}
	}

	return time.Time{}, false
}

func parseContainerDate(val string) (time.Time, bool) {
	val = strings.TrimSpace(val)
	for _, layout := range containerDateLayouts {
		t, err := time.ParseInLocation(layout, val, time.Local)
		if err != nil {
			continue
		}
		if t.Year() < minYear {
			return time.Time{}, false
		}
		return t.Local(), true
	}
	return time.Time{}, false
}
