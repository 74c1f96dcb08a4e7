package main

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/franz/photo-librarian/internal/media"
	"github.com/franz/photo-librarian/internal/store"
)

func TestPrintPhotos(t *testing.T) {
	taken := time.Date(2019, 7, 4, 10, 20, 0, 0, time.Local)
	photos := []store.Photo{
		{Path: "/lib/2019/07/a.jpg", DateTaken: taken.Unix(), Width: 640, Height: 480, Kind: media.KindPhoto, IsFavorite: true},
		{Path: "/lib/2019/07/b.mp4", DateTaken: taken.Unix(), Kind: media.KindVideo},
	}

	var buf bytes.Buffer
	printPhotos(&buf, photos)
	out := buf.String()

	for _, want := range []string{"TAKEN", "2019-07-04 10:20", "640x480", "/lib/2019/07/a.jpg", "video"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 3 {
		t.Errorf("expected header plus 2 rows, got %d lines", len(lines))
	}
	if fields := strings.Fields(lines[2]); len(fields) < 3 || fields[2] != "-" {
		t.Errorf("video without dimensions should show '-': %q", lines[2])
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	album := store.Album{ID: 3, Name: "Trip", Count: 2, CoverPath: "/lib/a.jpg"}
	if err := printJSON(&buf, []store.Album{album}); err != nil {
		t.Fatal(err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if decoded[0]["cover_photo_path"] != "/lib/a.jpg" || decoded[0]["count"] != float64(2) {
		t.Errorf("unexpected album JSON %v", decoded[0])
	}
}
