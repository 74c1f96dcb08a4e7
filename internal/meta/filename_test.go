package meta

import (
	"testing"
	"time"
)

func TestFilenameTime(t *testing.T) {
	tests := []struct {
		path     string
		expected time.Time
		ok       bool
	}{
		{
			path:     "/photos/2017-11-26_030858.jpg",
			expected: time.Date(2017, 11, 26, 3, 8, 58, 0, time.Local),
			ok:       true,
		},
		{
			path:     "/photos/2017-11-26030858.jpg",
			expected: time.Date(2017, 11, 26, 3, 8, 58, 0, time.Local),
			ok:       true,
		},
		{
			path:     "/photos/20171126030858.jpg",
			expected: time.Date(2017, 11, 26, 3, 8, 58, 0, time.Local),
			ok:       true,
		},
		{
			path:     "/photos/0000-00-00_2019-07-04.jpg",
			expected: time.Date(2019, 7, 4, 0, 0, 0, 0, time.Local),
			ok:       true,
		},
		{
			path:     "/photos/IMG_20190704_102030.jpg",
			expected: time.Date(2019, 7, 4, 10, 20, 30, 0, time.Local),
			ok:       true,
		},
		{
			path:     "/photos/Screenshot 2021-03-04 at 10.11.12.png",
			expected: time.Date(2021, 3, 4, 10, 11, 12, 0, time.Local),
			ok:       true,
		},
		{
			path:     "/photos/VID-20200101-WA0001.mp4",
			expected: time.Date(2020, 1, 1, 0, 0, 0, 0, time.Local),
			ok:       true,
		},
		{
			path:     "/photos/holiday 2018.05.09.jpg",
			expected: time.Date(2018, 5, 9, 0, 0, 0, 0, time.Local),
			ok:       true,
		},
		{path: "/photos/DSC01234.jpg"},
		{path: "/photos/beach.jpg"},
		{path: "/photos/2019-02-31.jpg"},
		{path: "/photos/2019-13-01.jpg"},
		{path: "/photos/1234-05-06.jpg"},
	}

	for _, tt := range tests {
		got, ok := FilenameTime(tt.path)
		if ok != tt.ok {
			t.Errorf("FilenameTime(%q) ok = %v, expected %v", tt.path, ok, tt.ok)
			continue
		}
		if ok && !got.Equal(tt.expected) {
			t.Errorf("FilenameTime(%q) = %v, expected %v", tt.path, got, tt.expected)
		}
	}
}

func TestParseContainerDate(t *testing.T) {
	if _, ok := parseContainerDate("2016"); ok {
		t.Error("bare year should be rejected")
	}

	got, ok := parseContainerDate("2016-08-15")
	if !ok {
		t.Fatal("expected date-only value to parse")
	}
	if got.Year() != 2016 || got.Month() != time.August || got.Day() != 15 {
		t.Errorf("unexpected date %v", got)
	}

	got, ok = parseContainerDate("2016-08-15T12:00:00Z")
	if !ok {
		t.Fatal("expected RFC3339 value to parse")
	}
	if !got.Equal(time.Date(2016, 8, 15, 12, 0, 0, 0, time.UTC)) {
		t.Errorf("unexpected instant %v", got)
	}
}
