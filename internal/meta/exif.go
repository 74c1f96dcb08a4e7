package meta

import (
	"os"
	"strings"
	"time"

	"github.com/rwcarlsen/goexif/exif"
)

const exifTimeLayout = "2006:01:02 15:04:05"

// capture-time tags in order of preference
var exifTimeFields = []exif.FieldName{
	exif.DateTimeOriginal,
	exif.DateTimeDigitized,
	exif.DateTime,
}

// readExif decodes the EXIF block of path, or returns nil if there is none
func readExif(path string) *exif.Exif {
	f, err := os.Open(path)
	if err != nil {
		return nil
	}
	defer f.Close()

	x, err := exif.Decode(f)
	if err != nil {
		return nil
	}
	return x
}

// exifTime returns the first parseable capture-time tag, interpreted as local
// time (EXIF date strings carry no zone).
func exifTime(x *exif.Exif) (time.Time, bool) {
	if x == nil {
		return time.Time{}, false
	}

	for _, field := range exifTimeFields {
		tag, err := x.Get(field)
		if err != nil {
			continue
		}
		val, err := tag.StringVal()
		if err != nil {
			continue
		}
		val = strings.TrimRight(strings.TrimSpace(val), "\x00")
		t, err := time.ParseInLocation(exifTimeLayout, val, time.Local)
		if err != nil || t.Year() < minYear {
			continue
		}
		return t, true
	}

	return time.Time{}, false
}

// exifDimensions returns PixelXDimension/PixelYDimension if both are present
func exifDimensions(x *exif.Exif) (int, int, bool) {
	if x == nil {
		return 0, 0, false
	}

	wTag, err := x.Get(exif.PixelXDimension)
	if err != nil {
		return 0, 0, false
	}
	hTag, err := x.Get(exif.PixelYDimension)
	if err != nil {
		return 0, 0, false
	}

	w, errW := wTag.Int(0)
	h, errH := hTag.Int(0)
	if errW != nil || errH != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}
