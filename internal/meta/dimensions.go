package meta

import (
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"github.com/franz/photo-librarian/internal/media"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

// dimensions reports pixel width and height. Only the image header is read.
// Videos and undecodable formats (HEIC) fall back to EXIF, then to 0x0.
func dimensions(path string, kind media.Kind, x *exif.Exif) (int, int) {
	if kind != media.KindPhoto {
		return 0, 0
	}

	if w, h, ok := headerDimensions(path); ok {
		return w, h
	}
	if w, h, ok := exifDimensions(x); ok {
		return w, h
	}
	return 0, 0
}

func headerDimensions(path string) (int, int, bool) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, false
	}
	defer f.Close()

	cfg, _, err := image.DecodeConfig(f)
	if err != nil || cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, false
	}
	return cfg.Width, cfg.Height, true
}
