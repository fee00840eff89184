package imageprep

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

const (
	DefaultMaxEdge = 1024
	MimeType       = "image/png"
	// MaxPixels bounds width*height before any pixel data is decoded.
	MaxPixels = 40_000_000
)

var ErrUnsupportedImage = errors.New("unsupported image format")

// Normalize decodes PNG, JPEG, GIF, WebP or BMP, shrinks it so the long edge is at most maxEdge
// and re-encodes it as PNG. Images already within bounds are only re-encoded.
func Normalize(data []byte, maxEdge int) ([]byte, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty upload", ErrUnsupportedImage)
	}
	if maxEdge <= 0 {
		maxEdge = DefaultMaxEdge
	}
	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 || int64(cfg.Width)*int64(cfg.Height) > MaxPixels {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels", ErrUnsupportedImage, cfg.Width, cfg.Height, MaxPixels)
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	dst := image.Image(src)
	b := src.Bounds()
	w, h := fitWithin(b.Dx(), b.Dy(), maxEdge)
	if w != b.Dx() || h != b.Dy() {
		rgba := image.NewRGBA(image.Rect(0, 0, w, h))
		draw.CatmullRom.Scale(rgba, rgba.Bounds(), src, b, draw.Over, nil)
		dst = rgba
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, dst); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func fitWithin(w, h, maxEdge int) (int, int) {
	long := w
	if h > long {
		long = h
	}
	if long <= maxEdge || long == 0 {
		return w, h
	}
	nw := w * maxEdge / long
	nh := h * maxEdge / long
	if nw < 1 {
		nw = 1
	}
	if nh < 1 {
		nh = 1
	}
	return nw, nh
}
