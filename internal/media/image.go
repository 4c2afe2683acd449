// Package media re-encodes uploaded images to WebP and stores them in an
// S3-compatible bucket.
package media

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"

	"github.com/chai2010/webp"
	"golang.org/x/image/draw"
)

const (
	ContentType = "image/webp"
	maxUpload   = 10 << 20
)

var (
	ErrTooLarge       = errors.New("image too large")
	ErrUnsupported    = errors.New("unsupported image format")
	ErrUploadDisabled = errors.New("image uploads are not configured")
)

// Encoder shrinks images wider than MaxWidth and encodes them as WebP.
type Encoder struct {
	MaxWidth int
	Quality  float32
}

func (e Encoder) Encode(r io.Reader) ([]byte, error) {
	raw, err := io.ReadAll(io.LimitReader(r, maxUpload+1))
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if len(raw) > maxUpload {
		return nil, ErrTooLarge
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupported, err)
	}

	img := e.resize(src)

	quality := e.Quality
	if quality <= 0 {
		quality = 80
	}

	var buf bytes.Buffer
	if err := webp.Encode(&buf, img, &webp.Options{Quality: quality}); err != nil {
		return nil, fmt.Errorf("encode webp: %w", err)
	}
	return buf.Bytes(), nil
}

func (e Encoder) resize(src image.Image) image.Image {
	b := src.Bounds()
	if e.MaxWidth <= 0 || b.Dx() <= e.MaxWidth {
		return src
	}

	h := b.Dy() * e.MaxWidth / b.Dx()
	if h < 1 {
		h = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, e.MaxWidth, h))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
