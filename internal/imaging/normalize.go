// Package imaging normalizes uploaded receipt images before OCR and
// storage: bounded width, bounded encoded size, PNG preferred.
package imaging

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif" // register GIF decoder
	"image/jpeg"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
)

// ErrDecode is returned when the byte stream is not a supported raster image.
var ErrDecode = errors.New("unreadable image")

// Normalizer bounds an image's pixel width and encoded byte size.
type Normalizer struct {
	maxWidth int
	maxBytes int64
}

// NormalizedImage is the pure result of Normalize; persistence is the
// caller's concern.
type NormalizedImage struct {
	Data   []byte
	Format string // "png" or "jpeg"
	Width  int
	Height int
}

// Ext returns the file extension matching the encoded format.
func (n NormalizedImage) Ext() string {
	if n.Format == "jpeg" {
		return ".jpg"
	}
	return ".png"
}

func NewNormalizer(maxWidth int, maxBytes int64) *Normalizer {
	if maxWidth <= 0 {
		maxWidth = 1024
	}
	if maxBytes <= 0 {
		maxBytes = 1 << 20
	}
	return &Normalizer{maxWidth: maxWidth, maxBytes: maxBytes}
}

// Normalize decodes data, downscales anything wider than the configured
// width preserving aspect ratio, and encodes PNG. If the PNG exceeds the
// byte ceiling it falls back to JPEG, shrinking dimensions by 0.9 and
// quality by 5 per iteration from 85 until the result fits or quality
// would drop to 10 or below; past that point the last encoding is kept
// as a best-effort result.
func (n *Normalizer) Normalize(data []byte) (NormalizedImage, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return NormalizedImage{}, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	bounds := img.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width > n.maxWidth {
		height = int(math.Round(float64(height) * float64(n.maxWidth) / float64(width)))
		if height < 1 {
			height = 1
		}
		width = n.maxWidth
		img = scale(img, width, height)
	}

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return NormalizedImage{}, fmt.Errorf("encoding png: %w", err)
	}
	if int64(buf.Len()) <= n.maxBytes {
		return NormalizedImage{Data: buf.Bytes(), Format: "png", Width: width, Height: height}, nil
	}

	// PNG has no quality knob, so the shrink loop is JPEG.
	var out []byte
	for quality := 85; ; quality -= 5 {
		width = int(math.Round(float64(width) * 0.9))
		height = int(math.Round(float64(height) * 0.9))
		if width < 1 {
			width = 1
		}
		if height < 1 {
			height = 1
		}
		img = scale(img, width, height)

		buf.Reset()
		if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: quality}); err != nil {
			return NormalizedImage{}, fmt.Errorf("encoding jpeg: %w", err)
		}
		out = append(out[:0], buf.Bytes()...)
		if int64(len(out)) <= n.maxBytes || quality-5 <= 10 {
			break
		}
	}
	return NormalizedImage{Data: out, Format: "jpeg", Width: width, Height: height}, nil
}

func scale(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Over, nil)
	return dst
}
