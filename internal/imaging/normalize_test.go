package imaging

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"math"
	"math/rand"
	"testing"
)

func encodeJPEG(t *testing.T, img image.Image) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: 90}); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func flatImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{R: 240, G: 240, B: 240, A: 255})
		}
	}
	return img
}

func noiseImage(w, h int) image.Image {
	rng := rand.New(rand.NewSource(42))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.RGBA{
				R: uint8(rng.Intn(256)),
				G: uint8(rng.Intn(256)),
				B: uint8(rng.Intn(256)),
				A: 255,
			})
		}
	}
	return img
}

func TestNormalizeUndecodable(t *testing.T) {
	n := NewNormalizer(1024, 1<<20)
	_, err := n.Normalize([]byte("not an image"))
	if !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestNormalizeDownscalesWideImages(t *testing.T) {
	cases := []struct {
		name string
		w, h int
	}{
		{"2000x1500", 2000, 1500},
		{"4000x100", 4000, 100},
		{"1025x1025", 1025, 1025},
	}
	n := NewNormalizer(1024, 1<<20)
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := n.Normalize(encodeJPEG(t, flatImage(tc.w, tc.h)))
			if err != nil {
				t.Fatal(err)
			}
			if got.Width != 1024 {
				t.Errorf("width = %d, want 1024", got.Width)
			}
			wantH := math.Round(float64(tc.h) * 1024 / float64(tc.w))
			if math.Abs(float64(got.Height)-wantH) > 1 {
				t.Errorf("height = %d, want %v within one pixel", got.Height, wantH)
			}
			// Result must decode and match the reported dimensions.
			cfg, format, err := image.DecodeConfig(bytes.NewReader(got.Data))
			if err != nil {
				t.Fatalf("decoding normalized output: %v", err)
			}
			if format != got.Format {
				t.Errorf("format = %q, data is %q", got.Format, format)
			}
			if cfg.Width != got.Width || cfg.Height != got.Height {
				t.Errorf("encoded %dx%d, reported %dx%d", cfg.Width, cfg.Height, got.Width, got.Height)
			}
		})
	}
}

func TestNormalizeKeepsNarrowImages(t *testing.T) {
	n := NewNormalizer(1024, 1<<20)
	got, err := n.Normalize(encodeJPEG(t, flatImage(640, 480)))
	if err != nil {
		t.Fatal(err)
	}
	if got.Width != 640 || got.Height != 480 {
		t.Fatalf("got %dx%d, want unchanged 640x480", got.Width, got.Height)
	}
	if got.Format != "png" {
		t.Fatalf("small images stay PNG, got %q", got.Format)
	}
}

func TestNormalizeNegotiatesByteCeiling(t *testing.T) {
	// Noise compresses badly; PNG of 200x200 noise far exceeds 4 KiB.
	var src bytes.Buffer
	if err := png.Encode(&src, noiseImage(200, 200)); err != nil {
		t.Fatal(err)
	}
	n := NewNormalizer(1024, 4096)
	got, err := n.Normalize(src.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if got.Format != "jpeg" {
		t.Fatalf("over-ceiling result should fall back to jpeg, got %q", got.Format)
	}
	if got.Width >= 200 {
		t.Errorf("dimensions should shrink, got width %d", got.Width)
	}
	if len(got.Data) == 0 {
		t.Fatalf("empty output")
	}
}

func TestNormalizeBestEffortPastQualityFloor(t *testing.T) {
	var src bytes.Buffer
	if err := png.Encode(&src, noiseImage(400, 400)); err != nil {
		t.Fatal(err)
	}
	// Ceiling nobody can hit: loop must terminate and still return bytes.
	n := NewNormalizer(1024, 1025)
	got, err := n.Normalize(src.Bytes())
	if err != nil {
		t.Fatal(err)
	}
	if len(got.Data) == 0 {
		t.Fatalf("best-effort result must not be empty")
	}
	if got.Format != "jpeg" {
		t.Fatalf("format = %q, want jpeg", got.Format)
	}
}
