package render

import (
	"image"
	"math"
	"path/filepath"
	"strings"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func brightness(c Color) int {
	return int(c.R) + int(c.G) + int(c.B)
}

func hueOf(c Color) float64 {
	cc, _ := colorful.MakeColor(c)
	h, _, _ := cc.Hsv()
	return h
}

func hueDistance(a, b float64) float64 {
	d := math.Mod(math.Abs(a-b), 360)
	return math.Min(d, 360-d)
}

func TestAtlasTexture(t *testing.T) {
	const tiles, px = 3, 8
	tex := NewAtlasTexture(tiles, px, 0)

	if tex.Width != tiles*px || tex.Height != tiles*px {
		t.Fatalf("size = %dx%d, want %dx%d", tex.Width, tex.Height, tiles*px, tiles*px)
	}

	for ty := range tiles {
		for tx := range tiles {
			centre := tex.GetPixel(tx*px+1, ty*px+1)
			rim := tex.GetPixel(tx*px, ty*px)
			if brightness(rim) >= brightness(centre) {
				t.Errorf("tile %d,%d: rim %v not darker than centre %v", tx, ty, rim, centre)
			}

			want := 40 * float64(ty*tiles+tx)
			if d := hueDistance(hueOf(centre), want); d > 12 {
				t.Errorf("tile %d,%d: hue %.1f, want about %.0f", tx, ty, hueOf(centre), want)
			}
		}
	}

	// V runs up the image.
	if got, want := tex.Sample(0.2, 0.8), tex.GetPixel(4, 4); got != want {
		t.Errorf("Sample(0.2, 0.8) = %v, want %v", got, want)
	}
	// Clamped at the edges.
	if got, want := tex.Sample(1.5, -0.5), tex.GetPixel(tex.Width-1, tex.Height-1); got != want {
		t.Errorf("Sample out of range = %v, want %v", got, want)
	}
}

func TestCrateTexture(t *testing.T) {
	tex := NewCrateTexture(16, 20)

	frame, a, b := tex.GetPixel(0, 7), tex.GetPixel(5, 5), tex.GetPixel(5, 9)
	if a == b {
		t.Error("checker squares have the same colour")
	}
	if frame == a || frame == b {
		t.Error("frame blends into the checker")
	}
	if tex.GetPixel(15, 3) != frame || tex.GetPixel(3, 15) != frame {
		t.Error("frame does not go all the way round")
	}
}

func TestColorOps(t *testing.T) {
	c := Color{R: 200, G: 100, B: 0, A: 77}

	tests := []struct {
		name string
		got  Color
		want Color
	}{
		{"invert", InvertColor(c), Color{R: 55, G: 155, B: 255, A: 77}},
		{"half", MultiplyColor(c, 0.5), Color{R: 100, G: 50, B: 0, A: 77}},
		{"saturate", MultiplyColor(c, 2), Color{R: 255, G: 200, B: 0, A: 77}},
		{"negative", MultiplyColor(c, -1), Color{A: 77}},
		{"lerp", lerpColor(Color{}, c, 0.5), Color{R: 100, G: 50, B: 0, A: 38}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.got != tc.want {
				t.Errorf("got %v, want %v", tc.got, tc.want)
			}
		})
	}
}

func TestTextureBilinear(t *testing.T) {
	tex := NewCheckerTexture(2, 2, 1, ColorBlack, ColorWhite)
	tex.FilterMode = FilterBilinear
	tex.WrapU, tex.WrapV = WrapClamp, WrapClamp

	// The middle of a 2x2 checker averages all four texels.
	got := tex.Sample(0.5, 0.5)
	if got.R < 126 || got.R > 128 {
		t.Errorf("centre = %v, want mid grey", got)
	}
}

func TestLoadTexture(t *testing.T) {
	fb := NewFramebuffer(3, 2)
	fb.Clear(ColorBlack)
	fb.SetPixel(0, 0, ColorRed)
	fb.SetPixel(2, 1, ColorCyan)

	path := filepath.Join(t.TempDir(), "frame.png")
	if err := fb.SavePNG(path); err != nil {
		t.Fatalf("SavePNG: %v", err)
	}

	tex, err := LoadTexture(path)
	if err != nil {
		t.Fatalf("LoadTexture: %v", err)
	}
	for i, p := range fb.Pixels {
		if tex.Pixels[i] != p {
			t.Errorf("pixel %d = %v, want %v", i, tex.Pixels[i], p)
		}
	}

	if _, err := LoadTexture(filepath.Join(t.TempDir(), "missing.png")); err == nil || !strings.Contains(err.Error(), "open texture") {
		t.Errorf("missing file error = %v", err)
	}
}

func TestTextureFromImage(t *testing.T) {
	img := image.NewRGBA(image.Rect(10, 10, 12, 11))
	img.SetRGBA(11, 10, ColorRed)

	tex := TextureFromImage(img)
	if tex.Width != 2 || tex.Height != 1 {
		t.Fatalf("size = %dx%d", tex.Width, tex.Height)
	}
	if tex.GetPixel(1, 0) != ColorRed {
		t.Errorf("pixel = %v, want red", tex.GetPixel(1, 0))
	}
	if tex.GetPixel(5, 5) != (Color{}) {
		t.Error("out of bounds pixel should be zero")
	}
}
