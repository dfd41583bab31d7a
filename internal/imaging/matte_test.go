package imaging

import (
	"bytes"
	"image"
	"image/color"
	"testing"
)

// createGradientRaster fills every channel combination around the threshold
// so both branches of the matte are exercised on every row.
func createGradientRaster(width, height int) *Raster {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(240 + (x+y)%16) // 240..255
			img.SetNRGBA(x, y, color.NRGBA{R: v, G: uint8(255 - x%3), B: v, A: uint8(100 + y%100)})
		}
	}
	return &Raster{Image: img, Mode: ModeAlpha}
}

func TestMatte_Threshold(t *testing.T) {
	tests := []struct {
		name      string
		in        color.NRGBA
		wantAlpha uint8
	}{
		{"pure white", color.NRGBA{255, 255, 255, 255}, 0},
		{"near white", color.NRGBA{251, 251, 251, 255}, 0},
		{"at threshold", color.NRGBA{250, 255, 255, 255}, 255},
		{"one channel low", color.NRGBA{255, 255, 249, 255}, 255},
		{"black", color.NRGBA{0, 0, 0, 255}, 255},
		{"translucent white", color.NRGBA{255, 255, 255, 90}, 0},
		{"translucent red", color.NRGBA{255, 0, 0, 90}, 90},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			img := image.NewNRGBA(image.Rect(0, 0, 3, 2))
			for y := 0; y < 2; y++ {
				for x := 0; x < 3; x++ {
					img.SetNRGBA(x, y, tt.in)
				}
			}
			r := Matte(&Raster{Image: img, Mode: ModeAlpha}, DefaultWhiteThreshold)

			got := r.Image.NRGBAAt(1, 1)
			if got.A != tt.wantAlpha {
				t.Errorf("alpha: got %d, want %d", got.A, tt.wantAlpha)
			}
			if got.R != tt.in.R || got.G != tt.in.G || got.B != tt.in.B {
				t.Errorf("RGB changed: got %v, want %v", got, tt.in)
			}
		})
	}
}

func TestMatte_PixelProperty(t *testing.T) {
	src := createGradientRaster(64, 48)
	orig := append([]uint8(nil), src.Image.Pix...)

	out := Matte(src, DefaultWhiteThreshold)

	if out.Size() != (image.Point{64, 48}) {
		t.Fatalf("size changed: %v", out.Size())
	}
	for i := 0; i < len(orig); i += 4 {
		r, g, b, a := orig[i], orig[i+1], orig[i+2], orig[i+3]
		p := out.Image.Pix[i : i+4]
		if p[0] != r || p[1] != g || p[2] != b {
			t.Fatalf("pixel %d: RGB changed from (%d,%d,%d) to (%d,%d,%d)", i/4, r, g, b, p[0], p[1], p[2])
		}
		wantA := a
		if r > 250 && g > 250 && b > 250 {
			wantA = 0
		}
		if p[3] != wantA {
			t.Fatalf("pixel %d (%d,%d,%d): alpha got %d, want %d", i/4, r, g, b, p[3], wantA)
		}
	}
}

func TestMatte_Idempotent(t *testing.T) {
	once := Matte(createGradientRaster(32, 32), DefaultWhiteThreshold)
	first := append([]uint8(nil), once.Image.Pix...)

	twice := Matte(once, DefaultWhiteThreshold)
	if !bytes.Equal(first, twice.Image.Pix) {
		t.Error("matting a matted raster changed pixels")
	}
}

func TestMatte_PromotesOpaque(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 2, 1))
	img.SetNRGBA(0, 0, color.NRGBA{255, 255, 255, 255})
	img.SetNRGBA(1, 0, color.NRGBA{10, 10, 10, 255})

	r := Matte(&Raster{Image: img, Mode: ModeOpaque}, DefaultWhiteThreshold)

	if r.Mode != ModeAlpha {
		t.Errorf("Mode: got %v, want alpha", r.Mode)
	}
	if a := r.Image.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("white pixel alpha: got %d, want 0", a)
	}
	if a := r.Image.NRGBAAt(1, 0).A; a != 255 {
		t.Errorf("dark pixel alpha: got %d, want 255", a)
	}
}

func TestMatte_CustomThreshold(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 1, 1))
	img.SetNRGBA(0, 0, color.NRGBA{230, 230, 230, 255})

	if a := Matte(&Raster{Image: img, Mode: ModeAlpha}, DefaultWhiteThreshold).Image.NRGBAAt(0, 0).A; a != 255 {
		t.Errorf("default threshold should keep light gray, alpha %d", a)
	}
	if a := Matte(&Raster{Image: img, Mode: ModeAlpha}, 220).Image.NRGBAAt(0, 0).A; a != 0 {
		t.Errorf("threshold 220 should clear light gray, alpha %d", a)
	}
}

func TestMatte_Large(t *testing.T) {
	// Tall enough for bild/parallel to split the rows across goroutines.
	r := Matte(createGradientRaster(16, 4096), DefaultWhiteThreshold)
	for y := 0; y < 4096; y++ {
		c := r.Image.NRGBAAt(15, y)
		if c.R > 250 && c.G > 250 && c.B > 250 && c.A != 0 {
			t.Fatalf("row %d not matted", y)
		}
	}
}
