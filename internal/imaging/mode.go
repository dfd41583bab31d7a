package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// ColorMode describes whether a raster carries a meaningful alpha channel.
type ColorMode int

const (
	// ModeOpaque marks a raster decoded from a source without alpha.
	ModeOpaque ColorMode = iota
	// ModeAlpha marks a raster whose alpha channel is significant.
	ModeAlpha
)

// String returns "opaque" or "alpha".
func (m ColorMode) String() string {
	if m == ModeAlpha {
		return "alpha"
	}
	return "opaque"
}

// MarshalText lets ColorMode appear as a string in JSON results.
func (m ColorMode) MarshalText() ([]byte, error) {
	return []byte(m.String()), nil
}

// Raster is a decoded image with its declared color mode.
//
// Image always has its origin at (0,0). For ModeOpaque rasters every alpha
// byte is 255.
type Raster struct {
	Image *image.NRGBA
	Mode  ColorMode
}

// Size returns the raster dimensions.
func (r *Raster) Size() image.Point {
	return r.Image.Bounds().Size()
}

// opaquer is implemented by the standard library image types.
type opaquer interface {
	Opaque() bool
}

// DetectMode reports the color mode img was declared with.
//
// The concrete type a decoder returns carries the declaration: PNG color
// types with alpha (and tRNS chunks) decode to NRGBA, GIF and 8-bit PNG
// transparency shows up in the palette, JPEG decodes to YCbCr or Gray. A
// declared alpha channel counts even when every pixel is fully opaque.
//
// RGBA and RGBA64 are ambiguous: PNG decodes plain RGB into them. Those
// are judged by their pixels.
func DetectMode(img image.Image) ColorMode {
	switch m := img.(type) {
	case *image.NRGBA, *image.NRGBA64, *image.NYCbCrA, *image.Alpha, *image.Alpha16:
		return ModeAlpha
	case *image.Gray, *image.Gray16, *image.YCbCr, *image.CMYK:
		return ModeOpaque
	case *image.Paletted:
		for _, c := range m.Palette {
			if _, _, _, a := c.RGBA(); a != 0xffff {
				return ModeAlpha
			}
		}
		return ModeOpaque
	case opaquer:
		if m.Opaque() {
			return ModeOpaque
		}
		return ModeAlpha
	}

	switch img.ColorModel() {
	case color.RGBAModel, color.NRGBAModel, color.RGBA64Model, color.NRGBA64Model,
		color.AlphaModel, color.Alpha16Model:
		return ModeAlpha
	}
	return ModeOpaque
}

// NewRaster copies img into a fresh NRGBA buffer and records its mode.
func NewRaster(img image.Image) *Raster {
	return newRaster(img, DetectMode(img))
}

// newRaster copies img with a mode the caller already knows.
func newRaster(img image.Image, mode ColorMode) *Raster {
	r := &Raster{
		Image: imaging.Clone(img),
		Mode:  mode,
	}
	if r.Mode == ModeOpaque {
		fillOpaque(r.Image)
	}
	return r
}

// Promote converts r to ModeAlpha in place and returns it.
//
// Opaque rasters get alpha 255 on every pixel. Promoting an alpha raster
// is a no-op.
func (r *Raster) Promote() *Raster {
	if r.Mode == ModeAlpha {
		return r
	}
	fillOpaque(r.Image)
	r.Mode = ModeAlpha
	return r
}

func fillOpaque(img *image.NRGBA) {
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		i := img.PixOffset(b.Min.X, y)
		for x := 0; x < b.Dx(); x++ {
			img.Pix[i+3] = 0xff
			i += 4
		}
	}
}
