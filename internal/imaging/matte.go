package imaging

import (
	"github.com/anthonynsimon/bild/parallel"
)

// DefaultWhiteThreshold is the channel value a pixel must exceed on all of
// R, G and B to be treated as background. 250 rather than 255 so that the
// anti-aliased fringe around a product on white is cleared too.
const DefaultWhiteThreshold uint8 = 250

// Matte makes near-white pixels of r fully transparent.
//
// r is promoted to ModeAlpha first. Every pixel with R, G and B all greater
// than threshold gets alpha 0; every other pixel is left untouched. RGB
// values are never altered, so matting an already matted raster changes
// nothing.
//
// Matte works in place and returns r.
func Matte(r *Raster, threshold uint8) *Raster {
	r.Promote()

	img := r.Image
	b := img.Bounds()
	w := b.Dx()

	parallel.Line(b.Dy(), func(start, end int) {
		for y := start; y < end; y++ {
			i := img.PixOffset(b.Min.X, b.Min.Y+y)
			row := img.Pix[i : i+w*4 : i+w*4]
			for x := 0; x < len(row); x += 4 {
				if row[x] > threshold && row[x+1] > threshold && row[x+2] > threshold {
					row[x+3] = 0
				}
			}
		}
	})

	return r
}
