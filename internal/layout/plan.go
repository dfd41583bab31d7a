package layout

import (
	"errors"
	"fmt"
	"image"
	"math"
)

// DefaultExtraMargin is the inset applied inside a safe band.
const DefaultExtraMargin = 20

var (
	// ErrEmptyProduct is returned for a product with no pixels.
	ErrEmptyProduct = errors.New("product has zero width or height")

	// ErrEmptyCanvas is returned for a canvas with no pixels.
	ErrEmptyCanvas = errors.New("canvas has zero width or height")

	// ErrNoArea is returned when an Area names neither a band nor a
	// relative rectangle.
	ErrNoArea = errors.New("placement area is not set")
)

// RelativeArea is a placement target expressed as fractions of the canvas.
type RelativeArea struct {
	// CenterX and CenterY locate the product center (0.5 is the middle).
	CenterX float64 `json:"center_x" yaml:"center_x"`
	CenterY float64 `json:"center_y" yaml:"center_y"`

	// MaxWidth and MaxHeight bound the scaled product.
	MaxWidth  float64 `json:"max_width" yaml:"max_width"`
	MaxHeight float64 `json:"max_height" yaml:"max_height"`

	// NoUpscale keeps products smaller than the area at their natural size.
	NoUpscale bool `json:"no_upscale,omitempty" yaml:"no_upscale"`
}

// Area is the target a product is fitted into. Exactly one of Band and
// Relative is set; use BandArea or RelativeTo to build one.
type Area struct {
	Band *SafeRegion
	// ExtraMargin insets the product inside Band on every side.
	ExtraMargin int
	Relative    *RelativeArea
}

// BandArea targets a safe band spanning the full canvas width.
func BandArea(region SafeRegion, extraMargin int) Area {
	return Area{Band: &region, ExtraMargin: extraMargin}
}

// RelativeTo targets a rectangle relative to the canvas.
func RelativeTo(rel RelativeArea) Area {
	return Area{Relative: &rel}
}

// Placement is where and how large the product is pasted.
type Placement struct {
	// Scale is the ratio of the pasted width to the product width.
	Scale float64 `json:"scale"`

	// Width, Height, X and Y are the exact values of the placement
	// formulas; X and Y are the top-left corner.
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`

	Warnings []Warning `json:"warnings,omitempty"`
}

// Rect returns the integer paste rectangle. Values are truncated toward
// zero and sizes are at least one pixel.
func (p Placement) Rect() image.Rectangle {
	x, y := int(p.X), int(p.Y)
	w, h := max(int(p.Width), 1), max(int(p.Height), 1)
	return image.Rect(x, y, x+w, y+h)
}

// Plan fits a product of the given size into area on a canvas.
//
// The product's aspect ratio is always preserved. In band mode the product
// fills the band (inset by ExtraMargin) along whichever axis binds, is
// centered horizontally and sits at the top of the band. In relative mode it
// is scaled to fit MaxWidth x MaxHeight of the canvas and centered on
// (CenterX, CenterY).
//
// In both modes the position is then clamped so the product keeps margin
// pixels from every canvas edge whenever the canvas is large enough; when
// it is not, the nearest feasible position wins over rejection.
//
// A usable area of zero or less is clamped to one pixel and reported as a
// WarnDegeneratePlacement warning.
func Plan(product image.Point, area Area, canvas image.Point, margin int) (Placement, error) {
	if product.X <= 0 || product.Y <= 0 {
		return Placement{}, fmt.Errorf("%w: %dx%d", ErrEmptyProduct, product.X, product.Y)
	}
	if canvas.X <= 0 || canvas.Y <= 0 {
		return Placement{}, fmt.Errorf("%w: %dx%d", ErrEmptyCanvas, canvas.X, canvas.Y)
	}

	var p Placement
	switch {
	case area.Band != nil:
		p = planBand(product, *area.Band, float64(area.ExtraMargin), canvas)
	case area.Relative != nil:
		p = planRelative(product, *area.Relative, canvas)
	default:
		return Placement{}, ErrNoArea
	}

	m := float64(margin)
	cw, ch := float64(canvas.X), float64(canvas.Y)
	p.X = clamp(p.X, m, cw-p.Width-m)
	p.Y = clamp(p.Y, m, ch-p.Height-m)

	return p, nil
}

func planBand(product image.Point, band SafeRegion, extra float64, canvas image.Point) Placement {
	var p Placement
	cw, ch := float64(canvas.X), float64(canvas.Y)
	top, bottom := float64(band.TopMargin), float64(band.BottomMargin)

	usableH := float64(band.SafeHeight) - 2*extra
	usableW := cw - 2*extra
	usableW, usableH = p.atLeastOne(usableW, usableH, "safe band")

	ratio := float64(product.X) / float64(product.Y)
	if usableW/usableH > ratio {
		p.Height = usableH
		p.Width = p.Height * ratio
	} else {
		p.Width = usableW
		p.Height = p.Width / ratio
	}
	p.Scale = p.Width / float64(product.X)

	p.X = (cw - p.Width) / 2
	p.Y = clamp(top+extra, top+extra, ch-bottom-p.Height-extra)
	return p
}

func planRelative(product image.Point, rel RelativeArea, canvas image.Point) Placement {
	var p Placement
	cw, ch := float64(canvas.X), float64(canvas.Y)

	maxW, maxH := p.atLeastOne(cw*rel.MaxWidth, ch*rel.MaxHeight, "relative area")

	p.Scale = math.Min(maxW/float64(product.X), maxH/float64(product.Y))
	if rel.NoUpscale {
		p.Scale = math.Min(p.Scale, 1)
	}
	p.Width = float64(product.X) * p.Scale
	p.Height = float64(product.Y) * p.Scale

	p.X = cw*rel.CenterX - p.Width/2
	p.Y = ch*rel.CenterY - p.Height/2
	return p
}

// atLeastOne clamps a usable width and height to one pixel, recording a
// warning when it had to.
func (p *Placement) atLeastOne(w, h float64, what string) (float64, float64) {
	if w > 0 && h > 0 {
		return w, h
	}
	p.Warnings = append(p.Warnings, Warning{
		Kind:    WarnDegeneratePlacement,
		Message: fmt.Sprintf("%s leaves %.1fx%.1f usable pixels, clamped to at least 1x1", what, w, h),
	})
	return math.Max(w, 1), math.Max(h, 1)
}

// clamp returns max(lo, min(v, hi)); lo wins when the range is empty.
func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(v, hi))
}
