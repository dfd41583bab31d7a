package imaging

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
)

// Resize scales img to size with the Lanczos filter.
//
// Callers are expected to have preserved the aspect ratio in size already.
// Sizes below one pixel are raised to one.
func Resize(img image.Image, size image.Point) *image.NRGBA {
	return imaging.Resize(img, max(size.X, 1), max(size.Y, 1), imaging.Lanczos)
}

// NewCanvas returns a size canvas filled with bg.
func NewCanvas(size image.Point, bg color.Color) *image.NRGBA {
	return imaging.New(size.X, size.Y, bg)
}

// Paste draws src over dst with its top-left corner at pos, blending by
// src's alpha. dst is left untouched; the composited image is returned.
//
// Parts of src outside dst are clipped.
func Paste(dst, src image.Image, pos image.Point) *image.NRGBA {
	return imaging.Overlay(dst, src, pos, 1.0)
}
