// Package layout decides where a product goes on a template.
//
// Two steps are involved. An Analyzer looks at the template's pixels and
// infers a SafeRegion: the vertical band between the template's printed
// header and footer where a product can sit without covering anything.
// Plan then scales the product, keeping its aspect ratio, to fit either
// that band or an explicit RelativeArea, and returns the paste position.
//
// # Coordinates
//
// All positions are in canvas pixels with (0,0) at the top-left corner.
// Plan keeps the exact fractional values the formulas produce; Rect
// truncates them to the integer paste rectangle.
//
// # Warnings
//
// Neither analysis nor planning fails on odd input. A blank or unreadable
// template yields a default split, and an area too small to hold anything
// is clamped to one pixel. Both situations are reported as Warning values
// so callers can trace poor results without aborting the job.
package layout
