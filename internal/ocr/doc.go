// Package ocr locates printed text blocks on templates using Tesseract.
//
// The compositor uses it as an optional, more precise way of finding a
// template's header and footer: a Detector returns the bounding boxes of
// text blocks, and the layout package turns them into a safe band.
//
// # Prerequisites
//
// Tesseract must be installed on the system and the binary built with cgo:
//   - Ubuntu/Debian: apt-get install tesseract-ocr libtesseract-dev
//   - macOS: brew install tesseract
//
// Language data files are required for each language:
//   - Ubuntu/Debian: apt-get install tesseract-ocr-eng (for English)
//
// When built without cgo every Detector method returns ErrUnavailable, and
// callers fall back to luminance analysis.
//
// # Performance Considerations
//
// Block-level detection runs a full page segmentation, which takes a
// noticeable fraction of a second on a typical template. Templates are
// usually shared by many jobs, so callers analyze each template once.
package ocr
