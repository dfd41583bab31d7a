package compose

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/ironsheep/product-compositor/internal/imaging"
)

// Job failure kinds. Every error returned by a Compositor wraps exactly one
// of them; test with errors.Is.
var (
	// ErrInputNotFound means a product or template file does not exist.
	ErrInputNotFound = errors.New("input not found")

	// ErrInvalidTemplate means the template failed the color mode check of
	// a flow that requires transparency.
	ErrInvalidTemplate = errors.New("invalid template")

	// ErrDecode means an input file exists but could not be decoded.
	ErrDecode = errors.New("decode failed")

	// ErrEncode means the output could not be encoded or written.
	ErrEncode = errors.New("encode failed")
)

// Summary returns the short message shown to external callers for err.
//
// Detail such as file system paths and decoder messages stays in the full
// error chain, which is logged instead.
func Summary(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInputNotFound):
		return "input file not found"
	case errors.Is(err, ErrInvalidTemplate):
		return "template must be a PNG with transparency"
	case errors.Is(err, ErrDecode):
		return "could not read image file"
	case errors.Is(err, imaging.ErrUnsupportedFormat):
		return "unsupported output format"
	case errors.Is(err, ErrEncode):
		return "could not write output image"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "cancelled before processing"
	}
	return "processing failed"
}

// inputError classifies a failure to load the input file at path.
func inputError(err error, path, role string) error {
	name := filepath.Base(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: %s %s: %w", ErrInputNotFound, role, name, err)
	}
	return fmt.Errorf("%w: %s %s: %w", ErrDecode, role, name, err)
}
