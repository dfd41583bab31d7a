package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/google/renameio/v2"
)

// JPEGQuality is the fixed quality used for every JPEG output.
const JPEGQuality = 95

// Format is an output encoding.
type Format string

const (
	// JPEG output is always opaque.
	JPEG Format = "jpeg"
	// PNG output keeps the alpha channel.
	PNG Format = "png"
)

// ErrUnsupportedFormat is returned for output formats other than JPEG and PNG.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// ParseFormat accepts "jpeg", "jpg" or "png" in any case.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), ".")) {
	case "jpeg", "jpg":
		return JPEG, nil
	case "png":
		return PNG, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
}

// Ext returns the file extension written for f.
func (f Format) Ext() string {
	if f == PNG {
		return ".png"
	}
	return ".jpg"
}

// MimeType returns the media type for f.
func (f Format) MimeType() string {
	if f == PNG {
		return "image/png"
	}
	return "image/jpeg"
}

// Opaque reports whether f drops the alpha channel.
func (f Format) Opaque() bool {
	return f != PNG
}

// Encode writes img to w as f. JPEG uses quality 95.
func Encode(w io.Writer, img image.Image, f Format) error {
	switch f {
	case JPEG:
		return imaging.Encode(w, img, imaging.JPEG, imaging.JPEGQuality(JPEGQuality))
	case PNG:
		return imaging.Encode(w, img, imaging.PNG)
	}
	return fmt.Errorf("%w: %q", ErrUnsupportedFormat, f)
}

// EncodeBytes encodes img as f into memory.
func EncodeBytes(img image.Image, f Format) ([]byte, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, img, f); err != nil {
		return nil, fmt.Errorf("failed to encode %s: %w", f, err)
	}
	return buf.Bytes(), nil
}

// WriteFile encodes img as f and replaces path atomically.
//
// The data goes to a temporary file in the destination directory which is
// renamed over path only after it was fully written, so readers never see
// a partial image. The parent directory is created if missing. The encoded
// bytes are returned for callers that also want a preview.
func WriteFile(path string, img image.Image, f Format) ([]byte, error) {
	data, err := EncodeBytes(img, f)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	if err := renameio.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return data, nil
}

// Preview is an encoded image ready to embed in a JSON response.
type Preview struct {
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	ImageBase64 string `json:"image_base64"`
	MimeType    string `json:"mime_type"`
}

// NewPreview wraps already encoded data.
func NewPreview(data []byte, size image.Point, f Format) *Preview {
	return &Preview{
		Width:       size.X,
		Height:      size.Y,
		ImageBase64: base64.StdEncoding.EncodeToString(data),
		MimeType:    f.MimeType(),
	}
}

// DataURI returns the preview as a "data:" URI usable in an <img> tag.
func (p *Preview) DataURI() string {
	return "data:" + p.MimeType + ";base64," + p.ImageBase64
}
