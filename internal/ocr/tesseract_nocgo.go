//go:build !cgo

package ocr

import "image"

func (d Detector) detect(image.Image) ([]Block, error) {
	return nil, ErrUnavailable
}

// GetInfo reports that OCR is unavailable.
func GetInfo() Info {
	return Info{
		Available: false,
		Backend:   "none",
		Error:     ErrUnavailable.Error(),
	}
}
