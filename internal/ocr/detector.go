package ocr

import (
	"errors"
	"image"
)

// DefaultLanguage is the Tesseract language used when none is configured.
const DefaultLanguage = "eng"

// ErrUnavailable is returned when the binary was built without Tesseract.
var ErrUnavailable = errors.New("tesseract OCR is not available in this build")

// Block is a detected text block.
type Block struct {
	// Bounds is the bounding box in image coordinates.
	Bounds image.Rectangle `json:"bounds"`

	// Confidence is Tesseract's confidence (0.0 to 1.0) that the block
	// holds text.
	Confidence float64 `json:"confidence"`

	// Text is the recognized content, possibly empty.
	Text string `json:"text,omitempty"`
}

// Detector finds text blocks with Tesseract.
//
// The zero value uses English and keeps every block. A Detector holds no
// Tesseract state and is safe for concurrent use.
type Detector struct {
	// Language is the Tesseract language code, DefaultLanguage if empty.
	Language string

	// MinConfidence drops blocks Tesseract is less sure of (0.0 to 1.0).
	MinConfidence float64

	// TessdataPrefix overrides the directory holding *.traineddata files.
	TessdataPrefix string
}

// TextBlocks returns the bounds of the text blocks in img.
func (d Detector) TextBlocks(img image.Image) ([]image.Rectangle, error) {
	blocks, err := d.Blocks(img)
	if err != nil {
		return nil, err
	}
	rects := make([]image.Rectangle, len(blocks))
	for i, b := range blocks {
		rects[i] = b.Bounds
	}
	return rects, nil
}

// Blocks returns the text blocks in img that meet MinConfidence.
//
// Bounds are translated into img's coordinate space, so they are valid for
// images whose bounds do not start at the origin.
func (d Detector) Blocks(img image.Image) ([]Block, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errors.New("no image to scan")
	}

	blocks, err := d.detect(img)
	if err != nil {
		return nil, err
	}

	offset := img.Bounds().Min
	kept := blocks[:0]
	for _, b := range blocks {
		if b.Confidence < d.MinConfidence {
			continue
		}
		b.Bounds = b.Bounds.Add(offset)
		kept = append(kept, b)
	}
	return kept, nil
}

func (d Detector) language() string {
	if d.Language == "" {
		return DefaultLanguage
	}
	return d.Language
}

// Info describes the OCR backend.
type Info struct {
	Available bool   `json:"available"`
	Version   string `json:"version,omitempty"`
	Backend   string `json:"backend"`
	Error     string `json:"error,omitempty"`
}
