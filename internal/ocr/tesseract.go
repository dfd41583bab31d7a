//go:build cgo

package ocr

import (
	"fmt"
	"image"

	"github.com/otiai10/gosseract/v2"

	"github.com/ironsheep/product-compositor/internal/imaging"
)

const backend = "gosseract"

// detect runs block-level segmentation on img.
//
// The image is handed to Tesseract as an in-memory PNG; returned bounds are
// relative to img's top-left corner.
func (d Detector) detect(img image.Image) ([]Block, error) {
	data, err := imaging.EncodeBytes(img, imaging.PNG)
	if err != nil {
		return nil, fmt.Errorf("failed to encode image for OCR: %w", err)
	}

	client := gosseract.NewClient()
	defer client.Close()

	if d.TessdataPrefix != "" {
		if err := client.SetTessdataPrefix(d.TessdataPrefix); err != nil {
			return nil, fmt.Errorf("failed to set tessdata path: %w", err)
		}
	}

	if err := client.SetLanguage(d.language()); err != nil {
		return nil, fmt.Errorf("failed to set language: %w", err)
	}

	if err := client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	// Block level groups a header or footer into a single box.
	boxes, err := client.GetBoundingBoxes(gosseract.RIL_BLOCK)
	if err != nil {
		return nil, fmt.Errorf("failed to get text blocks: %w", err)
	}

	blocks := make([]Block, 0, len(boxes))
	for _, box := range boxes {
		blocks = append(blocks, Block{
			Bounds:     box.Box,
			Confidence: box.Confidence / 100.0,
			Text:       box.Word,
		})
	}
	return blocks, nil
}

// GetInfo reports the linked Tesseract version.
func GetInfo() Info {
	return Info{
		Available: true,
		Version:   gosseract.Version(),
		Backend:   backend,
	}
}
