package layout

import (
	"errors"
	"fmt"
	"image"

	"github.com/anthonynsimon/bild/parallel"
	"github.com/disintegration/imaging"
	"gonum.org/v1/gonum/stat"
)

// DefaultContentThreshold is the mean row luminance below which a row is
// considered to carry printed content.
const DefaultContentThreshold = 250.0

// Strategy names accepted by NewAnalyzer.
const (
	StrategyLuminance = "luminance"
	StrategyText      = "text"
)

// errNoImage marks analysis of a missing or empty template.
var errNoImage = errors.New("template has no pixels")

// Analyzer infers the safe region of a template.
//
// Implementations never fail: problems are reported through the warnings
// of the returned Analysis.
type Analyzer interface {
	Analyze(template image.Image) Analysis
}

// LuminanceAnalyzer finds the safe band from per-row brightness.
//
// The template is converted to grayscale and the mean luminance of each row
// is computed. Rows darker than Threshold on average hold content. The
// region runs from the first to the last content row: on a typical template
// with a printed header and footer that is the space the product may use.
type LuminanceAnalyzer struct {
	// Threshold is the content cutoff, DefaultContentThreshold if zero.
	Threshold float64
}

// Analyze implements Analyzer.
func (a LuminanceAnalyzer) Analyze(template image.Image) (result Analysis) {
	result.Strategy = StrategyLuminance

	height := 0
	if template != nil {
		height = template.Bounds().Dy()
	}

	defer func() {
		if r := recover(); r != nil {
			result = failedAnalysis(StrategyLuminance, height, fmt.Errorf("analysis panicked: %v", r))
		}
	}()

	means, err := RowLuminance(template)
	if err != nil {
		return failedAnalysis(StrategyLuminance, height, err)
	}

	threshold := a.Threshold
	if threshold <= 0 {
		threshold = DefaultContentThreshold
	}

	first, last := -1, -1
	for y, m := range means {
		if m < threshold {
			if first < 0 {
				first = y
			}
			last = y
		}
	}

	if first < 0 {
		result.Region = BlankRegion(height)
		result.Warnings = []Warning{{
			Kind:    WarnAnalysisDegraded,
			Message: fmt.Sprintf("no content rows below luminance %.0f, using default 20/60/20 split", threshold),
		}}
		return result
	}

	result.Region = SafeRegion{
		TopMargin:    first,
		BottomMargin: height - last,
		SafeHeight:   last - first,
		TotalHeight:  height,
		Inferred:     true,
	}
	return result
}

// RowLuminance returns the mean BT.601 luminance of every row of img.
func RowLuminance(img image.Image) ([]float64, error) {
	if img == nil || img.Bounds().Empty() {
		return nil, errNoImage
	}

	gray := imaging.Grayscale(img)
	w, h := gray.Bounds().Dx(), gray.Bounds().Dy()
	means := make([]float64, h)

	parallel.Line(h, func(start, end int) {
		row := make([]float64, w)
		for y := start; y < end; y++ {
			i := gray.PixOffset(0, y)
			for x := 0; x < w; x++ {
				row[x] = float64(gray.Pix[i])
				i += 4
			}
			means[y] = stat.Mean(row, nil)
		}
	})

	return means, nil
}

func failedAnalysis(strategy string, height int, err error) Analysis {
	return Analysis{
		Region:   FailedRegion(height),
		Strategy: strategy,
		Warnings: []Warning{{
			Kind:    WarnAnalysisDegraded,
			Message: fmt.Sprintf("%v, using default 25/50/25 split", err),
		}},
	}
}

// TextDetector locates blocks of printed text in an image.
type TextDetector interface {
	TextBlocks(img image.Image) ([]image.Rectangle, error)
}

// TextAnalyzer finds the safe band from OCR text blocks.
//
// Blocks whose vertical center lies in the upper half of the template form
// the header, the rest the footer. The band runs from the bottom of the
// lowest header block to the top of the highest footer block. When the
// detector fails, finds nothing, or the blocks leave no band, the
// Fallback analyzer decides and a WarnAnalysisDegraded warning is added.
type TextAnalyzer struct {
	Detector TextDetector
	Fallback LuminanceAnalyzer
}

// Analyze implements Analyzer.
func (a TextAnalyzer) Analyze(template image.Image) Analysis {
	if template == nil || template.Bounds().Empty() {
		return failedAnalysis(StrategyText, 0, errNoImage)
	}

	blocks, err := a.detect(template)
	if err != nil {
		return a.fallback(template, err.Error())
	}
	if len(blocks) == 0 {
		return a.fallback(template, "no text blocks found")
	}

	b := template.Bounds()
	height := b.Dy()
	mid := b.Min.Y + height/2

	top, bottom := b.Min.Y, b.Max.Y
	for _, r := range blocks {
		r = r.Intersect(b)
		if r.Empty() {
			continue
		}
		if (r.Min.Y+r.Max.Y)/2 < mid {
			top = max(top, r.Max.Y)
		} else {
			bottom = min(bottom, r.Min.Y)
		}
	}

	if bottom <= top {
		return a.fallback(template, "text blocks leave no free band")
	}

	top -= b.Min.Y
	bottom -= b.Min.Y
	return Analysis{
		Region: SafeRegion{
			TopMargin:    top,
			BottomMargin: height - bottom,
			SafeHeight:   bottom - top,
			TotalHeight:  height,
			Inferred:     true,
		},
		Strategy: StrategyText,
	}
}

func (a TextAnalyzer) detect(template image.Image) (blocks []image.Rectangle, err error) {
	if a.Detector == nil {
		return nil, errors.New("no text detector configured")
	}
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("text detection panicked: %v", r)
		}
	}()
	blocks, err = a.Detector.TextBlocks(template)
	if err != nil {
		return nil, fmt.Errorf("text detection failed: %w", err)
	}
	return blocks, nil
}

func (a TextAnalyzer) fallback(template image.Image, reason string) Analysis {
	result := a.Fallback.Analyze(template)
	result.Warnings = append([]Warning{{
		Kind:    WarnAnalysisDegraded,
		Message: reason + ", fell back to luminance analysis",
	}}, result.Warnings...)
	return result
}

// NewAnalyzer builds the analyzer for a strategy name.
//
// detector is only used by the text strategy and may be nil otherwise.
func NewAnalyzer(strategy string, threshold float64, detector TextDetector) (Analyzer, error) {
	lum := LuminanceAnalyzer{Threshold: threshold}
	switch strategy {
	case "", StrategyLuminance:
		return lum, nil
	case StrategyText:
		return TextAnalyzer{Detector: detector, Fallback: lum}, nil
	}
	return nil, fmt.Errorf("unknown analysis strategy %q", strategy)
}
