package layout

import "fmt"

// WarningKind classifies a non-fatal condition.
type WarningKind string

const (
	// WarnAnalysisDegraded means the safe region is a default split rather
	// than one inferred from the template.
	WarnAnalysisDegraded WarningKind = "analysis_degraded"

	// WarnDegeneratePlacement means the usable area had no room and was
	// clamped to the minimum size.
	WarnDegeneratePlacement WarningKind = "degenerate_placement"
)

// Warning is a condition worth reporting that does not stop a job.
type Warning struct {
	Kind    WarningKind `json:"kind"`
	Message string      `json:"message"`
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Kind, w.Message)
}

// SafeRegion is the vertical band of a template that is free for the product.
//
// When Inferred is true, TopMargin + SafeHeight + BottomMargin equals
// TotalHeight.
type SafeRegion struct {
	TopMargin    int  `json:"top_margin"`
	BottomMargin int  `json:"bottom_margin"`
	SafeHeight   int  `json:"safe_height"`
	TotalHeight  int  `json:"total_height"`
	Inferred     bool `json:"inferred"`
}

// Default split fractions. blankSplit is used when a template has no
// content at all; failedSplit is the more conservative split used when the
// template could not be analyzed.
const (
	blankMarginFraction  = 0.2
	blankSafeFraction    = 0.6
	failedMarginFraction = 0.25
	failedSafeFraction   = 0.5
)

// BlankRegion is the split used for a template without content rows.
func BlankRegion(height int) SafeRegion {
	return fractionRegion(height, blankMarginFraction, blankSafeFraction)
}

// FailedRegion is the split used when analysis could not run.
func FailedRegion(height int) SafeRegion {
	return fractionRegion(height, failedMarginFraction, failedSafeFraction)
}

func fractionRegion(height int, margin, safe float64) SafeRegion {
	h := float64(height)
	return SafeRegion{
		TopMargin:    int(h * margin),
		BottomMargin: int(h * margin),
		SafeHeight:   int(h * safe),
		TotalHeight:  height,
		Inferred:     false,
	}
}

// Analysis is the outcome of analyzing a template.
type Analysis struct {
	Region   SafeRegion `json:"region"`
	Strategy string     `json:"strategy"`
	Warnings []Warning  `json:"warnings,omitempty"`
}

// Degraded reports whether the region is a fallback.
func (a Analysis) Degraded() bool {
	return !a.Region.Inferred
}
