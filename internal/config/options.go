package config

import (
	"image"
	"log/slog"

	"github.com/ironsheep/product-compositor/internal/compose"
	"github.com/ironsheep/product-compositor/internal/imaging"
	"github.com/ironsheep/product-compositor/internal/layout"
	"github.com/ironsheep/product-compositor/internal/ocr"
)

// CompositorOptions builds compose.Options from the matte, analysis and
// output settings. cache may be nil.
func (c *Config) CompositorOptions(logger *slog.Logger, cache *imaging.ImageCache) (compose.Options, error) {
	opts := compose.Options{
		WhiteThreshold: uint8(c.Matte.WhiteThreshold),
		Templates:      cache,
		Logger:         logger,
	}

	if c.Output.Background != "" {
		bg, err := imaging.ParseColor(c.Output.Background)
		if err != nil {
			return compose.Options{}, err
		}
		opts.Background = &bg
	}

	var detector layout.TextDetector
	if c.Analyze.Strategy == layout.StrategyText {
		detector = ocr.Detector{
			Language:       c.Analyze.OCRLanguage,
			MinConfidence:  c.Analyze.OCRMinConfidence,
			TessdataPrefix: c.Analyze.TessdataPrefix,
		}
	}
	analyzer, err := layout.NewAnalyzer(c.Analyze.Strategy, c.Analyze.ContentThreshold, detector)
	if err != nil {
		return compose.Options{}, err
	}
	opts.Analyzer = analyzer

	return opts, nil
}

// Job builds a composite job for product on template, writing into
// outputDir. The profile must have been validated.
func (p Profile) Job(product, template, outputDir string) compose.Job {
	job := compose.Job{
		ProductPath:          product,
		TemplatePath:         template,
		Margin:               p.Margin,
		ExtraMargin:          p.ExtraMargin,
		Format:               imaging.Format(p.Format),
		Matte:                p.Matte,
		RequireAlphaTemplate: p.RequireAlphaTemplate,
		OutputDir:            outputDir,
		OutputPrefix:         p.Prefix,
	}
	if p.Relative != nil {
		rel := *p.Relative
		job.Relative = &rel
		job.Canvas = image.Pt(p.Canvas.Width, p.Canvas.Height)
	}
	return job
}
