package compose

import (
	"fmt"
	"image"
	"image/color"
	"log/slog"

	"github.com/ironsheep/product-compositor/internal/imaging"
	"github.com/ironsheep/product-compositor/internal/layout"
)

// Options configures a Compositor. The zero value is usable.
type Options struct {
	// WhiteThreshold is the matte cutoff, imaging.DefaultWhiteThreshold if
	// zero.
	WhiteThreshold uint8

	// Background fills the canvas under the template. When nil, JPEG
	// output gets white and PNG output stays transparent. JPEG output is
	// always opaque: a translucent Background is used at full opacity.
	Background *color.NRGBA

	// Analyzer infers safe bands, a LuminanceAnalyzer if nil.
	Analyzer layout.Analyzer

	// Templates caches decoded templates across jobs. Optional.
	Templates *imaging.ImageCache

	// Logger receives job progress, slog.Default() if nil.
	Logger *slog.Logger
}

// Compositor runs composite and convert jobs.
//
// A Compositor holds no per-job state and is safe for concurrent use.
type Compositor struct {
	opts Options
	log  *slog.Logger
}

// New creates a Compositor.
func New(opts Options) *Compositor {
	if opts.WhiteThreshold == 0 {
		opts.WhiteThreshold = imaging.DefaultWhiteThreshold
	}
	if opts.Analyzer == nil {
		opts.Analyzer = layout.LuminanceAnalyzer{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Compositor{opts: opts, log: log}
}

// Composite pastes the job's product onto its template and writes the
// result to job.OutputPath().
//
// The steps are: decode both inputs, optionally matte the product, pick the
// placement area (the job's relative area, or the safe band inferred from
// the template), plan the placement, then draw the canvas background, the
// template and the resized product in that order and encode the canvas.
// The output file is replaced atomically, so a failed job never leaves a
// partial file behind.
//
// Analysis and placement problems do not fail the job; they are reported
// in Result.Warnings.
func (c *Compositor) Composite(job Job) (res *Result, err error) {
	job = job.withID()
	log := c.log.With("job", job.ID, "product", job.Name())

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("composite %s panicked: %v", job.Name(), r)
		}
	}()

	format := job.OutputFormat()
	if _, err := imaging.ParseFormat(string(format)); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}

	product, err := imaging.Open(job.ProductPath)
	if err != nil {
		return nil, inputError(err, job.ProductPath, "product")
	}
	template, err := c.loadTemplate(job.TemplatePath)
	if err != nil {
		return nil, inputError(err, job.TemplatePath, "template")
	}
	if job.RequireAlphaTemplate && template.Mode != imaging.ModeAlpha {
		return nil, fmt.Errorf("%w: %s has no transparency (mode %s)",
			ErrInvalidTemplate, job.TemplatePath, template.Mode)
	}

	if job.Matte {
		imaging.Matte(product, c.opts.WhiteThreshold)
	} else {
		product.Promote()
	}

	res = &Result{
		JobID:  job.ID,
		Source: job.Name(),
		Format: format,
	}

	background := image.Image(template.Image)
	canvas := template.Size()
	var area layout.Area

	if job.Relative != nil {
		if job.Canvas.X > 0 && job.Canvas.Y > 0 {
			canvas = job.Canvas
		}
		if canvas != template.Size() {
			background = imaging.Resize(template.Image, canvas)
		}
		area = layout.RelativeTo(*job.Relative)
	} else {
		analysis := c.opts.Analyzer.Analyze(template.Image)
		res.Region = &analysis.Region
		res.Strategy = analysis.Strategy
		res.Warnings = append(res.Warnings, analysis.Warnings...)
		area = layout.BandArea(analysis.Region, job.ExtraMargin)
	}

	placement, err := layout.Plan(product.Size(), area, canvas, job.Margin)
	if err != nil {
		return nil, fmt.Errorf("failed to place %s: %w", job.Name(), err)
	}
	res.Placement = placement
	res.Warnings = append(res.Warnings, placement.Warnings...)

	rect := placement.Rect()
	out := imaging.NewCanvas(canvas, c.background(format))
	out = imaging.Paste(out, background, image.Point{})
	out = imaging.Paste(out, imaging.Resize(product.Image, rect.Size()), rect.Min)

	res.OutputPath = job.OutputPath()
	res.Width, res.Height = canvas.X, canvas.Y

	data, err := imaging.WriteFile(res.OutputPath, out, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if job.KeepBytes {
		res.Data = data
	}

	for _, w := range res.Warnings {
		log.Warn("compose: "+string(w.Kind), "message", w.Message)
	}
	log.Debug("compose: wrote output",
		"output", res.OutputPath,
		"scale", placement.Scale,
		"rect", rect.String(),
	)
	return res, nil
}

// Convert flattens the job's source to a PNG, optionally stripping its
// near-white background.
func (c *Compositor) Convert(job ConvertJob) (res *Result, err error) {
	job = job.withID()

	defer func() {
		if r := recover(); r != nil {
			res, err = nil, fmt.Errorf("convert %s panicked: %v", job.Name(), r)
		}
	}()

	src, err := imaging.Open(job.SourcePath)
	if err != nil {
		return nil, inputError(err, job.SourcePath, "source")
	}
	if job.Matte {
		imaging.Matte(src, c.opts.WhiteThreshold)
	}

	size := src.Size()
	res = &Result{
		JobID:      job.ID,
		Source:     job.Name(),
		OutputPath: job.OutputPath(),
		Format:     imaging.PNG,
		Width:      size.X,
		Height:     size.Y,
	}

	data, err := imaging.WriteFile(res.OutputPath, src.Image, imaging.PNG)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncode, err)
	}
	if job.KeepBytes {
		res.Data = data
	}

	c.log.Debug("compose: converted", "job", job.ID, "source", job.Name(), "output", res.OutputPath)
	return res, nil
}

// AnalyzeTemplate runs the configured analyzer on the template at path.
func (c *Compositor) AnalyzeTemplate(path string) (layout.Analysis, image.Point, error) {
	template, err := c.loadTemplate(path)
	if err != nil {
		return layout.Analysis{}, image.Point{}, inputError(err, path, "template")
	}
	return c.opts.Analyzer.Analyze(template.Image), template.Size(), nil
}

// loadTemplate decodes a template, through the cache when one is set.
// Cached rasters are shared and must not be modified.
func (c *Compositor) loadTemplate(path string) (*imaging.Raster, error) {
	if c.opts.Templates != nil {
		return c.opts.Templates.Load(path)
	}
	return imaging.Open(path)
}

func (c *Compositor) background(f imaging.Format) color.NRGBA {
	if c.opts.Background == nil {
		if f.Opaque() {
			return imaging.White
		}
		return imaging.Transparent
	}
	bg := *c.opts.Background
	if f.Opaque() {
		bg.A = 0xff
	}
	return bg
}
