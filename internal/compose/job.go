package compose

import (
	"image"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/ironsheep/product-compositor/internal/imaging"
	"github.com/ironsheep/product-compositor/internal/layout"
)

// Job describes one product to composite onto one template.
type Job struct {
	// ID identifies the job in logs and results. A UUID is assigned when
	// empty.
	ID string

	ProductPath  string
	TemplatePath string

	// Relative selects relative-area placement. When nil the product goes
	// into the safe band inferred from the template.
	Relative *layout.RelativeArea

	// Canvas is the output size in relative mode; the template is resized
	// to it. Zero means the template's own size. Safe-band jobs always use
	// the template size.
	Canvas image.Point

	// Margin is the minimum distance in pixels between the product and the
	// canvas edges.
	Margin int

	// ExtraMargin insets the product inside the safe band.
	ExtraMargin int

	// Format is the output encoding, JPEG if empty.
	Format imaging.Format

	// Matte strips the product's near-white background before pasting.
	Matte bool

	// RequireAlphaTemplate rejects templates without transparency with
	// ErrInvalidTemplate.
	RequireAlphaTemplate bool

	// OutputDir and OutputPrefix locate the output file; see OutputPath.
	OutputDir    string
	OutputPrefix string

	// KeepBytes retains the encoded output in Result.Data.
	KeepBytes bool
}

// Name returns the product's file name.
func (j Job) Name() string {
	return filepath.Base(j.ProductPath)
}

// OutputFormat returns the effective output format.
func (j Job) OutputFormat() imaging.Format {
	if j.Format == "" {
		return imaging.JPEG
	}
	return j.Format
}

// OutputPath is OutputDir/OutputPrefix + product base name + format
// extension, e.g. "out/final_shoe.jpg" for "in/shoe.psd".
func (j Job) OutputPath() string {
	return outputPath(j.OutputDir, j.OutputPrefix, j.ProductPath, j.OutputFormat())
}

func (j Job) withID() Job {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return j
}

// ConvertJob flattens one PSD or raster file to a PNG with transparency.
type ConvertJob struct {
	ID         string
	SourcePath string
	OutputDir  string

	// Matte strips the near-white background while converting.
	Matte bool

	KeepBytes bool
}

// Name returns the source's file name.
func (j ConvertJob) Name() string {
	return filepath.Base(j.SourcePath)
}

// OutputPath is OutputDir + source base name with a ".png" extension.
func (j ConvertJob) OutputPath() string {
	return outputPath(j.OutputDir, "", j.SourcePath, imaging.PNG)
}

func (j ConvertJob) withID() ConvertJob {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return j
}

func outputPath(dir, prefix, source string, f imaging.Format) string {
	base := filepath.Base(source)
	stem := strings.TrimSuffix(base, filepath.Ext(base))
	return filepath.Join(dir, prefix+stem+f.Ext())
}

// Result describes a finished job.
type Result struct {
	JobID      string         `json:"job_id"`
	Source     string         `json:"source"`
	OutputPath string         `json:"output_path"`
	Format     imaging.Format `json:"format"`
	Width      int            `json:"width"`
	Height     int            `json:"height"`

	// Placement is zero for conversions.
	Placement layout.Placement `json:"placement"`

	// Region is the analyzed safe band, nil in relative mode.
	Region   *layout.SafeRegion `json:"safe_region,omitempty"`
	Strategy string             `json:"analysis_strategy,omitempty"`

	// Warnings collects analysis and placement warnings.
	Warnings []layout.Warning `json:"warnings,omitempty"`

	// Data is the encoded output when the job asked for it.
	Data []byte `json:"-"`
}

// Preview wraps Data for embedding in a response, or returns nil.
func (r *Result) Preview() *imaging.Preview {
	if len(r.Data) == 0 {
		return nil
	}
	return imaging.NewPreview(r.Data, image.Pt(r.Width, r.Height), r.Format)
}
