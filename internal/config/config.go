package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ironsheep/product-compositor/internal/layout"
)

// Built-in profile names.
const (
	ProfileCatalog = "catalog"
	ProfileSquare  = "square"
	ProfileWeb     = "web"
)

// Environment variables that override file settings.
const (
	EnvLogLevel  = "COMPOSITOR_LOG_LEVEL"
	EnvOutputDir = "COMPOSITOR_OUTPUT_DIR"
	EnvAddr      = "COMPOSITOR_ADDR"
)

// Config represents the complete compositor configuration
type Config struct {
	LogLevel       string             `yaml:"log_level"`       // debug, info, warn, error
	DefaultProfile string             `yaml:"default_profile"` // profile used by apply and batch
	Matte          MatteConfig        `yaml:"matte"`
	Analyze        AnalyzeConfig      `yaml:"analyze"`
	Output         OutputConfig       `yaml:"output"`
	Batch          BatchConfig        `yaml:"batch"`
	Server         ServerConfig       `yaml:"server"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// MatteConfig contains background removal settings
type MatteConfig struct {
	WhiteThreshold int `yaml:"white_threshold"` // R, G and B above this become transparent
}

// AnalyzeConfig contains template analysis settings
type AnalyzeConfig struct {
	Strategy         string  `yaml:"strategy"`          // luminance, text
	ContentThreshold float64 `yaml:"content_threshold"` // rows darker than this hold content
	OCRLanguage      string  `yaml:"ocr_language"`
	OCRMinConfidence float64 `yaml:"ocr_min_confidence"` // 0.0 to 1.0
	TessdataPrefix   string  `yaml:"tessdata_prefix"`
}

// OutputConfig contains output locations
type OutputConfig struct {
	Dir        string `yaml:"dir"`         // composited images
	ConvertDir string `yaml:"convert_dir"` // PSD to PNG conversions
	Background string `yaml:"background"`  // canvas color, e.g. "#ffffff"; empty for the format default
}

// BatchConfig contains batch execution settings
type BatchConfig struct {
	Workers int `yaml:"workers"` // 0 means one per CPU
}

// ServerConfig contains HTTP upload server settings
type ServerConfig struct {
	Addr            string        `yaml:"addr"`
	UploadDir       string        `yaml:"upload_dir"`
	OutputDir       string        `yaml:"output_dir"`       // processed uploads
	CleanupInterval time.Duration `yaml:"cleanup_interval"` // e.g. "5m"
	MaxAge          time.Duration `yaml:"max_age"`          // uploads older than this are removed
	MaxUploadMB     int64         `yaml:"max_upload_mb"`
	Profile         string        `yaml:"profile"`
}

// Profile is a named set of compositing parameters.
//
// A profile with Relative set places products in that relative area of a
// Canvas sized output; without it products go into the template's safe
// band.
type Profile struct {
	Relative             *layout.RelativeArea `yaml:"relative,omitempty" json:"relative,omitempty"`
	Canvas               Size                 `yaml:"canvas" json:"canvas"`
	Margin               int                  `yaml:"margin" json:"margin"`
	ExtraMargin          int                  `yaml:"extra_margin" json:"extra_margin"`
	Format               string               `yaml:"format" json:"format"` // jpeg, png
	Matte                bool                 `yaml:"matte" json:"matte"`
	Prefix               string               `yaml:"prefix" json:"prefix"`
	RequireAlphaTemplate bool                 `yaml:"require_alpha_template" json:"require_alpha_template"`
}

// Size is a width and height in pixels.
type Size struct {
	Width  int `yaml:"width" json:"width"`
	Height int `yaml:"height" json:"height"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel:       "info",
		DefaultProfile: ProfileCatalog,
		Matte:          MatteConfig{WhiteThreshold: 250},
		Analyze: AnalyzeConfig{
			Strategy:         layout.StrategyLuminance,
			ContentThreshold: layout.DefaultContentThreshold,
			OCRLanguage:      "eng",
		},
		Output: OutputConfig{
			Dir:        "final_output",
			ConvertDir: "png_output",
		},
		Server: ServerConfig{
			Addr:            ":5000",
			UploadDir:       "static/uploads",
			OutputDir:       "output",
			CleanupInterval: 5 * time.Minute,
			MaxAge:          5 * time.Minute,
			MaxUploadMB:     256,
			Profile:         ProfileWeb,
		},
		Profiles: DefaultProfiles(),
	}
}

// DefaultProfiles returns the built-in profiles.
//
//   - catalog: 600x600 JPEG, product centered at (55%, 50%) within 65% of
//     the canvas, 20px margin.
//   - square: 800x800 transparent PNG, product centered within 80% and
//     never enlarged.
//   - web: template-sized JPEG, product matted and fitted into the
//     template's safe band; the template must have transparency.
func DefaultProfiles() map[string]Profile {
	return map[string]Profile{
		ProfileCatalog: {
			Relative: &layout.RelativeArea{CenterX: 0.55, CenterY: 0.5, MaxWidth: 0.65, MaxHeight: 0.65},
			Canvas:   Size{Width: 600, Height: 600},
			Margin:   20,
			Format:   "jpeg",
			Prefix:   "final_",
		},
		ProfileSquare: {
			Relative: &layout.RelativeArea{CenterX: 0.5, CenterY: 0.5, MaxWidth: 0.8, MaxHeight: 0.8, NoUpscale: true},
			Canvas:   Size{Width: 800, Height: 800},
			Format:   "png",
			Prefix:   "final_",
		},
		ProfileWeb: {
			ExtraMargin:          layout.DefaultExtraMargin,
			Format:               "jpeg",
			Matte:                true,
			Prefix:               "processed_",
			RequireAlphaTemplate: true,
		},
	}
}

// Load reads a YAML configuration file on top of Default, applies
// environment overrides and validates the result.
//
// An empty path skips the file. Profiles named in the file replace the
// built-in profile of the same name entirely.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	ApplyEnv(cfg)

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overrides settings from COMPOSITOR_* environment variables.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv(EnvOutputDir); v != "" {
		cfg.Output.Dir = v
	}
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Server.Addr = v
	}
}

// Lookup returns the named profile.
func (c *Config) Lookup(name string) (Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown profile %q", name)
	}
	return p, nil
}
