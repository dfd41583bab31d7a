package config

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/ironsheep/product-compositor/internal/imaging"
	"github.com/ironsheep/product-compositor/internal/layout"
)

// Validate checks if the configuration is valid, filling defaults for
// unset values.
func Validate(cfg *Config) error {
	if _, err := ParseLevel(cfg.LogLevel); err != nil {
		return err
	}

	// Matte
	if cfg.Matte.WhiteThreshold == 0 {
		cfg.Matte.WhiteThreshold = int(imaging.DefaultWhiteThreshold)
	}
	if cfg.Matte.WhiteThreshold < 1 || cfg.Matte.WhiteThreshold > 254 {
		return fmt.Errorf("matte.white_threshold must be between 1 and 254 (0 selects the default %d), got %d",
			imaging.DefaultWhiteThreshold, cfg.Matte.WhiteThreshold)
	}

	// Analysis
	if cfg.Analyze.Strategy == "" {
		cfg.Analyze.Strategy = layout.StrategyLuminance
	}
	if _, err := layout.NewAnalyzer(cfg.Analyze.Strategy, 0, nil); err != nil {
		return fmt.Errorf("analyze.strategy: %w", err)
	}
	if cfg.Analyze.ContentThreshold == 0 {
		cfg.Analyze.ContentThreshold = layout.DefaultContentThreshold
	}
	if cfg.Analyze.ContentThreshold < 0 || cfg.Analyze.ContentThreshold > 255 {
		return fmt.Errorf("analyze.content_threshold must be in (0, 255], got %v", cfg.Analyze.ContentThreshold)
	}
	if cfg.Analyze.OCRMinConfidence < 0 || cfg.Analyze.OCRMinConfidence > 1 {
		return fmt.Errorf("analyze.ocr_min_confidence must be in [0, 1], got %v", cfg.Analyze.OCRMinConfidence)
	}

	// Output
	if cfg.Output.Dir == "" {
		cfg.Output.Dir = "final_output"
	}
	if cfg.Output.ConvertDir == "" {
		cfg.Output.ConvertDir = "png_output"
	}
	if cfg.Output.Background != "" {
		if _, err := imaging.ParseColor(cfg.Output.Background); err != nil {
			return fmt.Errorf("output.background: %w", err)
		}
	}

	if cfg.Batch.Workers < 0 {
		return fmt.Errorf("batch.workers must be >= 0, got %d", cfg.Batch.Workers)
	}

	// Server
	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":5000"
	}
	if cfg.Server.UploadDir == "" {
		cfg.Server.UploadDir = "static/uploads"
	}
	if cfg.Server.OutputDir == "" {
		cfg.Server.OutputDir = "output"
	}
	if cfg.Server.CleanupInterval < 0 || cfg.Server.MaxAge < 0 {
		return fmt.Errorf("server.cleanup_interval and server.max_age must not be negative")
	}
	if cfg.Server.MaxUploadMB <= 0 {
		cfg.Server.MaxUploadMB = 256
	}
	if cfg.Server.Profile == "" {
		cfg.Server.Profile = ProfileWeb
	}

	// Profiles
	if len(cfg.Profiles) == 0 {
		cfg.Profiles = DefaultProfiles()
	}
	names := make([]string, 0, len(cfg.Profiles))
	for name := range cfg.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		p := cfg.Profiles[name]
		if err := ValidateProfile(&p); err != nil {
			return fmt.Errorf("profile '%s': %w", name, err)
		}
		cfg.Profiles[name] = p
	}

	if cfg.DefaultProfile == "" {
		cfg.DefaultProfile = ProfileCatalog
	}
	if _, ok := cfg.Profiles[cfg.DefaultProfile]; !ok {
		return fmt.Errorf("default_profile '%s' not found in profiles", cfg.DefaultProfile)
	}
	if _, ok := cfg.Profiles[cfg.Server.Profile]; !ok {
		return fmt.Errorf("server.profile '%s' not found in profiles", cfg.Server.Profile)
	}

	return nil
}

// ValidateProfile checks a single profile, defaulting its format to JPEG.
func ValidateProfile(p *Profile) error {
	if p.Format == "" {
		p.Format = string(imaging.JPEG)
	}
	f, err := imaging.ParseFormat(p.Format)
	if err != nil {
		return err
	}
	p.Format = string(f)

	if p.Margin < 0 {
		return fmt.Errorf("margin must be >= 0, got %d", p.Margin)
	}
	if p.ExtraMargin < 0 {
		return fmt.Errorf("extra_margin must be >= 0, got %d", p.ExtraMargin)
	}
	if p.Canvas.Width < 0 || p.Canvas.Height < 0 {
		return fmt.Errorf("canvas must not be negative, got %dx%d", p.Canvas.Width, p.Canvas.Height)
	}
	if (p.Canvas.Width == 0) != (p.Canvas.Height == 0) {
		return fmt.Errorf("canvas needs both width and height, got %dx%d", p.Canvas.Width, p.Canvas.Height)
	}

	if rel := p.Relative; rel != nil {
		if rel.CenterX < 0 || rel.CenterX > 1 || rel.CenterY < 0 || rel.CenterY > 1 {
			return fmt.Errorf("relative center must be within [0, 1], got (%v, %v)", rel.CenterX, rel.CenterY)
		}
		if rel.MaxWidth <= 0 || rel.MaxWidth > 1 || rel.MaxHeight <= 0 || rel.MaxHeight > 1 {
			return fmt.Errorf("relative max size must be within (0, 1], got %vx%v", rel.MaxWidth, rel.MaxHeight)
		}
	}
	return nil
}

// ParseLevel maps a log level name to a slog.Level. Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q (must be debug, info, warn or error)", s)
}
