package compose

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Input extension groups for FindInputs.
var (
	PSDExts    = []string{".psd"}
	PNGExts    = []string{".png"}
	JPEGExts   = []string{".jpg", ".jpeg"}
	RasterExts = []string{".psd", ".png", ".jpg", ".jpeg", ".bmp", ".tif", ".tiff", ".webp"}
)

// FindInputs returns the regular files directly inside dir whose extension
// is one of exts, compared case-insensitively. Paths are joined to dir and
// sorted by name.
func FindInputs(dir string, exts ...string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if slices.Contains(exts, ext) {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	return paths, nil
}
