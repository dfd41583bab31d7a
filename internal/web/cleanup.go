package web

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"time"
)

// Sweep removes the entries of dir last modified before cutoff and returns
// how many were removed. A missing dir is not an error.
func Sweep(dir string, cutoff time.Time) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	removed := 0
	var errs []error
	for _, e := range entries {
		info, err := e.Info()
		if err != nil {
			// Removed concurrently.
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}
		if err := os.RemoveAll(filepath.Join(dir, e.Name())); err != nil {
			errs = append(errs, err)
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}

// RunCleanup sweeps the upload folder every cleanup interval, removing
// uploads older than the configured max age, until ctx is done. It does
// nothing when the interval is zero.
func (s *Server) RunCleanup(ctx context.Context) {
	if s.cfg.CleanupInterval <= 0 {
		return
	}

	ticker := time.NewTicker(s.cfg.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := Sweep(s.cfg.UploadDir, now.Add(-s.cfg.MaxAge))
			if err != nil {
				s.log.Warn("web: cleanup incomplete", "dir", s.cfg.UploadDir, "removed", n, "error", err)
				continue
			}
			if n > 0 {
				s.log.Debug("web: cleanup", "dir", s.cfg.UploadDir, "removed", n)
			}
		}
	}
}
