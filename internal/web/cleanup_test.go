package web

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func touch(t *testing.T, path string, age time.Duration) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("x"), 0644); err != nil {
		t.Fatal(err)
	}
	mtime := time.Now().Add(-age)
	if err := os.Chtimes(path, mtime, mtime); err != nil {
		t.Fatal(err)
	}
}

func TestSweep(t *testing.T) {
	dir := t.TempDir()
	touch(t, filepath.Join(dir, "old.psd"), 10*time.Minute)
	touch(t, filepath.Join(dir, "new.psd"), time.Second)
	touch(t, filepath.Join(dir, "req", "shoe.psd"), 10*time.Minute)
	// Directory times are set after their contents were written.
	old := time.Now().Add(-10 * time.Minute)
	if err := os.Chtimes(filepath.Join(dir, "req"), old, old); err != nil {
		t.Fatal(err)
	}

	n, err := Sweep(dir, time.Now().Add(-5*time.Minute))
	if err != nil {
		t.Fatalf("Sweep failed: %v", err)
	}
	if n != 2 {
		t.Errorf("removed: got %d, want 2", n)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 1 || entries[0].Name() != "new.psd" {
		t.Errorf("remaining entries: %v", entries)
	}
}

func TestSweep_MissingDir(t *testing.T) {
	n, err := Sweep(filepath.Join(t.TempDir(), "none"), time.Now())
	if err != nil || n != 0 {
		t.Errorf("got %d, %v", n, err)
	}
}

func TestRunCleanup(t *testing.T) {
	s, _ := newTestServer(t)
	s.cfg.CleanupInterval = 10 * time.Millisecond
	s.cfg.MaxAge = time.Minute

	stale := filepath.Join(s.cfg.UploadDir, "stale.psd")
	fresh := filepath.Join(s.cfg.UploadDir, "fresh.psd")
	touch(t, stale, time.Hour)
	touch(t, fresh, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.RunCleanup(ctx)
		close(done)
	}()

	deadline := time.Now().Add(5 * time.Second)
	for {
		if _, err := os.Stat(stale); os.IsNotExist(err) {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("stale upload was not removed")
		}
		time.Sleep(5 * time.Millisecond)
	}

	cancel()
	<-done

	if _, err := os.Stat(fresh); err != nil {
		t.Errorf("fresh upload removed: %v", err)
	}
}

func TestRunCleanup_Disabled(t *testing.T) {
	s, _ := newTestServer(t)
	s.cfg.CleanupInterval = 0

	done := make(chan struct{})
	go func() {
		s.RunCleanup(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RunCleanup should return immediately when disabled")
	}
}
