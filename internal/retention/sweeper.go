// Package retention removes compressed artifacts once they outlive their
// download window. The sweep is age-based and deliberately independent of job
// status: an artifact can disappear out from under a registry entry, and
// downloads answer not-ready in that case.
package retention

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// Sweeper periodically deletes regular files in a directory older than MaxAge.
type Sweeper struct {
	Dir      string
	MaxAge   time.Duration
	Interval time.Duration
}

// New returns a Sweeper over dir.
func New(dir string, maxAge, interval time.Duration) *Sweeper {
	return &Sweeper{Dir: dir, MaxAge: maxAge, Interval: interval}
}

// Run sweeps once immediately, then on every tick until ctx is cancelled.
func (s *Sweeper) Run(ctx context.Context) error {
	s.SweepOnce()

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.SweepOnce()
		}
	}
}

// SweepOnce removes every regular file in the directory whose modification
// time is older than MaxAge. Per-file failures are logged and skipped; a file
// vanishing mid-sweep is not an error.
func (s *Sweeper) SweepOnce() {
	entries, err := os.ReadDir(s.Dir)
	if err != nil {
		slog.Warn("retention sweep failed", "dir", s.Dir, "error", err)
		return
	}

	cutoff := time.Now().Add(-s.MaxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}

		path := filepath.Join(s.Dir, entry.Name())
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			slog.Warn("retention remove failed", "path", path, "error", err)
			continue
		}
		slog.Info("artifact expired", "path", path, "age", time.Since(info.ModTime()).Round(time.Second))
	}
}
