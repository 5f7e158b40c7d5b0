package expiry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Candidate is one report_data/<run> directory GC is considering.
type Candidate struct {
	Path    string
	ModTime time.Time
	Expired bool
}

// ListCandidates walks reportDataDir's immediate children, reporting
// each one's modification time and whether it already carries the
// expired marker.
func ListCandidates(reportDataDir string) ([]Candidate, error) {
	entries, err := os.ReadDir(reportDataDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", reportDataDir, err)
	}
	out := make([]Candidate, 0, len(entries))
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		path := filepath.Join(reportDataDir, e.Name())
		info, err := e.Info()
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
		out = append(out, Candidate{
			Path:    path,
			ModTime: info.ModTime(),
			Expired: New(path).Expired(),
		})
	}
	return out, nil
}

// MarkStaleAsExpired flags every candidate older than maxAge that
// isn't already marked, implementing `print-expiry-candidates`'
// selection policy.
func MarkStaleAsExpired(reportDataDir string, maxAge time.Duration, now time.Time) ([]string, error) {
	candidates, err := ListCandidates(reportDataDir)
	if err != nil {
		return nil, err
	}
	var marked []string
	for _, c := range candidates {
		if c.Expired || now.Sub(c.ModTime) < maxAge {
			continue
		}
		if err := New(c.Path).MarkExpired(); err != nil {
			return marked, err
		}
		marked = append(marked, c.Path)
	}
	return marked, nil
}

// Sweep implements `gc`: for each report_data/<run> directory, acquire
// its lock; if it's expired, remove the whole directory, otherwise
// release the lock and leave it alone. Directories already locked by
// another process (Acquire returns false) are skipped this pass.
func Sweep(reportDataDir string) (removed []string, skipped []string, err error) {
	candidates, err := ListCandidates(reportDataDir)
	if err != nil {
		return nil, nil, err
	}
	for _, c := range candidates {
		lock := New(c.Path)
		ok, err := lock.Acquire()
		if err != nil {
			return removed, skipped, err
		}
		if !ok {
			skipped = append(skipped, c.Path)
			continue
		}
		if lock.Expired() {
			if err := os.RemoveAll(c.Path); err != nil {
				return removed, skipped, fmt.Errorf("remove %s: %w", c.Path, err)
			}
			removed = append(removed, c.Path)
			continue
		}
		if err := lock.Release(); err != nil {
			return removed, skipped, err
		}
	}
	return removed, skipped, nil
}
