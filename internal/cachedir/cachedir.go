// Package cachedir implements Component A: the on-disk cache directory
// that is the root of one run, the sibling pointer file that lets any
// subcommand find it, and the atomic-rename writer every other
// component builds on.
package cachedir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/litani-build/litani/internal/model"
)

const (
	// CacheFile is the master document, cache.json.
	CacheFile = "cache.json"
	// PointerFile names the sibling file that records the absolute path
	// of the active cache directory, searched for by walking upward
	// from the current directory.
	PointerFile = ".litani_cache_dir"

	JobsDirName     = "jobs"
	StatusDirName   = "status"
	ArtifactsDir    = "artifacts"
	HTMLDir         = "html"
	ReportDataDir   = "report_data"
	LockFile        = ".litani-lock"
	ExpiredFile     = ".litani-expired"
	RunPIDFile      = "run-pid"
	DumpedRunFile   = "dumped-run.json"
	RunFile         = "run.json"
)

// Dir is a handle onto one run's cache directory.
type Dir struct {
	Path string
}

func (d Dir) CacheFile() string     { return filepath.Join(d.Path, CacheFile) }
func (d Dir) JobsDir() string       { return filepath.Join(d.Path, JobsDirName) }
func (d Dir) StatusDir() string     { return filepath.Join(d.Path, StatusDirName) }
func (d Dir) ArtifactsDir() string  { return filepath.Join(d.Path, ArtifactsDir) }
func (d Dir) HTMLDir() string       { return filepath.Join(d.Path, HTMLDir) }
func (d Dir) ReportDataDir() string { return filepath.Join(d.Path, ReportDataDir) }
func (d Dir) RunPIDFile() string    { return filepath.Join(d.Path, RunPIDFile) }
func (d Dir) DumpedRunFile() string { return filepath.Join(d.Path, DumpedRunFile) }
func (d Dir) RunFile() string       { return filepath.Join(d.Path, RunFile) }
func (d Dir) JobFile(jobID string) string {
	return filepath.Join(d.JobsDir(), jobID+".json")
}
func (d Dir) StatusFile(jobID string) string {
	return filepath.Join(d.StatusDir(), jobID+".json")
}

// NotFoundError is returned by Find when no pointer file is found; it is
// distinct from other I/O errors per §4.A ("fails with a distinct 'no
// cache' error if none is found").
type NotFoundError struct{}

func (NotFoundError) Error() string {
	return "could not find a pointer to a litani cache; did you forget to run `litani init`?"
}

// AlreadyExistsError is returned by Init when the chosen directory
// already exists.
type AlreadyExistsError struct{ Path string }

func (e AlreadyExistsError) Error() string {
	return fmt.Sprintf("output directory %q already exists", e.Path)
}

// AtomicWrite writes data to a sibling temp file named path~<ulid> and
// renames it over path. Readers that open path directly will never
// observe a partial write because rename is atomic within a filesystem
// (§4.A). On any failure the temp file is removed.
func AtomicWrite(path string, data []byte) (err error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	tmp := fmt.Sprintf("%s~%s", path, model.NewID())
	f, err := os.OpenFile(tmp, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("atomic write %s: create temp: %w", path, err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp)
		}
	}()
	if _, err = f.Write(data); err != nil {
		_ = f.Close()
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	if err = f.Close(); err != nil {
		return fmt.Errorf("atomic write %s: %w", path, err)
	}
	if err = os.Rename(tmp, path); err != nil {
		return fmt.Errorf("atomic write %s: rename: %w", path, err)
	}
	return nil
}

// AtomicSymlink points newLink at target by creating a uniquely-named
// temp symlink and renaming it into place, so that a concurrent reader
// of newLink never observes a dangling link mid-update.
func AtomicSymlink(target, newLink string) error {
	tmp := fmt.Sprintf("%s-%s", newLink, model.NewID())
	if err := os.Symlink(target, tmp); err != nil {
		return fmt.Errorf("atomic symlink %s -> %s: %w", newLink, target, err)
	}
	if err := os.Rename(tmp, newLink); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("atomic symlink %s -> %s: rename: %w", newLink, target, err)
	}
	return nil
}
