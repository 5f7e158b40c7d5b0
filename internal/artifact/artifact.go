// Package artifact copies a completed job's declared outputs into
// artifacts/<pipeline>/<stage>/, the one post-job bookkeeping step
// §4.E describes but leaves unnamed as a component of its own.
// Grounded on original Litani's lib/output_artifact.py Copier/
// MissingOutput, generalized from a single-file shutil.copy to a
// recursive directory copy since Go's standard library has no
// shutil-equivalent and outputs may legitimately be directories.
package artifact

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/litani-build/litani/internal/cachedir"
	"github.com/litani-build/litani/internal/model"
)

// Copy copies every output of job that exists on disk into
// dir.ArtifactsDir()/job.PipelineName/job.CIStage/. A missing output
// logs a warning unless it's phony-listed; name collisions within the
// destination log a warning and keep whichever copy arrived first.
func Copy(dir cachedir.Dir, job model.Job, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	destDir := filepath.Join(dir.ArtifactsDir(), job.PipelineName, job.CIStage)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return fmt.Errorf("create artifacts dir %s: %w", destDir, err)
	}

	for _, out := range job.EffectiveOutputs() {
		info, err := os.Stat(out)
		if err != nil {
			if job.IsPhonyOutput(out) {
				continue
			}
			logger.Warn("missing output artifact", slog.String("job_id", job.JobID), slog.String("output", out))
			continue
		}

		dest := filepath.Join(destDir, filepath.Base(out))
		if _, err := os.Stat(dest); err == nil {
			logger.Warn("artifact name collision, keeping first copy",
				slog.String("job_id", job.JobID), slog.String("output", out), slog.String("dest", dest))
			continue
		}

		if info.IsDir() {
			if err := copyDir(out, dest); err != nil {
				return fmt.Errorf("copy output dir %s: %w", out, err)
			}
		} else {
			if err := copyFile(out, dest); err != nil {
				return fmt.Errorf("copy output file %s: %w", out, err)
			}
		}
	}
	return nil
}

func copyFile(src, dest string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	defer out.Close()
	if _, err := io.Copy(out, in); err != nil {
		return err
	}
	return out.Close()
}

func copyDir(src, dest string) error {
	return filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dest, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(path, target)
	})
}
