package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/litani-build/litani/internal/cachedir"
	"github.com/litani-build/litani/internal/model"
)

func newDir(t *testing.T) cachedir.Dir {
	t.Helper()
	return cachedir.Dir{Path: t.TempDir()}
}

func TestCopy_CopiesExistingOutputFile(t *testing.T) {
	dir := newDir(t)
	srcDir := t.TempDir()
	outFile := filepath.Join(srcDir, "out.txt")
	if err := os.WriteFile(outFile, []byte("hello"), 0o644); err != nil {
		t.Fatalf("write output: %v", err)
	}
	job := model.Job{JobID: "j1", PipelineName: "p", CIStage: "build", Outputs: []string{outFile}}
	if err := Copy(dir, job, nil); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	dest := filepath.Join(dir.ArtifactsDir(), "p", "build", "out.txt")
	b, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read copied artifact: %v", err)
	}
	if string(b) != "hello" {
		t.Fatalf("content = %q, want hello", b)
	}
}

func TestCopy_SkipsMissingPhonyOutputSilently(t *testing.T) {
	dir := newDir(t)
	job := model.Job{
		JobID: "j1", PipelineName: "p", CIStage: "build",
		Outputs:      []string{"/nonexistent/path"},
		PhonyOutputs: []string{"/nonexistent/path"},
	}
	if err := Copy(dir, job, nil); err != nil {
		t.Fatalf("Copy: %v", err)
	}
}

func TestCopy_MissingNonPhonyOutputIsNotFatal(t *testing.T) {
	dir := newDir(t)
	job := model.Job{JobID: "j1", PipelineName: "p", CIStage: "build", Outputs: []string{"/nonexistent/path"}}
	if err := Copy(dir, job, nil); err != nil {
		t.Fatalf("Copy: %v (missing non-phony output should warn, not fail)", err)
	}
}

func TestCopy_CopiesDirectoryRecursively(t *testing.T) {
	dir := newDir(t)
	srcDir := t.TempDir()
	outDir := filepath.Join(srcDir, "outdir")
	if err := os.MkdirAll(filepath.Join(outDir, "nested"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(outDir, "nested", "f.txt"), []byte("x"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	job := model.Job{JobID: "j1", PipelineName: "p", CIStage: "build", Outputs: []string{outDir}}
	if err := Copy(dir, job, nil); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	dest := filepath.Join(dir.ArtifactsDir(), "p", "build", "outdir", "nested", "f.txt")
	if _, err := os.Stat(dest); err != nil {
		t.Fatalf("expected nested file copied: %v", err)
	}
}
