package cachedir

import (
	"os"
	"path/filepath"
	"testing"
)

func TestInit_WritesCacheAndPointer(t *testing.T) {
	tmp := t.TempDir()
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	defer func() { _ = os.Chdir(prevWD) }()
	if err := os.Chdir(tmp); err != nil {
		t.Fatalf("Chdir: %v", err)
	}

	res, err := Init(InitOptions{Project: "foo", OutputPrefix: tmp})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	if _, err := os.Stat(res.Dir.CacheFile()); err != nil {
		t.Fatalf("cache.json missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(tmp, PointerFile)); err != nil {
		t.Fatalf("pointer file missing: %v", err)
	}
	if _, err := os.Lstat(res.LatestSymlink); err != nil {
		t.Fatalf("latest symlink missing: %v", err)
	}
}

func TestInit_FailsIfDirectoryExists(t *testing.T) {
	tmp := t.TempDir()
	out := filepath.Join(tmp, "run")
	if err := os.MkdirAll(out, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	_, err := Init(InitOptions{Project: "foo", OutputDirectory: out})
	if _, ok := err.(AlreadyExistsError); !ok {
		t.Fatalf("expected AlreadyExistsError, got %v", err)
	}
}

func TestFind_WalksAncestors(t *testing.T) {
	root := t.TempDir()
	cacheDir := filepath.Join(root, "cache")
	if err := os.MkdirAll(cacheDir, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := AtomicWrite(filepath.Join(root, PointerFile), []byte(cacheDir+"\n")); err != nil {
		t.Fatalf("AtomicWrite: %v", err)
	}

	nested := filepath.Join(root, "a", "b", "c")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}

	d, err := Find(nested)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	resolved, err := filepath.EvalSymlinks(d.Path)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	wantResolved, err := filepath.EvalSymlinks(cacheDir)
	if err != nil {
		t.Fatalf("EvalSymlinks want: %v", err)
	}
	if resolved != wantResolved {
		t.Fatalf("Find = %q, want %q", resolved, wantResolved)
	}
}

func TestFind_NotFoundIsDistinctError(t *testing.T) {
	root := t.TempDir()
	_, err := Find(root)
	if _, ok := err.(NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestAtomicWrite_ReplacesExistingFileAtomically(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "f.json")
	if err := AtomicWrite(path, []byte("one")); err != nil {
		t.Fatalf("AtomicWrite: %v", err)
	}
	if err := AtomicWrite(path, []byte("two")); err != nil {
		t.Fatalf("AtomicWrite: %v", err)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(b) != "two" {
		t.Fatalf("content = %q, want %q", b, "two")
	}
	entries, err := os.ReadDir(tmp)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected no leftover temp files, got %v", entries)
	}
}
