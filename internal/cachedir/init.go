package cachedir

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/litani-build/litani/internal/model"
)

// InitOptions configures `litani init` (§4.A, §6).
type InitOptions struct {
	Project         string
	Stages          []string
	Pools           model.Pools
	RunID           string // pre-resolved: env LITANI_RUN_ID or a fresh ID
	OutputDirectory string // mutually exclusive with OutputPrefix
	OutputPrefix    string
	OutputSymlink   string
	Now             time.Time
}

// InitResult carries back what a CLI layer needs to report to the user.
type InitResult struct {
	Dir           Dir
	LatestSymlink string
}

// Init creates a new cache directory, writes cache.json, and atomically
// publishes both the pointer file (in the current working directory)
// and the "latest" symlink (§4.A).
func Init(opts InitOptions) (*InitResult, error) {
	stages := opts.Stages
	if len(stages) == 0 {
		stages = model.DefaultStages
	}
	runID := opts.RunID
	if runID == "" {
		runID = model.NewID()
	}

	var cacheDirPath string
	if opts.OutputDirectory != "" {
		abs, err := filepath.Abs(opts.OutputDirectory)
		if err != nil {
			return nil, fmt.Errorf("resolve output directory: %w", err)
		}
		cacheDirPath = abs
	} else {
		prefix := opts.OutputPrefix
		if prefix == "" {
			prefix = os.TempDir()
		}
		abs, err := filepath.Abs(prefix)
		if err != nil {
			return nil, fmt.Errorf("resolve output prefix: %w", err)
		}
		cacheDirPath = filepath.Join(abs, "litani", "runs", runID)
	}

	if _, err := os.Stat(cacheDirPath); err == nil {
		return nil, AlreadyExistsError{Path: cacheDirPath}
	}
	if err := os.MkdirAll(cacheDirPath, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}

	var latestSymlink string
	if opts.OutputSymlink != "" {
		abs, err := filepath.Abs(opts.OutputSymlink)
		if err != nil {
			return nil, fmt.Errorf("resolve output symlink: %w", err)
		}
		latestSymlink = abs
	} else {
		latestSymlink = filepath.Join(filepath.Dir(cacheDirPath), "latest")
	}
	if err := AtomicSymlink(cacheDirPath, latestSymlink); err != nil {
		return nil, err
	}

	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}

	cache := model.CacheDoc{
		Project:       opts.Project,
		RunID:         runID,
		Version:       model.Version,
		Stages:        stages,
		Pools:         opts.Pools,
		StartTime:     now.Format(model.TimeFormat),
		Status:        model.RunInProgress,
		LatestSymlink: latestSymlink,
		Jobs:          []model.Job{},
	}
	if cache.Pools == nil {
		cache.Pools = model.Pools{}
	}

	b, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal cache.json: %w", err)
	}
	dir := Dir{Path: cacheDirPath}
	if err := AtomicWrite(dir.CacheFile(), b); err != nil {
		return nil, err
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	pointerPath := filepath.Join(cwd, PointerFile)
	if err := AtomicWrite(pointerPath, []byte(cacheDirPath+"\n")); err != nil {
		return nil, err
	}

	return &InitResult{Dir: dir, LatestSymlink: latestSymlink}, nil
}
