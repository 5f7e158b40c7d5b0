package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/litani-build/litani/internal/cachedir"
	"github.com/litani-build/litani/internal/clierr"
	"github.com/litani-build/litani/internal/model"
)

// findCacheDir locates the active cache directory by walking the
// current directory and its ancestors for the pointer file (§4.A).
// cachedir.NotFoundError is surfaced as-is (it already carries the
// "did you forget to run `litani init`?" message §4.A asks for); any
// other lookup failure is an unexpected I/O error.
func findCacheDir() (*cachedir.Dir, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("get working directory: %w", err)
	}
	return cachedir.Find(cwd)
}

// loadCache reads and decodes cache.json from dir.
func loadCache(dir cachedir.Dir) (model.CacheDoc, error) {
	var cache model.CacheDoc
	b, err := os.ReadFile(dir.CacheFile())
	if err != nil {
		return cache, fmt.Errorf("read cache.json: %w", err)
	}
	if err := json.Unmarshal(b, &cache); err != nil {
		return cache, fmt.Errorf("decode cache.json: %w", err)
	}
	return cache, nil
}

func writeCache(dir cachedir.Dir, cache model.CacheDoc) error {
	b, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache.json: %w", err)
	}
	return cachedir.AtomicWrite(dir.CacheFile(), b)
}

// mapToConfigError normalizes the handful of cachedir/jobstore errors
// every subcommand can hit when it can't find or open the run into the
// exit-1 ConfigError family (§7).
func mapToConfigError(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := err.(cachedir.NotFoundError); ok {
		return clierr.WrapConfig("litani", err)
	}
	return err
}
