package jobstore

import (
	"encoding/json"
	"fmt"

	"github.com/litani-build/litani/internal/cachedir"
	"github.com/litani-build/litani/internal/clierr"
	"github.com/litani-build/litani/internal/model"
)

// CollectJobsIntoCache merges every jobs/*.json into cache.json's Jobs
// slice, atomically. Called once before scheduling (§4.B). Fails if no
// jobs have been declared, since an empty run is almost certainly a
// forgotten add-job step rather than an intentional no-op.
func (s *Store) CollectJobsIntoCache() error {
	all, err := s.loadAll()
	if err != nil {
		return err
	}
	if len(all) == 0 {
		return clierr.Configf("no jobs have been added; add-job must run before run-build")
	}

	cache, err := s.readCache()
	if err != nil {
		return err
	}

	jobs := make([]model.Job, 0, len(all))
	for _, job := range all {
		jobs = append(jobs, expandGlobs(job))
	}
	cache.Jobs = jobs

	b, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache.json: %w", err)
	}
	return cachedir.AtomicWrite(s.Dir.CacheFile(), b)
}
