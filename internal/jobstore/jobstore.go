// Package jobstore implements Component B: per-job JSON files under
// jobs/<job_id>.json, introspection (get-jobs), the transform-jobs
// round-trip protocol, and merging the declared job set into cache.json
// before scheduling.
package jobstore

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/litani-build/litani/internal/cachedir"
	"github.com/litani-build/litani/internal/clierr"
	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/validate"
)

// Store adds, reads, and rewrites job definitions for one run.
type Store struct {
	Dir cachedir.Dir
}

func New(dir cachedir.Dir) *Store { return &Store{Dir: dir} }

func (s *Store) readCache() (model.CacheDoc, error) {
	var cache model.CacheDoc
	b, err := os.ReadFile(s.Dir.CacheFile())
	if err != nil {
		return cache, fmt.Errorf("read cache.json: %w", err)
	}
	if err := json.Unmarshal(b, &cache); err != nil {
		return cache, fmt.Errorf("decode cache.json: %w", err)
	}
	return cache, nil
}

func validateStage(cache model.CacheDoc, stage string) error {
	if cache.HasStage(stage) {
		return nil
	}
	return clierr.Configf(
		"invalid stage name %q was provided, possible stage names are: '%s'",
		stage, strings.Join(cache.Stages, "', '"))
}

// normalize applies the phony-outputs-default-to-outputs rule (§4.B) and
// assigns identity/private fields for a brand-new job.
func (s *Store) normalize(job model.Job) model.Job {
	job.Outputs = job.EffectiveOutputs()
	job.JobID = model.NewID()
	job.StatusFile = s.Dir.StatusFile(job.JobID)
	return job
}

// AddJob validates job.CIStage against the declared stages, assigns a
// fresh job ID and status file path, and atomically writes
// jobs/<job_id>.json. Concurrent AddJob calls are safe: each writes a
// distinct file.
func (s *Store) AddJob(job model.Job) (model.Job, error) {
	cache, err := s.readCache()
	if err != nil {
		return model.Job{}, err
	}
	if err := validateStage(cache, job.CIStage); err != nil {
		return model.Job{}, err
	}
	job = s.normalize(job)
	if err := validate.Job(job.Public()); err != nil {
		return model.Job{}, fmt.Errorf("job %s: %w", job.JobID, err)
	}
	if err := s.writeJob(job); err != nil {
		return model.Job{}, err
	}
	return job, nil
}

func (s *Store) writeJob(job model.Job) error {
	b, err := json.MarshalIndent(job, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal job %s: %w", job.JobID, err)
	}
	return cachedir.AtomicWrite(s.Dir.JobFile(job.JobID), b)
}

// SetJobs replaces the entire job set: every existing jobs/*.json is
// removed, then each job in jobs is added fresh (§4.B "equivalent to
// deleting all jobs/*.json then adding each").
func (s *Store) SetJobs(jobs []model.Job) ([]model.Job, error) {
	existing, err := s.jobFiles()
	if err != nil {
		return nil, err
	}
	for _, path := range existing {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove %s: %w", path, err)
		}
	}
	out := make([]model.Job, 0, len(jobs))
	for _, job := range jobs {
		added, err := s.AddJob(job)
		if err != nil {
			return nil, err
		}
		out = append(out, added)
	}
	return out, nil
}

func (s *Store) jobFiles() ([]string, error) {
	entries, err := os.ReadDir(s.Dir.JobsDir())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read jobs dir: %w", err)
	}
	out := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		out = append(out, filepath.Join(s.Dir.JobsDir(), e.Name()))
	}
	return out, nil
}

// loadAll reads every jobs/*.json file, including private fields,
// keyed by job ID.
func (s *Store) loadAll() (map[string]model.Job, error) {
	paths, err := s.jobFiles()
	if err != nil {
		return nil, err
	}
	out := make(map[string]model.Job, len(paths))
	for _, path := range paths {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		var job model.Job
		if err := json.Unmarshal(b, &job); err != nil {
			return nil, fmt.Errorf("decode %s: %w", path, err)
		}
		out[job.JobID] = job
	}
	return out, nil
}

// GetJobs returns every declared job with private fields stripped, in
// job_id order (ULIDs sort lexically by creation time).
func (s *Store) GetJobs() ([]model.Job, error) {
	all, err := s.loadAll()
	if err != nil {
		return nil, err
	}
	out := make([]model.Job, 0, len(all))
	for _, job := range all {
		out = append(out, job.Public())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].JobID < out[j].JobID })
	return out, nil
}
