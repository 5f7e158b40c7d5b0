package jobstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/validate"
)

// TransformJobs applies the external "job rewriter" protocol (§4.B): a
// caller previously received GetJobs()'s output, may have edited it, and
// now submits the possibly-modified array back. For every job ID that
// existed before:
//   - absent from newJobs:      delete it
//   - present, byte-identical:  keep the file untouched
//   - present, changed:         rewrite it (identity preserved)
//
// Job entries whose ID didn't exist before (including a blank ID, since
// job_id is never required on input) are added as brand-new jobs. An
// identity transform (GetJobs | TransformJobs with no edits) therefore
// leaves jobs/ byte-equivalent, satisfying the round-trip property of
// §8.
func (s *Store) TransformJobs(newJobs []model.Job) ([]model.Job, error) {
	before, err := s.loadAll()
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(newJobs))
	out := make([]model.Job, 0, len(newJobs))

	for _, job := range newJobs {
		old, existed := before[job.JobID]
		if job.JobID == "" || !existed {
			added, err := s.AddJob(job)
			if err != nil {
				return nil, err
			}
			out = append(out, added)
			continue
		}

		seen[job.JobID] = true

		// Reconstitute the private fields the caller never saw so we can
		// compare byte-for-byte against what's on disk and, if unchanged,
		// avoid a gratuitous rewrite.
		job.StatusFile = old.StatusFile
		job.Subcommand = old.Subcommand
		job.Outputs = job.EffectiveOutputs()

		oldBytes, err := json.MarshalIndent(old, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal existing job %s: %w", old.JobID, err)
		}
		newBytes, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			return nil, fmt.Errorf("marshal job %s: %w", job.JobID, err)
		}

		if bytes.Equal(oldBytes, newBytes) {
			out = append(out, job.Public())
			continue
		}

		cache, err := s.readCache()
		if err != nil {
			return nil, err
		}
		if err := validateStage(cache, job.CIStage); err != nil {
			return nil, err
		}
		if err := validate.Job(job.Public()); err != nil {
			return nil, fmt.Errorf("job %s: %w", job.JobID, err)
		}
		if err := s.writeJob(job); err != nil {
			return nil, err
		}
		out = append(out, job.Public())
	}

	for id := range before {
		if seen[id] {
			continue
		}
		if err := os.Remove(s.Dir.JobFile(id)); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("remove %s: %w", id, err)
		}
	}

	return out, nil
}
