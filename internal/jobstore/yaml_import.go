package jobstore

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/litani-build/litani/internal/model"
)

// jobManifest is the shape of an `add-job --from-file` document
// (SPEC_FULL §4.2): a plain list of job definitions, expressed in the
// same field names as the JSON job schema so one mental model covers
// both.
type jobManifest struct {
	Jobs []model.Job `yaml:"jobs"`
}

// ImportManifest parses a YAML batch-job file and adds every job it
// declares through the same AddJob path a single `add-job` invocation
// uses, so validation and identity assignment stay identical to the
// one-job-at-a-time CLI surface.
func (s *Store) ImportManifest(path string) ([]model.Job, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read job manifest %s: %w", path, err)
	}
	var manifest jobManifest
	if err := yaml.Unmarshal(b, &manifest); err != nil {
		return nil, fmt.Errorf("parse job manifest %s: %w", path, err)
	}
	out := make([]model.Job, 0, len(manifest.Jobs))
	for _, job := range manifest.Jobs {
		added, err := s.AddJob(job)
		if err != nil {
			return nil, err
		}
		out = append(out, added)
	}
	return out, nil
}
