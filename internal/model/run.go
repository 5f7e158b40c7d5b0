package model

// RunDoc is the derived, continuously republished view of a run's
// progress: cache.json's metadata plus jobs grouped by pipeline and
// stage, with rolled-up status at every level (§3 "Run document").
type RunDoc struct {
	Project   string    `json:"project"`
	RunID     string    `json:"run_id"`
	Version   string    `json:"version"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time,omitempty"`
	Status    RunStatus `json:"status"`

	Pipelines []Pipeline `json:"pipelines"`

	// Fingerprint is a BLAKE3 digest of the document's canonical JSON,
	// which the reporter compares to skip republishing an unchanged
	// document (SPEC_FULL §4.4). Empty until the reporter has computed
	// it, and never itself part of what gets hashed.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// Pipeline is one named group of jobs, rolled up from its CI stages.
type Pipeline struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Status   RunStatus `json:"status"`
	CIStages []Stage   `json:"ci_stages"`
}

// Stage is one CI stage within a pipeline: its jobs (incomplete first,
// then ascending start time), progress, completeness, and worst outcome.
type Stage struct {
	Name     string    `json:"name"`
	URL      string    `json:"url"`
	Progress int       `json:"progress"`
	Complete bool      `json:"complete"`
	Status   Outcome   `json:"status"`
	Jobs     []JobStatus `json:"jobs"`
}
