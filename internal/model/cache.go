package model

// Version is the on-disk schema version stamped into cache.json and
// validated against by the run-document schema.
const Version = "1.0.0"

// Pools is a mapping of pool name to its concurrency depth (>=1).
type Pools map[string]int

// CacheDoc is the master document at cache.json: project metadata, the
// declared stages and pools, and — once collect_jobs_into_cache has run
// — every job merged from jobs/*.json.
type CacheDoc struct {
	Project        string   `json:"project"`
	RunID          string   `json:"run_id"`
	Version        string   `json:"version"`
	Stages         []string `json:"stages"`
	Pools          Pools    `json:"pools"`
	StartTime      string   `json:"start_time"`
	EndTime        string   `json:"end_time,omitempty"`
	Status         RunStatus `json:"status"`
	LatestSymlink  string   `json:"latest_symlink,omitempty"`
	Jobs           []Job    `json:"jobs"`
}

// DefaultStages is used when `litani init` is given no --stages flag.
var DefaultStages = []string{"build", "test", "report"}

// HasStage reports whether name is one of the stages declared at init.
func (c CacheDoc) HasStage(name string) bool {
	for _, s := range c.Stages {
		if s == name {
			return true
		}
	}
	return false
}
