package model

// Job is a single declared unit of work: a shell command, the stage and
// pipeline it belongs to, its declared inputs/outputs, and the policy
// that governs how its return code is classified.
type Job struct {
	// Identity.
	JobID       string `json:"job_id,omitempty" yaml:"job_id,omitempty"`
	PipelineName string `json:"pipeline_name" yaml:"pipeline_name"`
	CIStage     string `json:"ci_stage" yaml:"ci_stage"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	// Command.
	Command      string   `json:"command" yaml:"command"`
	CWD          string   `json:"cwd,omitempty" yaml:"cwd,omitempty"`
	Inputs       []string `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Outputs      []string `json:"outputs,omitempty" yaml:"outputs,omitempty"`
	// No omitempty: encoding/json's emptiness check can't tell nil from
	// a non-nil empty slice, and that distinction is the §4.E "empty
	// phony_outputs ⇒ all outputs phony" sentinel. A nil slice marshals
	// to `null` and round-trips back to nil; `[]string{}` marshals to
	// `[]` and round-trips back to an empty, non-nil slice.
	PhonyOutputs []string `json:"phony_outputs" yaml:"phony_outputs,omitempty"`

	// Policy.
	Timeout                *int     `json:"timeout,omitempty" yaml:"timeout,omitempty"`
	TimeoutOK              bool     `json:"timeout_ok,omitempty" yaml:"timeout_ok,omitempty"`
	TimeoutIgnore          bool     `json:"timeout_ignore,omitempty" yaml:"timeout_ignore,omitempty"`
	IgnoreReturns          []int    `json:"ignore_returns,omitempty" yaml:"ignore_returns,omitempty"`
	OkReturns              []int    `json:"ok_returns,omitempty" yaml:"ok_returns,omitempty"`
	OutcomeTable           string   `json:"outcome_table,omitempty" yaml:"outcome_table,omitempty"`
	InterleaveStdoutStderr bool     `json:"interleave_stdout_stderr,omitempty" yaml:"interleave_stdout_stderr,omitempty"`
	StdoutFile             string   `json:"stdout_file,omitempty" yaml:"stdout_file,omitempty"`
	StderrFile             string   `json:"stderr_file,omitempty" yaml:"stderr_file,omitempty"`
	Pool                   string   `json:"pool,omitempty" yaml:"pool,omitempty"`
	Tags                   []string `json:"tags,omitempty" yaml:"tags,omitempty"`

	// Private: assigned by the store, stripped from any response to a
	// caller that only knows the public job schema.
	StatusFile string `json:"status_file,omitempty" yaml:"-"`
	Subcommand string `json:"subcommand,omitempty" yaml:"-"`
}

// Public returns a copy of j with every private field cleared, suitable
// for get-jobs / transform-jobs introspection responses.
func (j Job) Public() Job {
	j.StatusFile = ""
	j.Subcommand = ""
	return j
}

// EffectiveOutputs returns Outputs, defaulting to PhonyOutputs when
// Outputs is empty and PhonyOutputs was supplied — the "phony output
// list doubles as the output list when none was given" rule from §4.B.
func (j Job) EffectiveOutputs() []string {
	if len(j.Outputs) == 0 && len(j.PhonyOutputs) > 0 {
		return append([]string(nil), j.PhonyOutputs...)
	}
	return j.Outputs
}

// IsPhonyOutput reports whether fyle is tolerated if missing at job
// completion: either explicitly listed, or PhonyOutputs was declared
// (non-nil) but empty, meaning "every output of this job is phony".
func (j Job) IsPhonyOutput(fyle string) bool {
	if j.PhonyOutputs == nil {
		return false
	}
	if len(j.PhonyOutputs) == 0 {
		return true
	}
	for _, p := range j.PhonyOutputs {
		if p == fyle {
			return true
		}
	}
	return false
}
