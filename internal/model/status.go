package model

import "time"

// TimeFormat is the wire format for every timestamp this module writes,
// matching the RFC3339Nano convention a runstate snapshot parser
// already expects.
const TimeFormat = time.RFC3339Nano

// JobStatus is the document written to status/<job_id>.json. It is
// written twice: once incomplete at spawn, once complete at exit.
type JobStatus struct {
	WrapperArguments Job  `json:"wrapper_arguments"`
	Complete         bool `json:"complete"`

	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`

	// Duration, CommandReturnCode, and WrapperReturnCode carry no
	// omitempty: all three are legitimately 0 on the single most common
	// outcome (an instant job that exits 0), and omitempty would drop
	// them from the complete-status JSON schema's required set (§4.I).
	Duration int64 `json:"duration"`

	CommandReturnCode int     `json:"command_return_code"`
	WrapperReturnCode int     `json:"wrapper_return_code"`
	TimeoutReached    bool    `json:"timeout_reached,omitempty"`
	Outcome           Outcome `json:"outcome,omitempty"`

	Stdout []string `json:"stdout,omitempty"`
	Stderr []string `json:"stderr,omitempty"`

	LoadedOutcomeDict map[string]any `json:"loaded_outcome_dict,omitempty"`
}

// NotStarted builds the placeholder status the reporter substitutes when
// a job's status file does not exist yet (§4.G step 2).
func NotStarted(job Job) JobStatus {
	return JobStatus{
		WrapperArguments: job,
		Complete:         false,
	}
}
