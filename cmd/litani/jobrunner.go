package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/litani-build/litani/internal/artifact"
	"github.com/litani-build/litani/internal/cachedir"
	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/outcome"
	"github.com/litani-build/litani/internal/procsup"
)

// jobRunner implements scheduler.JobRunner (§4.C wiring): it writes the
// incomplete status file, spawns the job's command through procsup,
// classifies its outcome, writes the complete status file, and copies
// declared outputs to the artifacts directory. The exact same sequence
// backs both `litani exec` (one job, standalone, per spec.md §6 "exec
// (internal): spawned per-job") and run-build's in-process executor, so
// the two entry points can never diverge on how a job is actually run.
type jobRunner struct {
	Dir cachedir.Dir
}

func (r jobRunner) RunJob(ctx context.Context, job model.Job) (model.Outcome, error) {
	res, err := runJobToCompletion(ctx, r.Dir, job)
	if err != nil {
		return model.OutcomeFail, err
	}
	return res.Outcome, nil
}

// jobExecResult is everything a caller of runJobToCompletion needs:
// the classified outcome and the wrapper return code `litani exec`
// exits with.
type jobExecResult struct {
	Outcome           model.Outcome
	WrapperReturnCode int
}

func runJobToCompletion(ctx context.Context, dir cachedir.Dir, job model.Job) (jobExecResult, error) {
	start := time.Now().UTC()
	status := model.JobStatus{
		WrapperArguments: job,
		Complete:         false,
		StartTime:        start.Format(model.TimeFormat),
	}
	if err := writeStatus(dir, job.JobID, status); err != nil {
		return jobExecResult{}, err
	}

	var timeout time.Duration
	if job.Timeout != nil {
		timeout = time.Duration(*job.Timeout) * time.Second
	}

	procRes, err := procsup.Run(ctx, procsup.Spec{
		Command:                job.Command,
		CWD:                    job.CWD,
		InterleaveStdoutStderr: job.InterleaveStdoutStderr,
		Timeout:                timeout,
		StdoutFile:             job.StdoutFile,
		StderrFile:             job.StderrFile,
	})
	if err != nil {
		return jobExecResult{}, fmt.Errorf("run job %s: %w", job.JobID, err)
	}

	classified, err := outcome.Classify(procRes.ReturnCode, procRes.TimeoutReached, outcome.Policy{
		TimeoutOK:     job.TimeoutOK,
		TimeoutIgnore: job.TimeoutIgnore,
		IgnoreReturns: job.IgnoreReturns,
		OkReturns:     job.OkReturns,
		OutcomeTable:  job.OutcomeTable,
	})
	if err != nil {
		return jobExecResult{}, fmt.Errorf("classify job %s: %w", job.JobID, err)
	}

	end := time.Now().UTC()
	status.Complete = true
	status.EndTime = end.Format(model.TimeFormat)
	status.Duration = end.Sub(start).Milliseconds()
	status.CommandReturnCode = procRes.ReturnCode
	status.WrapperReturnCode = classified.WrapperReturnCode
	status.TimeoutReached = procRes.TimeoutReached
	status.Outcome = classified.Outcome
	status.Stdout = splitLines(procRes.Stdout)
	status.Stderr = splitLines(procRes.Stderr)
	status.LoadedOutcomeDict = classified.LoadedOutcomeDict

	if err := writeStatus(dir, job.JobID, status); err != nil {
		return jobExecResult{WrapperReturnCode: classified.WrapperReturnCode}, err
	}

	if err := artifact.Copy(dir, job, slog.Default().With(slog.String("component", "exec"))); err != nil {
		return jobExecResult{WrapperReturnCode: classified.WrapperReturnCode}, err
	}

	return jobExecResult{Outcome: classified.Outcome, WrapperReturnCode: classified.WrapperReturnCode}, nil
}

func writeStatus(dir cachedir.Dir, jobID string, status model.JobStatus) error {
	b, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal status for %s: %w", jobID, err)
	}
	return cachedir.AtomicWrite(dir.StatusFile(jobID), b)
}

func splitLines(b []byte) []string {
	trimmed := bytes.TrimRight(b, "\n")
	if len(trimmed) == 0 {
		return nil
	}
	return splitOnNewline(string(trimmed))
}

func splitOnNewline(s string) []string {
	var out []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	out = append(out, s[start:])
	return out
}

// dryRunJobRunner implements `run-build -n`: it never spawns anything
// and reports every job as an immediate success, still writing a
// complete status file so the reporter's join (§4.G) sees the job as
// finished.
type dryRunJobRunner struct {
	Dir cachedir.Dir
}

func (r dryRunJobRunner) RunJob(ctx context.Context, job model.Job) (model.Outcome, error) {
	now := time.Now().UTC().Format(model.TimeFormat)
	status := model.JobStatus{
		WrapperArguments:  job,
		Complete:          true,
		StartTime:         now,
		EndTime:           now,
		CommandReturnCode: 0,
		WrapperReturnCode: 0,
		Outcome:           model.OutcomeSuccess,
	}
	if err := writeStatus(r.Dir, job.JobID, status); err != nil {
		return model.OutcomeFail, err
	}
	return model.OutcomeSuccess, nil
}
