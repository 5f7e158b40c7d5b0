package reporter

import (
	"encoding/json"
	"os"
	"testing"

	"github.com/litani-build/litani/internal/cachedir"
	"github.com/litani-build/litani/internal/model"
)

func setupRun(t *testing.T, jobs []model.Job) cachedir.Dir {
	t.Helper()
	tmp := t.TempDir()
	res, err := cachedir.Init(cachedir.InitOptions{
		Project:         "proj",
		OutputDirectory: tmp + "/cache",
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	dir := res.Dir
	cache := model.CacheDoc{
		Project: "proj",
		RunID:   "run1",
		Version: model.Version,
		Stages:  model.DefaultStages,
		Jobs:    jobs,
	}
	b, err := json.MarshalIndent(cache, "", "  ")
	if err != nil {
		t.Fatalf("marshal cache: %v", err)
	}
	if err := cachedir.AtomicWrite(dir.CacheFile(), b); err != nil {
		t.Fatalf("write cache: %v", err)
	}
	return dir
}

func writeStatus(t *testing.T, dir cachedir.Dir, status model.JobStatus) {
	t.Helper()
	b, err := json.MarshalIndent(status, "", "  ")
	if err != nil {
		t.Fatalf("marshal status: %v", err)
	}
	if err := cachedir.AtomicWrite(dir.StatusFile(status.WrapperArguments.JobID), b); err != nil {
		t.Fatalf("write status: %v", err)
	}
}

func TestTick_MissingStatusIsNotStarted(t *testing.T) {
	job := model.Job{JobID: "j1", PipelineName: "p", CIStage: "build"}
	dir := setupRun(t, []model.Job{job})
	r := New(dir, "")
	run, changed, err := r.Tick(false)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if !changed {
		t.Fatalf("expected first tick to publish")
	}
	if len(run.Pipelines) != 1 || len(run.Pipelines[0].CIStages) != 1 {
		t.Fatalf("unexpected run shape: %+v", run)
	}
	if run.Status != model.RunInProgress {
		t.Fatalf("Status = %v, want in_progress", run.Status)
	}
}

func TestTick_RollsUpWorstOutcome(t *testing.T) {
	jobA := model.Job{JobID: "a", PipelineName: "p", CIStage: "build"}
	jobB := model.Job{JobID: "b", PipelineName: "p", CIStage: "build"}
	dir := setupRun(t, []model.Job{jobA, jobB})
	start := "2026-01-01T00:00:00Z"
	end := "2026-01-01T00:00:01Z"
	writeStatus(t, dir, model.JobStatus{
		WrapperArguments: jobA, Complete: true, Outcome: model.OutcomeSuccess,
		StartTime: start, EndTime: end,
	})
	writeStatus(t, dir, model.JobStatus{
		WrapperArguments: jobB, Complete: true, Outcome: model.OutcomeFail,
		StartTime: start, EndTime: end,
	})

	r := New(dir, "")
	run, _, err := r.Tick(false)
	if err != nil {
		t.Fatalf("Tick: %v", err)
	}
	if run.Status != model.RunFail {
		t.Fatalf("Status = %v, want fail", run.Status)
	}
	if run.Pipelines[0].CIStages[0].Status != model.OutcomeFail {
		t.Fatalf("stage status = %v, want fail", run.Pipelines[0].CIStages[0].Status)
	}
}

func TestTick_SkipsPublishWhenUnchanged(t *testing.T) {
	job := model.Job{JobID: "j1", PipelineName: "p", CIStage: "build"}
	dir := setupRun(t, []model.Job{job})
	r := New(dir, "")
	if _, _, err := r.Tick(false); err != nil {
		t.Fatalf("first Tick: %v", err)
	}
	info1, err := os.Stat(dir.RunFile())
	if err != nil {
		t.Fatalf("stat run.json: %v", err)
	}
	_, changed, err := r.Tick(false)
	if err != nil {
		t.Fatalf("second Tick: %v", err)
	}
	if changed {
		t.Fatalf("expected second identical tick to skip publish")
	}
	info2, err := os.Stat(dir.RunFile())
	if err != nil {
		t.Fatalf("stat run.json: %v", err)
	}
	if info1.ModTime() != info2.ModTime() {
		t.Fatalf("run.json was rewritten despite unchanged fingerprint")
	}
}

func TestDumpNow_WritesDumpedRunFile(t *testing.T) {
	job := model.Job{JobID: "j1", PipelineName: "p", CIStage: "build"}
	dir := setupRun(t, []model.Job{job})
	r := New(dir, "")
	if err := r.DumpNow(); err != nil {
		t.Fatalf("DumpNow: %v", err)
	}
	if _, err := os.Stat(dir.DumpedRunFile()); err != nil {
		t.Fatalf("expected dumped-run.json to exist: %v", err)
	}
}
