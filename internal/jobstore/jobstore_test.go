package jobstore

import (
	"os"
	"testing"

	"github.com/litani-build/litani/internal/cachedir"
	"github.com/litani-build/litani/internal/clierr"
	"github.com/litani-build/litani/internal/model"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(b)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	tmp := t.TempDir()
	res, err := cachedir.Init(cachedir.InitOptions{
		Project:         "proj",
		OutputDirectory: tmp + "/cache",
	})
	if err != nil {
		t.Fatalf("Init: %v", err)
	}
	return New(res.Dir)
}

func TestAddJob_AssignsIDAndStatusFile(t *testing.T) {
	s := newTestStore(t)
	job, err := s.AddJob(model.Job{
		Command:      "echo foo",
		PipelineName: "foo",
		CIStage:      "build",
	})
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if job.JobID == "" {
		t.Fatalf("expected job_id to be assigned")
	}
	if job.StatusFile == "" {
		t.Fatalf("expected status_file to be assigned")
	}
}

func TestAddJob_RejectsUnknownStage(t *testing.T) {
	s := newTestStore(t)
	_, err := s.AddJob(model.Job{
		Command:      "echo foo",
		PipelineName: "foo",
		CIStage:      "bogus",
	})
	if _, ok := err.(*clierr.ConfigError); !ok {
		t.Fatalf("expected ConfigError, got %v", err)
	}
}

func TestAddJob_PhonyOutputsDefaultToOutputs(t *testing.T) {
	s := newTestStore(t)
	job, err := s.AddJob(model.Job{
		Command:      "echo foo",
		PipelineName: "foo",
		CIStage:      "build",
		PhonyOutputs: []string{"nonexistent"},
	})
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if len(job.Outputs) != 1 || job.Outputs[0] != "nonexistent" {
		t.Fatalf("Outputs = %v, want [nonexistent]", job.Outputs)
	}
}

func TestGetJobs_StripsPrivateFields(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddJob(model.Job{Command: "echo foo", PipelineName: "foo", CIStage: "build"}); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	jobs, err := s.GetJobs()
	if err != nil {
		t.Fatalf("GetJobs: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("len(jobs) = %d, want 1", len(jobs))
	}
	if jobs[0].StatusFile != "" || jobs[0].Subcommand != "" {
		t.Fatalf("expected private fields stripped, got %+v", jobs[0])
	}
}

func TestSetJobs_ReplacesEntireSet(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddJob(model.Job{Command: "echo old", PipelineName: "p", CIStage: "build"}); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	added, err := s.SetJobs([]model.Job{
		{Command: "echo foo", PipelineName: "p", CIStage: "build"},
		{Command: "echo bar", PipelineName: "p", CIStage: "build"},
		{Command: "echo baz", PipelineName: "p", CIStage: "build"},
	})
	if err != nil {
		t.Fatalf("SetJobs: %v", err)
	}
	if len(added) != 3 {
		t.Fatalf("len(added) = %d, want 3", len(added))
	}
	jobs, err := s.GetJobs()
	if err != nil {
		t.Fatalf("GetJobs: %v", err)
	}
	if len(jobs) != 3 {
		t.Fatalf("len(jobs) = %d, want 3", len(jobs))
	}
	got := map[string]bool{}
	for _, j := range jobs {
		got[j.Command] = true
	}
	for _, want := range []string{"echo foo", "echo bar", "echo baz"} {
		if !got[want] {
			t.Fatalf("missing command %q in %v", want, got)
		}
	}
}

func TestTransformJobs_IdentityRoundTripIsByteEquivalent(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.AddJob(model.Job{Command: "echo foo", PipelineName: "p", CIStage: "build"}); err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	before, err := s.jobFiles()
	if err != nil {
		t.Fatalf("jobFiles: %v", err)
	}
	beforeContent := readAll(t, before)

	jobs, err := s.GetJobs()
	if err != nil {
		t.Fatalf("GetJobs: %v", err)
	}
	if _, err := s.TransformJobs(jobs); err != nil {
		t.Fatalf("TransformJobs: %v", err)
	}

	after, err := s.jobFiles()
	if err != nil {
		t.Fatalf("jobFiles: %v", err)
	}
	afterContent := readAll(t, after)

	if len(before) != len(after) {
		t.Fatalf("file count changed: %d -> %d", len(before), len(after))
	}
	for path, content := range beforeContent {
		if afterContent[path] != content {
			t.Fatalf("file %s changed on identity transform", path)
		}
	}
}

func TestTransformJobs_DeletesAbsentAddsNew(t *testing.T) {
	s := newTestStore(t)
	keep, err := s.AddJob(model.Job{Command: "echo keep", PipelineName: "p", CIStage: "build"})
	if err != nil {
		t.Fatalf("AddJob: %v", err)
	}
	if _, err := s.AddJob(model.Job{Command: "echo drop", PipelineName: "p", CIStage: "build"}); err != nil {
		t.Fatalf("AddJob: %v", err)
	}

	submitted := []model.Job{
		keep.Public(),
		{Command: "echo new", PipelineName: "p", CIStage: "build"},
	}
	if _, err := s.TransformJobs(submitted); err != nil {
		t.Fatalf("TransformJobs: %v", err)
	}

	jobs, err := s.GetJobs()
	if err != nil {
		t.Fatalf("GetJobs: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("len(jobs) = %d, want 2", len(jobs))
	}
	cmds := map[string]bool{}
	for _, j := range jobs {
		cmds[j.Command] = true
	}
	if !cmds["echo keep"] || !cmds["echo new"] || cmds["echo drop"] {
		t.Fatalf("unexpected job set: %v", cmds)
	}
}

func readAll(t *testing.T, paths []string) map[string]string {
	t.Helper()
	out := make(map[string]string, len(paths))
	for _, p := range paths {
		out[p] = readFile(t, p)
	}
	return out
}
