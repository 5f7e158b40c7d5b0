package main

import (
	"bytes"
	"encoding/json"
	"os"
	"testing"

	"github.com/litani-build/litani/internal/model"
)

// runCLI executes the root command with args against cwd, capturing
// stdout. It mirrors the way a real invocation of the litani binary
// would be driven, rather than calling subcommand RunE functions
// directly, so flag-Changed() tracking (used by add-job's
// --phony-outputs/--timeout handling) behaves exactly as it would in
// production.
func runCLI(t *testing.T, cwd string, args ...string) string {
	t.Helper()
	prevWD, err := os.Getwd()
	if err != nil {
		t.Fatalf("Getwd: %v", err)
	}
	if err := os.Chdir(cwd); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(prevWD) })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("litani %v: %v", args, err)
	}
	return out.String()
}

func initTestCache(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	runCLI(t, dir, "init", "--project-name=proj", "--output-directory="+dir+"/cache", "--no-print-out-dir")
	return dir
}

func TestInit_WritesCacheDirectory(t *testing.T) {
	dir := initTestCache(t)
	if _, err := os.Stat(dir + "/cache/cache.json"); err != nil {
		t.Fatalf("expected cache.json to exist: %v", err)
	}
}

func TestAddJobThenGetJobs_RoundTrips(t *testing.T) {
	dir := initTestCache(t)
	runCLI(t, dir, "add-job", "--command=echo hi", "--pipeline-name=p", "--ci-stage=build")

	got := runCLI(t, dir, "get-jobs")
	var jobs []model.Job
	if err := json.Unmarshal([]byte(got), &jobs); err != nil {
		t.Fatalf("decode get-jobs output: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("len(jobs) = %d, want 1", len(jobs))
	}
	if jobs[0].Command != "echo hi" {
		t.Fatalf("Command = %q, want %q", jobs[0].Command, "echo hi")
	}
	if jobs[0].StatusFile != "" {
		t.Fatalf("expected private fields stripped from get-jobs output")
	}
}

func TestAddJob_PhonyOutputsFlagMarksAllPhonyWhenEmpty(t *testing.T) {
	dir := initTestCache(t)
	runCLI(t, dir, "add-job",
		"--command=echo hi", "--pipeline-name=p", "--ci-stage=build",
		"--outputs=out.txt", "--phony-outputs=")

	got := runCLI(t, dir, "get-jobs")
	var jobs []model.Job
	if err := json.Unmarshal([]byte(got), &jobs); err != nil {
		t.Fatalf("decode get-jobs output: %v", err)
	}
	if len(jobs) != 1 {
		t.Fatalf("len(jobs) = %d, want 1", len(jobs))
	}
	if !jobs[0].IsPhonyOutput("out.txt") {
		t.Fatalf("expected out.txt to be treated as phony")
	}
}

func TestRunBuild_DryRunMarksEveryJobSuccessful(t *testing.T) {
	dir := initTestCache(t)
	runCLI(t, dir, "add-job", "--command=false", "--pipeline-name=p", "--ci-stage=build")

	runCLI(t, dir, "run-build", "--dry-run")

	b, err := os.ReadFile(dir + "/cache/run.json")
	if err != nil {
		t.Fatalf("read run.json: %v", err)
	}
	var run model.RunDoc
	if err := json.Unmarshal(b, &run); err != nil {
		t.Fatalf("decode run.json: %v", err)
	}
	if run.Status != model.RunSuccess {
		t.Fatalf("Status = %q, want %q", run.Status, model.RunSuccess)
	}
}

func TestRunBuild_RejectsUndeclaredPool(t *testing.T) {
	dir := initTestCache(t)
	runCLI(t, dir, "add-job", "--command=echo hi", "--pipeline-name=p", "--ci-stage=build", "--pool=nope")

	prevWD, _ := os.Getwd()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Chdir: %v", err)
	}
	defer func() { _ = os.Chdir(prevWD) }()

	rootCmd.SetArgs([]string{"run-build", "--dry-run"})
	if err := rootCmd.Execute(); err == nil {
		t.Fatalf("expected run-build to reject a job referencing an undeclared pool")
	}
}
