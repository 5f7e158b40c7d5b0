package validate

import (
	"testing"

	"github.com/litani-build/litani/internal/model"
)

func TestJob_AcceptsMinimalValidJob(t *testing.T) {
	job := model.Job{Command: "echo hi", PipelineName: "p", CIStage: "build"}
	if err := Job(job.Public()); err != nil {
		t.Fatalf("Job: %v", err)
	}
}

func TestJob_RejectsMissingCommand(t *testing.T) {
	err := Job(map[string]any{"pipeline_name": "p", "ci_stage": "build"})
	if err == nil {
		t.Fatalf("expected validation error for missing command")
	}
}

func TestRunDoc_AcceptsMinimalRun(t *testing.T) {
	run := model.RunDoc{
		Project: "proj",
		RunID:   "run1",
		Status:  model.RunInProgress,
		Pipelines: []model.Pipeline{
			{
				Name:   "p",
				Status: model.RunInProgress,
				CIStages: []model.Stage{
					{Name: "build", Complete: false, Status: model.OutcomeSuccess, Jobs: []model.JobStatus{}},
				},
			},
		},
	}
	if err := RunDoc(run); err != nil {
		t.Fatalf("RunDoc: %v", err)
	}
}

func TestRunDoc_RejectsMissingRunID(t *testing.T) {
	err := RunDoc(map[string]any{"project": "proj", "status": "in_progress", "pipelines": []any{}})
	if err == nil {
		t.Fatalf("expected validation error for missing run_id")
	}
}
