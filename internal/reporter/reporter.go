// Package reporter implements Component G: it periodically joins
// cache.json with every job's status file, rolls outcomes up through
// stage/pipeline/run, and atomically publishes run.json. Adapter
// isolation (render/upload never taking down the aggregation loop)
// follows the worker-pool convention of a dedicated slog.Logger scoped
// with service/component fields, as in the reference upload worker
// pool (other_examples/..._upload_worker_pool.go.go's
// `slog.Default().With(...)`).
package reporter

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/litani-build/litani/internal/cachedir"
	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/validate"
	"github.com/zeebo/blake3"
)

// Interval is the default aggregation tick (§4.G: "every ~2 s").
const Interval = 2 * time.Second

// RenderAdapter and UploadAdapter are optional, best-effort hooks
// (§1/§7: out of core, isolated, logged on failure).
type RenderAdapter interface {
	Render(run model.RunDoc, htmlDir string) error
}

type UploadAdapter interface {
	Upload(htmlDir string, final bool) error
}

// Reporter owns one run's aggregation loop.
type Reporter struct {
	Dir      cachedir.Dir
	OutFile  string
	Render   RenderAdapter
	Upload   UploadAdapter
	Logger   *slog.Logger

	lastFingerprint string
}

func New(dir cachedir.Dir, outFile string) *Reporter {
	return &Reporter{
		Dir:     dir,
		OutFile: outFile,
		Logger:  slog.Default().With(slog.String("component", "reporter")),
	}
}

// Tick performs one aggregation pass: load, join, roll up, fingerprint,
// publish. It returns the freshly computed run document and whether
// anything changed since the last tick (publish was skipped when
// nothing did).
func (r *Reporter) Tick(final bool) (model.RunDoc, bool, error) {
	cache, err := r.loadCache()
	if err != nil {
		return model.RunDoc{}, false, err
	}
	run := r.buildRunDoc(cache)

	fp, err := fingerprint(run)
	if err != nil {
		return run, false, err
	}
	run.Fingerprint = fp

	if !final && fp == r.lastFingerprint {
		return run, false, nil
	}
	r.lastFingerprint = fp

	if err := r.publish(run); err != nil {
		return run, false, err
	}

	if r.Render != nil {
		if err := r.Render.Render(run, r.Dir.HTMLDir()); err != nil {
			r.Logger.Error("render adapter failed", slog.Any("error", err))
		}
	}
	if r.Upload != nil {
		if err := r.Upload.Upload(r.Dir.HTMLDir(), final); err != nil {
			r.Logger.Error("upload adapter failed", slog.Any("error", err))
		}
	}

	return run, true, nil
}

// Loop ticks every Interval, or immediately whenever wake is signaled
// (the scheduler's "wake within 2s" contract, §4.E), until done is
// closed. The final tick after done is closed always publishes.
func (r *Reporter) Loop(done <-chan struct{}, wake <-chan struct{}) {
	ticker := time.NewTicker(Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			if _, _, err := r.Tick(false); err != nil {
				r.Logger.Error("aggregation tick failed", slog.Any("error", err))
			}
		case <-wake:
			if _, _, err := r.Tick(false); err != nil {
				r.Logger.Error("aggregation tick failed", slog.Any("error", err))
			}
		case <-done:
			if _, _, err := r.Tick(true); err != nil {
				r.Logger.Error("final aggregation tick failed", slog.Any("error", err))
			}
			return
		}
	}
}

func (r *Reporter) loadCache() (model.CacheDoc, error) {
	var cache model.CacheDoc
	b, err := os.ReadFile(r.Dir.CacheFile())
	if err != nil {
		return cache, fmt.Errorf("read cache.json: %w", err)
	}
	if err := json.Unmarshal(b, &cache); err != nil {
		return cache, fmt.Errorf("decode cache.json: %w", err)
	}
	return cache, nil
}

func (r *Reporter) loadStatus(job model.Job) model.JobStatus {
	b, err := os.ReadFile(r.Dir.StatusFile(job.JobID))
	if err != nil {
		return model.NotStarted(job)
	}
	var status model.JobStatus
	if err := json.Unmarshal(b, &status); err != nil {
		return model.NotStarted(job)
	}
	return status
}

// buildRunDoc implements §4.G steps 2-4: join, group, sort, roll up.
func (r *Reporter) buildRunDoc(cache model.CacheDoc) model.RunDoc {
	type key struct{ pipeline, stage string }
	grouped := map[key][]model.JobStatus{}
	for _, job := range cache.Jobs {
		status := r.loadStatus(job)
		k := key{job.PipelineName, job.CIStage}
		grouped[k] = append(grouped[k], status)
	}

	pipelineNames := map[string]bool{}
	for _, job := range cache.Jobs {
		pipelineNames[job.PipelineName] = true
	}
	names := make([]string, 0, len(pipelineNames))
	for p := range pipelineNames {
		names = append(names, p)
	}
	sort.Strings(names)

	run := model.RunDoc{
		Project:   cache.Project,
		RunID:     cache.RunID,
		Version:   cache.Version,
		StartTime: cache.StartTime,
		EndTime:   cache.EndTime,
	}

	runOutcome := model.OutcomeSuccess
	runAnyIncomplete := false

	for _, pname := range names {
		pipeline := model.Pipeline{Name: pname, Status: model.RunInProgress}
		pipelineOutcome := model.OutcomeSuccess
		pipelineAnyIncomplete := false
		for _, stageName := range cache.Stages {
			jobs := grouped[key{pname, stageName}]
			if jobs == nil {
				continue
			}
			sortJobs(jobs)
			stage := model.Stage{Name: stageName, Jobs: jobs}
			complete := true
			outcomes := make([]model.Outcome, 0, len(jobs))
			for _, j := range jobs {
				if !j.Complete {
					complete = false
					pipelineAnyIncomplete = true
					continue
				}
				outcomes = append(outcomes, j.Outcome)
			}
			stage.Complete = complete
			if len(jobs) > 0 {
				stage.Progress = completedCount(jobs) * 100 / len(jobs)
			}
			stage.Status = model.WorstOf(outcomes)
			pipelineOutcome = pipelineOutcome.Worst(stage.Status)
			pipeline.CIStages = append(pipeline.CIStages, stage)
		}
		if !pipelineAnyIncomplete {
			pipeline.Status = outcomeToRunStatus(pipelineOutcome)
		}
		if pipelineAnyIncomplete {
			runAnyIncomplete = true
		}
		runOutcome = runOutcome.Worst(pipelineOutcome)
		run.Pipelines = append(run.Pipelines, pipeline)
	}

	run.Status = model.RunInProgress
	if !runAnyIncomplete {
		run.Status = outcomeToRunStatus(runOutcome)
	}
	return run
}

func outcomeToRunStatus(o model.Outcome) model.RunStatus {
	if o == model.OutcomeFail {
		return model.RunFail
	}
	return model.RunSuccess
}

func completedCount(jobs []model.JobStatus) int {
	n := 0
	for _, j := range jobs {
		if j.Complete {
			n++
		}
	}
	return n
}

// sortJobs implements "incomplete before complete, then ascending
// start_time" (§4.G step 3).
func sortJobs(jobs []model.JobStatus) {
	sort.SliceStable(jobs, func(i, j int) bool {
		if jobs[i].Complete != jobs[j].Complete {
			return !jobs[i].Complete
		}
		return jobs[i].StartTime < jobs[j].StartTime
	})
}

func fingerprint(run model.RunDoc) (string, error) {
	stamped := run
	stamped.Fingerprint = ""
	b, err := json.Marshal(stamped)
	if err != nil {
		return "", fmt.Errorf("marshal run doc for fingerprint: %w", err)
	}
	sum := blake3.Sum256(b)
	return fmt.Sprintf("%x", sum), nil
}

func (r *Reporter) publish(run model.RunDoc) error {
	if err := validate.RunDoc(run); err != nil {
		return fmt.Errorf("run document failed validation, not publishing: %w", err)
	}
	b, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run.json: %w", err)
	}
	if err := cachedir.AtomicWrite(r.Dir.RunFile(), b); err != nil {
		return err
	}
	if r.OutFile != "" {
		if err := cachedir.AtomicWrite(r.OutFile, b); err != nil {
			return err
		}
	}
	return nil
}

// DumpNow recomputes the run document and writes it to
// dumped-run.json (the SIGUSR1 handler's action, §4.F), independent
// of fingerprint gating since a dump is always an explicit request.
func (r *Reporter) DumpNow() error {
	cache, err := r.loadCache()
	if err != nil {
		return err
	}
	run := r.buildRunDoc(cache)
	fp, err := fingerprint(run)
	if err != nil {
		return err
	}
	run.Fingerprint = fp
	if err := validate.RunDoc(run); err != nil {
		return fmt.Errorf("run document failed validation, not dumping: %w", err)
	}
	b, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal dumped-run.json: %w", err)
	}
	return cachedir.AtomicWrite(r.Dir.DumpedRunFile(), b)
}
