package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/litani-build/litani/internal/clierr"
	"github.com/litani-build/litani/internal/jobstore"
	"github.com/litani-build/litani/internal/model"
	"github.com/litani-build/litani/internal/reporter"
	"github.com/litani-build/litani/internal/scheduler"
	"github.com/litani-build/litani/internal/sigrouter"
)

var (
	runBuildDryRun             bool
	runBuildParallel           int
	runBuildOutFile            string
	runBuildFailOnFailure      bool
	runBuildPipelines          []string
	runBuildStages             []string
	runBuildNoPipelineDepGraph bool
)

func init() {
	f := runBuildCmd.Flags()
	f.BoolVarP(&runBuildDryRun, "dry-run", "n", false, "don't run jobs; mark every job as an immediate success")
	f.IntVarP(&runBuildParallel, "parallel", "j", runtime.NumCPU(), "maximum number of jobs to run at once (0 means uncapped)")
	f.StringVarP(&runBuildOutFile, "out-file", "o", "", "also write the run document to this path on every publish")
	f.BoolVar(&runBuildFailOnFailure, "fail-on-pipeline-failure", false, "exit 10 if any pipeline's final status is fail")
	f.StringSliceVarP(&runBuildPipelines, "pipelines", "p", nil, "restrict this run to only these pipelines")
	f.StringSliceVarP(&runBuildStages, "ci-stage", "s", nil, "restrict this run to only this CI stage")
	f.BoolVar(&runBuildNoPipelineDepGraph, "no-pipeline-dep-graph", false, "accepted for CLI parity; the rendered dependency graph is not implemented")
	rootCmd.AddCommand(runBuildCmd)
}

var runBuildCmd = &cobra.Command{
	Use:   "run-build",
	Short: "Schedule and execute every declared job",
	Long: `run-build collects jobs/*.json into cache.json, builds the
dependency DAG from job inputs/outputs (§4.E), installs the run's
signal handlers (§4.F), starts the status-report aggregation loop
(§4.G), and drives the DAG to completion under -j bounded
parallelism and any declared pools. A job's failure never stops the
run: dependents are skipped and inherit fail, while unrelated jobs
keep going (§4.E).

-p/--pipelines and -s/--ci-stage restrict the run to a subset of the
graph; they are mutually exclusive.`,
	RunE: runRunBuild,
}

func runRunBuild(cmd *cobra.Command, args []string) error {
	if len(runBuildPipelines) > 0 && len(runBuildStages) > 0 {
		return clierr.Configf("--pipelines and --ci-stage are mutually exclusive")
	}

	dir, err := findCacheDir()
	if err != nil {
		return mapToConfigError(err)
	}

	store := jobstore.New(*dir)
	if err := store.CollectJobsIntoCache(); err != nil {
		return err
	}

	cache, err := loadCache(*dir)
	if err != nil {
		return err
	}

	if err := scheduler.ValidatePools(cache.Pools); err != nil {
		return clierr.WrapConfig("run-build", err)
	}
	if err := validateJobPools(cache); err != nil {
		return err
	}

	graph, err := scheduler.Build(cache.Jobs)
	if err != nil {
		return err
	}
	graph, err = restrictGraph(graph)
	if err != nil {
		return clierr.WrapConfig("run-build", err)
	}

	router, err := sigrouter.Install(*dir)
	if err != nil {
		return fmt.Errorf("install signal router: %w", err)
	}

	rep := reporter.New(*dir, runBuildOutFile)
	done := make(chan struct{})
	wake := make(chan struct{}, 1)
	reporterDone := make(chan struct{})
	go func() {
		rep.Loop(done, wake)
		close(reporterDone)
	}()
	go drainDumpRequests(router.DumpRequested, rep)

	var runner scheduler.JobRunner
	if runBuildDryRun {
		runner = dryRunJobRunner{Dir: *dir}
	} else {
		runner = jobRunner{Dir: *dir}
	}

	parallel := runBuildParallel
	if !cmd.Flags().Changed("parallel") {
		parallel = runtime.NumCPU()
	}
	executor := scheduler.NewExecutor(graph, runner, scheduler.Options{
		Parallel: parallel,
		Pools:    cache.Pools,
		OnJobDone: func(string) {
			select {
			case wake <- struct{}{}:
			default:
			}
		},
	})

	result, err := executor.Run(context.Background())
	close(done)
	<-reporterDone
	if err != nil {
		return fmt.Errorf("run build: %w", err)
	}

	cache.EndTime = time.Now().UTC().Format(model.TimeFormat)
	cache.Status = model.RunSuccess
	if result.Failed {
		cache.Status = model.RunFail
	}
	if err := writeCache(*dir, cache); err != nil {
		return err
	}

	// A final tick already ran as part of closing `done` above; this one
	// recomputes and republishes run.json after cache.json's end time
	// is written, and its status decides the exit code below.
	run, _, err := rep.Tick(true)
	if err != nil {
		return err
	}

	fmt.Printf("Report was rendered to file://%s/html/index.html\n", dir.Path)
	if runBuildFailOnFailure && run.Status == model.RunFail {
		os.Exit(clierr.ExitPipelineFailure)
	}
	return nil
}

func restrictGraph(g *scheduler.Graph) (*scheduler.Graph, error) {
	var targets []string
	for _, p := range runBuildPipelines {
		targets = append(targets, scheduler.PipelineTarget(p))
	}
	for _, s := range runBuildStages {
		targets = append(targets, scheduler.StageTarget(s))
	}
	if len(targets) == 0 {
		return g, nil
	}
	return g.Restrict(targets)
}

// validateJobPools rejects any job whose declared pool was never
// declared at init (original Litani's fill_out_ninja does the same
// check before handing the pool list to ninja).
func validateJobPools(cache model.CacheDoc) error {
	for _, j := range cache.Jobs {
		if j.Pool == "" {
			continue
		}
		if _, ok := cache.Pools[j.Pool]; !ok {
			return clierr.Configf("job %s declares pool %q, which was not declared at init", j.JobID, j.Pool)
		}
	}
	return nil
}

func drainDumpRequests(requested <-chan struct{}, rep *reporter.Reporter) {
	for range requested {
		if err := rep.DumpNow(); err != nil {
			rep.Logger.Error("dump-run write failed", slog.Any("error", err))
		}
	}
}
