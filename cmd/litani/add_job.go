package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/litani-build/litani/internal/jobstore"
	"github.com/litani-build/litani/internal/model"
)

var (
	addJobCommand       string
	addJobPipelineName  string
	addJobCIStage       string
	addJobDescription   string
	addJobCWD           string
	addJobInputs        []string
	addJobOutputs       []string
	addJobPhonyOutputs  []string
	addJobPhonySet      bool
	addJobTimeout       int
	addJobTimeoutOK     bool
	addJobTimeoutIgnore bool
	addJobIgnoreReturns []int
	addJobOkReturns     []int
	addJobOutcomeTable  string
	addJobInterleave    bool
	addJobStdoutFile    string
	addJobStderrFile    string
	addJobPool          string
	addJobTags          []string
	addJobFromFile      string

	// Accepted for CLI parity with spec.md §6 but never acted on:
	// memory-usage profiling of child processes is explicitly cosmetic
	// and not specified (spec.md §1).
	addJobProfileMemory         bool
	addJobProfileMemoryInterval int
)

func init() {
	f := addJobCmd.Flags()
	f.StringVar(&addJobCommand, "command", "", "shell command to run")
	f.StringVar(&addJobPipelineName, "pipeline-name", "", "pipeline this job belongs to")
	f.StringVar(&addJobCIStage, "ci-stage", "", "CI stage this job belongs to; must be one declared at init")
	f.StringVar(&addJobDescription, "description", "", "human-readable description")
	f.StringVar(&addJobCWD, "cwd", "", "working directory to run the command in")
	f.StringSliceVar(&addJobInputs, "inputs", nil, "input paths, @file list-expansion tokens, or glob patterns")
	f.StringSliceVar(&addJobOutputs, "outputs", nil, "output paths, @file list-expansion tokens, or glob patterns")
	f.StringSliceVar(&addJobPhonyOutputs, "phony-outputs", nil, "outputs whose absence at job end is tolerated")
	f.IntVar(&addJobTimeout, "timeout", -1, "timeout in seconds (unset means no timeout)")
	f.BoolVar(&addJobTimeoutOK, "timeout-ok", false, "a timeout counts as success")
	f.BoolVar(&addJobTimeoutIgnore, "timeout-ignore", false, "a timeout classifies the job as fail_ignored (wrapper rc 0); it does not make the pipeline or run status fail")
	f.IntSliceVar(&addJobIgnoreReturns, "ignore-returns", nil, "return codes that count as success")
	f.IntSliceVar(&addJobOkReturns, "ok-returns", nil, "return codes that classify the job as fail_ignored (wrapper rc 0); they do not make the pipeline or run status fail")
	f.StringVar(&addJobOutcomeTable, "outcome-table", "", "path to a JSON file overriding the default outcome policy")
	f.BoolVar(&addJobInterleave, "interleave-stdout-stderr", false, "merge the child's stderr into its stdout")
	f.StringVar(&addJobStdoutFile, "stdout-file", "", "mirror stdout verbatim to this file")
	f.StringVar(&addJobStderrFile, "stderr-file", "", "mirror stderr verbatim to this file")
	f.StringVar(&addJobPool, "pool", "", "named concurrency pool this job must hold while running")
	f.StringSliceVar(&addJobTags, "tags", nil, "free-form tags")
	f.StringVar(&addJobFromFile, "from-file", "", "import a YAML manifest of jobs instead of a single --command job")
	f.BoolVar(&addJobProfileMemory, "profile-memory", false, "accepted for CLI parity; memory profiling is not implemented")
	f.IntVar(&addJobProfileMemoryInterval, "profile-memory-interval", 0, "accepted for CLI parity; memory profiling is not implemented")

	rootCmd.AddCommand(addJobCmd)
}

var addJobCmd = &cobra.Command{
	Use:   "add-job",
	Short: "Declare one job (or a batch, via --from-file)",
	Long: `add-job validates ci-stage against the stages declared at init,
assigns a fresh job_id, and atomically writes jobs/<job_id>.json.
Concurrent add-job invocations are safe: each writes a distinct file.

--from-file imports a YAML manifest listing multiple job definitions in
one shot, each going through the same validation and identity
assignment as a single add-job call.`,
	RunE: runAddJob,
}

func runAddJob(cmd *cobra.Command, args []string) error {
	dir, err := findCacheDir()
	if err != nil {
		return mapToConfigError(err)
	}
	store := jobstore.New(*dir)

	if addJobFromFile != "" {
		jobs, err := store.ImportManifest(addJobFromFile)
		if err != nil {
			return err
		}
		return printJobs(jobs)
	}

	job := model.Job{
		PipelineName:           addJobPipelineName,
		CIStage:                addJobCIStage,
		Description:            addJobDescription,
		Command:                addJobCommand,
		CWD:                    addJobCWD,
		Inputs:                 addJobInputs,
		Outputs:                addJobOutputs,
		InterleaveStdoutStderr: addJobInterleave,
		StdoutFile:             addJobStdoutFile,
		StderrFile:             addJobStderrFile,
		Pool:                   addJobPool,
		Tags:                   addJobTags,
		TimeoutOK:              addJobTimeoutOK,
		TimeoutIgnore:          addJobTimeoutIgnore,
		IgnoreReturns:          addJobIgnoreReturns,
		OkReturns:              addJobOkReturns,
		OutcomeTable:           addJobOutcomeTable,
	}
	if cmd.Flags().Changed("phony-outputs") {
		// A non-nil, possibly-empty PhonyOutputs slice distinguishes "no
		// phony outputs were declared" from "every output is phony"
		// (model.Job.IsPhonyOutput, §4.B).
		job.PhonyOutputs = addJobPhonyOutputs
		if job.PhonyOutputs == nil {
			job.PhonyOutputs = []string{}
		}
	}
	if cmd.Flags().Changed("timeout") {
		t := addJobTimeout
		job.Timeout = &t
	}

	added, err := store.AddJob(job)
	if err != nil {
		return err
	}
	return printJobs([]model.Job{added.Public()})
}

func printJobs(jobs []model.Job) error {
	b, err := json.MarshalIndent(jobs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal jobs: %w", err)
	}
	fmt.Fprintln(rootCmd.OutOrStdout(), string(b))
	return nil
}
