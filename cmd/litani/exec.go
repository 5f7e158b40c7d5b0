package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/litani-build/litani/internal/clierr"
	"github.com/litani-build/litani/internal/model"
)

var (
	execJobID          string
	execCommand        string
	execPipelineName   string
	execCIStage        string
	execDescription    string
	execCWD            string
	execInputs         []string
	execOutputs        []string
	execPhonyOutputs   []string
	execTimeout        int
	execTimeoutOK      bool
	execTimeoutIgnore  bool
	execIgnoreReturns  []int
	execOkReturns      []int
	execOutcomeTable   string
	execInterleave     bool
	execStdoutFile     string
	execStderrFile     string
	execPool           string
	execTags           []string
)

func init() {
	f := execCmd.Flags()
	f.StringVar(&execJobID, "job-id", "", "job_id this invocation is running on behalf of (required)")
	f.StringVar(&execCommand, "command", "", "shell command to run")
	f.StringVar(&execPipelineName, "pipeline-name", "", "pipeline this job belongs to")
	f.StringVar(&execCIStage, "ci-stage", "", "CI stage this job belongs to")
	f.StringVar(&execDescription, "description", "", "human-readable description")
	f.StringVar(&execCWD, "cwd", "", "working directory to run the command in")
	f.StringSliceVar(&execInputs, "inputs", nil, "input paths")
	f.StringSliceVar(&execOutputs, "outputs", nil, "output paths")
	f.StringSliceVar(&execPhonyOutputs, "phony-outputs", nil, "outputs whose absence is tolerated")
	f.IntVar(&execTimeout, "timeout", -1, "timeout in seconds")
	f.BoolVar(&execTimeoutOK, "timeout-ok", false, "a timeout counts as success")
	f.BoolVar(&execTimeoutIgnore, "timeout-ignore", false, "a timeout is tolerated locally")
	f.IntSliceVar(&execIgnoreReturns, "ignore-returns", nil, "return codes that count as success")
	f.IntSliceVar(&execOkReturns, "ok-returns", nil, "return codes that classify the job as fail_ignored (wrapper rc 0)")
	f.StringVar(&execOutcomeTable, "outcome-table", "", "path to a JSON file overriding the default outcome policy")
	f.BoolVar(&execInterleave, "interleave-stdout-stderr", false, "merge stderr into stdout")
	f.StringVar(&execStdoutFile, "stdout-file", "", "mirror stdout verbatim to this file")
	f.StringVar(&execStderrFile, "stderr-file", "", "mirror stderr verbatim to this file")
	f.StringVar(&execPool, "pool", "", "named concurrency pool")
	f.StringSliceVar(&execTags, "tags", nil, "free-form tags")
	_ = execCmd.MarkFlagRequired("job-id")
	_ = execCmd.MarkFlagRequired("command")
	rootCmd.AddCommand(execCmd)
}

var execCmd = &cobra.Command{
	Use:    "exec",
	Short:  "Run one job to completion (internal)",
	Hidden: true,
	Long: `exec runs a single job's command, classifies its outcome, writes
its status file, and copies its artifacts — the same sequence
run-build's in-process executor uses for every job it schedules, so
the two can never observe a job differently. It exists as a standalone
subcommand for parity with jobs authored to invoke themselves directly
(spec.md §6: "exec (internal): spawned per-job"); run-build never
shells out to it, it calls the same Go code in-process.`,
	RunE: runExec,
}

func runExec(cmd *cobra.Command, args []string) error {
	dir, err := findCacheDir()
	if err != nil {
		return mapToConfigError(err)
	}

	job := model.Job{
		JobID:                  execJobID,
		PipelineName:           execPipelineName,
		CIStage:                execCIStage,
		Description:            execDescription,
		Command:                execCommand,
		CWD:                    execCWD,
		Inputs:                 execInputs,
		Outputs:                execOutputs,
		PhonyOutputs:           execPhonyOutputs,
		TimeoutOK:              execTimeoutOK,
		TimeoutIgnore:          execTimeoutIgnore,
		IgnoreReturns:          execIgnoreReturns,
		OkReturns:              execOkReturns,
		OutcomeTable:           execOutcomeTable,
		InterleaveStdoutStderr: execInterleave,
		StdoutFile:             execStdoutFile,
		StderrFile:             execStderrFile,
		Pool:                   execPool,
		Tags:                   execTags,
	}
	if cmd.Flags().Changed("timeout") {
		t := execTimeout
		job.Timeout = &t
	}

	res, err := runJobToCompletion(context.Background(), *dir, job)
	if err != nil {
		return clierr.WrapConfig("exec", err)
	}
	os.Exit(res.WrapperReturnCode)
	return nil
}
