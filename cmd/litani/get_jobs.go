package main

import (
	"github.com/spf13/cobra"

	"github.com/litani-build/litani/internal/jobstore"
)

func init() {
	rootCmd.AddCommand(getJobsCmd)
}

var getJobsCmd = &cobra.Command{
	Use:   "get-jobs",
	Short: "Print every declared job as a JSON array",
	Long: `get-jobs prints the current jobs/*.json set as a single JSON array,
with private fields (status_file, subcommand) stripped, in job_id
order. Paired with transform-jobs this is the round-trip protocol
external job-rewriter tools use (§4.B).`,
	RunE: runGetJobs,
}

func runGetJobs(cmd *cobra.Command, args []string) error {
	dir, err := findCacheDir()
	if err != nil {
		return mapToConfigError(err)
	}
	jobs, err := jobstore.New(*dir).GetJobs()
	if err != nil {
		return err
	}
	return printJobs(jobs)
}
