package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/litani-build/litani/internal/jobstore"
	"github.com/litani-build/litani/internal/model"
)

func init() {
	rootCmd.AddCommand(transformJobsCmd)
}

var transformJobsCmd = &cobra.Command{
	Use:   "transform-jobs",
	Short: "Replace the job set with a possibly-edited array read from stdin",
	Long: `transform-jobs reads a JSON array of job definitions from stdin —
typically the output of get-jobs, possibly edited by an external tool —
and reconciles it against jobs/*.json (§4.B): job IDs absent from the
new set are deleted, byte-identical entries are left untouched, changed
entries are rewritten, and entries with an unrecognized (or blank)
job_id are added as brand new jobs. The resulting job set is printed to
stdout as a JSON array.

An identity transform (get-jobs | transform-jobs with no edits) leaves
jobs/ byte-equivalent (§8 round-trip property).`,
	RunE: runTransformJobs,
}

func runTransformJobs(cmd *cobra.Command, args []string) error {
	dir, err := findCacheDir()
	if err != nil {
		return mapToConfigError(err)
	}

	b, err := io.ReadAll(os.Stdin)
	if err != nil {
		return fmt.Errorf("read stdin: %w", err)
	}
	var newJobs []model.Job
	if err := json.Unmarshal(b, &newJobs); err != nil {
		return fmt.Errorf("decode job array from stdin: %w", err)
	}

	out, err := jobstore.New(*dir).TransformJobs(newJobs)
	if err != nil {
		return err
	}
	return printJobs(out)
}
