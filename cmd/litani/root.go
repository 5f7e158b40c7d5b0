package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/litani-build/litani/internal/clierr"
)

var rootCmd = &cobra.Command{
	Use:   "litani",
	Short: "A distributed-friendly CI build orchestrator",
	Long: `litani executes user-declared jobs as a dependency DAG, grouping
them by pipeline and CI stage, while continuously materializing a live
status report. Register jobs one by one (or in batch) with add-job,
then issue run-build to schedule and execute them respecting
input/output dependencies, concurrency pools, per-job timeouts, and
return-code policies.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and maps any error that escapes a
// subcommand to a process exit code (§7): everything that reaches
// here without already having called os.Exit itself (run-build's
// --fail-on-pipeline-failure path) is either a configuration error or
// an unexpected failure, both of which exit 1.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(clierr.ExitConfigError)
	}
}
