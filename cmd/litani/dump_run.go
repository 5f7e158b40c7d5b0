package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/litani-build/litani/internal/sigrouter"
)

var dumpRunRetries int

func init() {
	dumpRunCmd.Flags().IntVar(&dumpRunRetries, "retries", 10, "how many backoff-spaced polls to attempt before giving up")
	rootCmd.AddCommand(dumpRunCmd)
}

var dumpRunCmd = &cobra.Command{
	Use:   "dump-run",
	Short: "Request and print an on-demand snapshot of the current run",
	Long: `dump-run signals the running orchestrator (via run-pid) with
SIGUSR1, then polls dumped-run.json with exponential backoff until it
changes or --retries is exhausted (§4.F), printing the refreshed run
document to stdout.`,
	RunE: runDumpRun,
}

func runDumpRun(cmd *cobra.Command, args []string) error {
	dir, err := findCacheDir()
	if err != nil {
		return mapToConfigError(err)
	}
	b, err := sigrouter.PollDumpedRun(*dir, dumpRunRetries, dir.Path)
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
