package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/litani-build/litani/internal/expiry"
)

var (
	expiryMaxAge      time.Duration
	expiryReportDataDir string
)

func init() {
	printExpiryCandidatesCmd.Flags().DurationVar(&expiryMaxAge, "max-age", 30*24*time.Hour, "directories older than this and not yet marked are flagged expired")
	printExpiryCandidatesCmd.Flags().StringVar(&expiryReportDataDir, "report-data-dir", "", "report_data directory to scan (default: the active cache directory's own)")
	gcCmd.Flags().StringVar(&expiryReportDataDir, "report-data-dir", "", "report_data directory to sweep (default: the active cache directory's own)")
	rootCmd.AddCommand(printExpiryCandidatesCmd)
	rootCmd.AddCommand(gcCmd)
}

var printExpiryCandidatesCmd = &cobra.Command{
	Use:   "print-expiry-candidates",
	Short: "Mark stale report_data directories as expired and print them",
	Long: `print-expiry-candidates lists every report_data/<run> directory
older than --max-age that isn't already marked, marks each one
expired, and prints the marked paths (§4.H). Marking is separate from
removal: a later gc invocation is what actually deletes them, and only
once it can acquire each directory's cooperative lock.`,
	RunE: runPrintExpiryCandidates,
}

func runPrintExpiryCandidates(cmd *cobra.Command, args []string) error {
	reportDataDir, err := resolveReportDataDir()
	if err != nil {
		return err
	}
	marked, err := expiry.MarkStaleAsExpired(reportDataDir, expiryMaxAge, time.Now())
	if err != nil {
		return err
	}
	for _, path := range marked {
		fmt.Println(path)
	}
	return nil
}

var gcCmd = &cobra.Command{
	Use:   "gc",
	Short: "Remove expired report_data directories",
	Long: `gc walks report_data/, acquires each directory's cooperative lock
(§4.H), and removes the ones already marked expired by
print-expiry-candidates. A directory another process currently holds
is skipped this pass rather than waited on.`,
	RunE: runGC,
}

func runGC(cmd *cobra.Command, args []string) error {
	reportDataDir, err := resolveReportDataDir()
	if err != nil {
		return err
	}
	removed, skipped, err := expiry.Sweep(reportDataDir)
	if err != nil {
		return err
	}
	for _, path := range removed {
		fmt.Printf("removed %s\n", path)
	}
	for _, path := range skipped {
		fmt.Printf("skipped %s (locked)\n", path)
	}
	return nil
}

func resolveReportDataDir() (string, error) {
	if expiryReportDataDir != "" {
		return expiryReportDataDir, nil
	}
	dir, err := findCacheDir()
	if err != nil {
		return "", mapToConfigError(err)
	}
	return dir.ReportDataDir(), nil
}
