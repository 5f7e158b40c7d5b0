package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/litani-build/litani/internal/cachedir"
	"github.com/litani-build/litani/internal/clierr"
	"github.com/litani-build/litani/internal/model"
)

var (
	initProject       string
	initStages        []string
	initPoolSpecs     []string
	initOutputDir     string
	initOutputPrefix  string
	initOutputSymlink string
	initNoPrintOutDir bool
)

func init() {
	initCmd.Flags().StringVar(&initProject, "project-name", "", "name of the project this run belongs to (required)")
	initCmd.Flags().StringSliceVar(&initStages, "stages", nil, "declared CI stages, in order (default: build, test, report)")
	initCmd.Flags().StringSliceVar(&initPoolSpecs, "pools", nil, "NAME:DEPTH pool declarations")
	initCmd.Flags().StringVar(&initOutputDir, "output-directory", "", "exact cache directory to create (mutually exclusive with --output-prefix)")
	initCmd.Flags().StringVar(&initOutputPrefix, "output-prefix", "", "parent directory under which a run-id-named cache directory is created")
	initCmd.Flags().StringVar(&initOutputSymlink, "output-symlink", "", "path for the 'latest' symlink (default: a 'latest' sibling of the cache directory)")
	initCmd.Flags().BoolVar(&initNoPrintOutDir, "no-print-out-dir", false, "suppress the report-location banner")
	_ = initCmd.MarkFlagRequired("project-name")
	rootCmd.AddCommand(initCmd)
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new run's cache directory",
	Long: `init creates the cache directory that is the root of one run: it
writes cache.json (project, run_id, declared stages and pools), the
sibling pointer file that lets every later subcommand find this run by
walking up from the current directory, and a "latest" symlink.`,
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	if initOutputDir != "" && initOutputPrefix != "" {
		return clierr.Configf("--output-directory and --output-prefix are mutually exclusive")
	}
	pools, err := parsePoolSpecs(initPoolSpecs)
	if err != nil {
		return err
	}

	res, err := cachedir.Init(cachedir.InitOptions{
		Project:         initProject,
		Stages:          initStages,
		Pools:           pools,
		RunID:           os.Getenv("LITANI_RUN_ID"),
		OutputDirectory: initOutputDir,
		OutputPrefix:    initOutputPrefix,
		OutputSymlink:   initOutputSymlink,
	})
	if err != nil {
		if already, ok := err.(cachedir.AlreadyExistsError); ok {
			return clierr.WrapConfig("init failed", already)
		}
		return err
	}

	// The same banner is printed again at the end of run-build, per
	// original Litani's init.py/run_build.py pair.
	if !initNoPrintOutDir {
		fmt.Printf("Report will be rendered at file://%s/html/index.html\n", res.LatestSymlink)
	}
	fmt.Printf("cache_dir=%s\n", res.Dir.Path)
	return nil
}

func parsePoolSpecs(specs []string) (model.Pools, error) {
	pools := model.Pools{}
	for _, spec := range specs {
		parts := strings.SplitN(spec, ":", 2)
		if len(parts) != 2 || parts[0] == "" {
			return nil, clierr.Configf("malformed pool spec %q, expected NAME:DEPTH", spec)
		}
		depth, err := strconv.Atoi(parts[1])
		if err != nil {
			return nil, clierr.Configf("malformed pool depth in %q: not an integer", spec)
		}
		if depth < 1 {
			return nil, clierr.Configf("pool %q has depth %d, must be >= 1", parts[0], depth)
		}
		pools[parts[0]] = depth
	}
	return pools, nil
}
