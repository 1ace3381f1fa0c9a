package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/core/builder"
	"github.com/depscope/depscope/core/cache"
	"github.com/depscope/depscope/core/config"
	"github.com/depscope/depscope/core/logger"
	"github.com/depscope/depscope/core/scanner"
	"github.com/depscope/depscope/core/watcher"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Rebuild and re-check on every source change",
	Long: `Watches the package directories and re-runs the build and the layer
contracts whenever a Python file changes. Scan results for unchanged
files are reused between runs.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("watch called")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		packages, opts := buildOptions(cmd, args, cfg)
		if len(packages) == 0 {
			return fmt.Errorf("no packages configured; run `depscope init` first")
		}

		scanCache, err := cache.NewScanCache(cache.DefaultScanCacheSize)
		if err != nil {
			return err
		}
		opts.ScanCache = scanCache

		run := func() error {
			g, err := builder.Build(packages, opts)
			if err != nil {
				return err
			}
			printGraphSummary(g)
			if len(cfg.Contracts) == 0 {
				return nil
			}
			violations, err := runContracts(g, cfg.Contracts)
			if err != nil {
				return err
			}
			if violations > 0 {
				logger.Warn("%d illegal dependencies", violations)
			}
			return nil
		}

		if err := run(); err != nil {
			return err
		}

		searchPaths := opts.SearchPaths
		if len(searchPaths) == 0 {
			searchPaths = []string{"."}
		}
		var roots []string
		for _, name := range packages {
			dir, err := scanner.FindPackageDirectory(name, searchPaths)
			if err != nil {
				return err
			}
			roots = append(roots, dir)
		}

		pw, err := watcher.NewPackageWatcher(roots, scanCache)
		if err != nil {
			return err
		}
		defer pw.Close()
		pw.OnChange = func() error {
			return run()
		}

		logger.Info("Watching %d package directories...", len(roots))
		return pw.Watch()
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
	registerBuildFlags(watchCmd)
}
