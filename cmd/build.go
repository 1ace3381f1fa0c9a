/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/core/builder"
	"github.com/depscope/depscope/core/config"
	"github.com/depscope/depscope/core/graph"
	"github.com/depscope/depscope/core/logger"
)

var (
	buildSearchPaths    []string
	buildExternal       bool
	buildNoTypeChecking bool
	buildCacheDir       string
	buildNoCache        bool
)

var buildCmd = &cobra.Command{
	Use:   "build [package...]",
	Short: "Build the import graph and print a summary",
	Long: `Builds the import graph for the given packages (or the packages named
in depscope.yaml) and prints what it found.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("build called")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		packages, opts := buildOptions(cmd, args, cfg)

		g, err := builder.Build(packages, opts)
		if err != nil {
			return err
		}
		printGraphSummary(g)
		return nil
	},
}

// buildOptions merges depscope.yaml with command line overrides. Args
// beat the config's package list; flags beat config fields only when
// set explicitly.
func buildOptions(cmd *cobra.Command, args []string, cfg *config.Config) ([]string, builder.Options) {
	packages := cfg.Packages
	if len(args) > 0 {
		packages = args
	}

	opts := builder.Options{
		SearchPaths:                cfg.SearchPaths,
		IncludeExternalPackages:    cfg.IncludeExternalPackages,
		ExcludeTypeCheckingImports: cfg.ExcludeTypeCheckingImports,
		CacheDir:                   cfg.CacheDir,
		NoCache:                    cfg.NoCache,
	}
	if cmd.Flags().Changed("search-path") {
		opts.SearchPaths = buildSearchPaths
	}
	if cmd.Flags().Changed("external") {
		opts.IncludeExternalPackages = buildExternal
	}
	if cmd.Flags().Changed("no-type-checking") {
		opts.ExcludeTypeCheckingImports = buildNoTypeChecking
	}
	if cmd.Flags().Changed("cache-dir") {
		opts.CacheDir = buildCacheDir
	}
	if cmd.Flags().Changed("no-cache") {
		opts.NoCache = buildNoCache
	}
	return packages, opts
}

func printGraphSummary(g *graph.ImportGraph) {
	modules := g.Modules().Sorted()
	squashed := 0
	for _, module := range modules {
		if g.IsModuleSquashed(module) {
			squashed++
		}
	}
	fmt.Printf("Built graph: %d modules, %d imports", len(modules), g.CountImports())
	if squashed > 0 {
		fmt.Printf(" (%d external packages)", squashed)
	}
	fmt.Println()
}

func registerBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&buildSearchPaths, "search-path", nil, "Directory to resolve packages against (repeatable)")
	cmd.Flags().BoolVar(&buildExternal, "external", false, "Include external packages as squashed modules")
	cmd.Flags().BoolVar(&buildNoTypeChecking, "no-type-checking", false, "Exclude imports guarded by TYPE_CHECKING")
	cmd.Flags().StringVar(&buildCacheDir, "cache-dir", "", "Cache directory")
	cmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "Disable the disk cache")
}

func init() {
	rootCmd.AddCommand(buildCmd)
	registerBuildFlags(buildCmd)
}
