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

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check the codebase against its layer contracts",
	Long: `Builds the import graph and checks every contract declared in
depscope.yaml, printing each illegal dependency and the routes that
carry it. Exits non-zero when any contract is broken.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("check called")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if len(cfg.Contracts) == 0 {
			return fmt.Errorf("no contracts declared in %s; run `depscope init` to create one", config.FileName)
		}

		packages, opts := buildOptions(cmd, args, cfg)
		g, err := builder.Build(packages, opts)
		if err != nil {
			return err
		}

		violations, err := runContracts(g, cfg.Contracts)
		if err != nil {
			return err
		}
		if violations > 0 {
			return fmt.Errorf("found %d illegal dependencies", violations)
		}
		fmt.Println("All contracts hold.")
		return nil
	},
}

// runContracts checks each contract in turn, printing what it finds,
// and returns the total number of illegal dependencies.
func runContracts(g *graph.ImportGraph, contracts []config.Contract) (int, error) {
	violations := 0
	for _, contract := range contracts {
		layers := make([]graph.Layer, len(contract.Layers))
		for i, spec := range contract.Layers {
			layers[i] = spec.ToLayer()
		}

		dependencies, err := g.FindIllegalDependenciesForLayers(layers, contract.Containers)
		if err != nil {
			return 0, fmt.Errorf("contract %q: %w", contract.Name, err)
		}
		if len(dependencies) == 0 {
			fmt.Printf("Contract %q holds.\n", contract.Name)
			continue
		}

		fmt.Printf("Contract %q is broken:\n", contract.Name)
		for _, dependency := range dependencies {
			violations++
			fmt.Printf("  %s must not import %s:\n", dependency.Importer, dependency.Imported)
			for _, route := range dependency.Routes {
				fmt.Printf("    %s\n", route)
			}
		}
	}
	return violations, nil
}

func init() {
	rootCmd.AddCommand(checkCmd)
	registerBuildFlags(checkCmd)
}
