package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/core/builder"
	"github.com/depscope/depscope/core/config"
	"github.com/depscope/depscope/core/graph"
	"github.com/depscope/depscope/core/logger"
)

var queryAsPackage bool

var queryCmd = &cobra.Command{
	Use:   "query <kind> <module> [module]",
	Short: "Run a one-shot query against the import graph",
	Long: `Builds the graph for the packages in depscope.yaml and answers one
query against it.

Kinds:
  children <module>        modules one level below
  descendants <module>     modules anywhere below
  downstream <module>      modules that depend on it, directly or not
  upstream <module>        modules it depends on, directly or not
  chain <importer> <imported>   a shortest import chain between the two`,
	Args:         cobra.RangeArgs(2, 3),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("query called")

		cfg, err := config.Load()
		if err != nil {
			return err
		}
		packages, opts := buildOptions(cmd, nil, cfg)
		g, err := builder.Build(packages, opts)
		if err != nil {
			return err
		}

		kind, module := args[0], args[1]
		switch kind {
		case "children":
			result, err := g.Children(module)
			if err != nil {
				return err
			}
			printModules(result)
		case "descendants":
			result, err := g.Descendants(module)
			if err != nil {
				return err
			}
			printModules(result)
		case "downstream":
			printModules(g.DownstreamModules(module, queryAsPackage))
		case "upstream":
			printModules(g.UpstreamModules(module, queryAsPackage))
		case "chain":
			if len(args) != 3 {
				return fmt.Errorf("chain needs an importer and an imported module")
			}
			chain := g.ShortestChain(module, args[2])
			if chain == nil {
				fmt.Printf("No chain from %s to %s.\n", module, args[2])
				return nil
			}
			fmt.Println(strings.Join(chain, " -> "))
		default:
			return fmt.Errorf("unknown query kind %q", kind)
		}
		return nil
	},
}

func printModules(modules graph.ModuleSet) {
	if len(modules) == 0 {
		fmt.Println("(none)")
		return
	}
	for _, module := range modules.Sorted() {
		fmt.Println(module)
	}
}

func init() {
	rootCmd.AddCommand(queryCmd)
	registerBuildFlags(queryCmd)
	queryCmd.Flags().BoolVar(&queryAsPackage, "as-package", false, "Treat the module and its descendants as one unit")
}
