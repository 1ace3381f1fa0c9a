/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/core/config"
	"github.com/depscope/depscope/core/logger"
)

var (
	force bool
)

const starterConfig = `# depscope configuration.
packages:
  - mypackage

search_paths:
  - .

# include_external_packages: true
# exclude_type_checking_imports: true
# cache_dir: .depscope_cache

contracts:
  - name: layered architecture
    containers:
      - mypackage
    layers:
      - api
      - domain
      - db
`

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a starter depscope.yaml",
	Long:  `Writes a commented starter depscope.yaml to the current directory.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger.Debug("init called")

		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
		path := filepath.Join(wd, config.FileName)
		if _, err := os.Stat(path); err == nil && !force {
			fmt.Printf("%s already exists. Use --force to overwrite.\n", config.FileName)
			return nil
		}

		if err := os.WriteFile(path, []byte(starterConfig), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", config.FileName, err)
		}
		fmt.Printf("Wrote %s\n", config.FileName)
		fmt.Printf("Next Steps:\n")
		fmt.Printf("  - edit %s to name your packages and layers\n", config.FileName)
		fmt.Printf("  - depscope check\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().BoolVar(&force, "force", false, "Force overwrite an existing config file")
}
