/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "depscope",
	Short: "Build and query the import graph of a Python codebase.",
	Long: `Depscope statically analyses the imports of a Python codebase, builds a
queryable dependency graph out of them, and checks the graph against the
layered architecture you declare in depscope.yaml.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.SetVerbose(verbose)
		if logfile != "" {
			f, err := os.OpenFile(logfile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
			if err != nil {
				return err
			}
			logger.AddWriterForAll(f)
		}
		return nil
	},
}

var logfile string
var verbose bool

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
}
