/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/depscope/depscope/core/version"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the version of depscope",
	Long:  `Displays the version of depscope.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("depscope %s\n", version.Version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
