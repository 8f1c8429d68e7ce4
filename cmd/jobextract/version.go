package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Smackface/go-job-extractor/internal/handler"
)

var version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version info",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "jobextract %s (envelope %s)\n", version, handler.SchemaVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
