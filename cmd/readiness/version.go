package main

import (
	"fmt"
	"strings"

	"github.com/aretw0/readiness"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of readiness",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "readiness version %s\n", strings.TrimSpace(readiness.Version))
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
