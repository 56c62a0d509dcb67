package main

import (
	"fmt"

	"github.com/aretw0/readiness/internal/cli"
	"github.com/aretw0/readiness/pkg/pipeline"
	"github.com/spf13/cobra"
)

var graphCmd = &cobra.Command{
	Use:   "graph",
	Short: "Export the pipeline graph visualization",
	Long:  `Outputs a Mermaid diagram (graph TD) of the pipeline stages and the reports they exchange.`,
	RunE: runWithApp(func(cmd *cobra.Command, _ []string, app *cli.App) error {
		g := pipeline.Default(pipeline.ResolveOutputs(flagString(cmd, "out-dir")))
		if err := g.Validate(); err != nil {
			return err
		}

		var overlay *pipeline.Overlay
		if flagBool(cmd, "status") {
			var err error
			if overlay, err = pipeline.ReadOverlay(cmd.Context(), app.Store, g); err != nil {
				return err
			}
		}
		_, err := fmt.Fprint(app.Stdout, pipeline.Mermaid(g, overlay))
		return err
	}),
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().String("out-dir", defaultOutDir, "Directory holding the generated reports")
	graphCmd.Flags().Bool("status", false, "Color nodes by the verdict of their current report")
}
