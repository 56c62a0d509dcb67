package main

import (
	"fmt"

	"github.com/aretw0/readiness/internal/cli"
	"github.com/aretw0/readiness/internal/presentation/tui"
	"github.com/aretw0/readiness/pkg/pipeline"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <stage-id|path>",
	Short: "Print a generated report",
	Long: `Prints a report by stage id (resolved inside --out-dir) or by path.
Output is pretty-printed on a terminal and left untouched when piped.`,
	Args: cobra.ExactArgs(1),
	RunE: runWithApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
		path := args[0]
		g := pipeline.Default(pipeline.ResolveOutputs(flagString(cmd, "out-dir")))
		if n, ok := g.Node(path); ok {
			path = n.Output
		}

		a, err := app.Store.Read(cmd.Context(), path)
		if err != nil {
			return err
		}
		if !a.Exists {
			return fmt.Errorf("report %s not found", path)
		}

		pretty := tui.IsTerminal(app.Stdout)
		if cmd.Flags().Changed("raw") {
			pretty = !flagBool(cmd, "raw")
		}
		return tui.Show(app.Stdout, a.Content, pretty)
	}),
}

func init() {
	rootCmd.AddCommand(showCmd)
	showCmd.Flags().String("out-dir", defaultOutDir, "Directory holding the generated reports")
	showCmd.Flags().Bool("raw", false, "Print the markdown as written (default when not a terminal)")
}
