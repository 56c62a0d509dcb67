package main

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/readiness/internal/cli"
	"github.com/aretw0/readiness/pkg/signal"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var extractCmd = &cobra.Command{
	Use:   "extract <kind> <path>",
	Short: "Print the typed signals extracted from a report",
	Args:  cobra.ExactArgs(2),
	RunE: runWithApp(func(cmd *cobra.Command, args []string, app *cli.App) error {
		kind := signal.Kind(args[0])
		if !slices.Contains(signal.Kinds(), kind) {
			return fmt.Errorf("unknown signal kind %q (one of: %s)", args[0], kindList())
		}

		a, err := app.Store.Read(cmd.Context(), args[1])
		if err != nil {
			return err
		}
		if !a.Exists {
			return fmt.Errorf("report %s not found", args[1])
		}

		enc := yaml.NewEncoder(app.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(signal.Extract(kind, a.Content)); err != nil {
			return err
		}
		return enc.Close()
	}),
}

func kindList() string {
	kinds := signal.Kinds()
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}

func init() {
	rootCmd.AddCommand(extractCmd)
}
