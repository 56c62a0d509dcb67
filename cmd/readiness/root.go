package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/aretw0/readiness/internal/cli"
	"github.com/aretw0/readiness/pkg/pipeline"
	"github.com/spf13/cobra"
)

// defaultOutDir is where reports land when no explicit path is given.
const defaultOutDir = ".audit-reports/phase5"

var defaults = pipeline.ResolveOutputs(defaultOutDir)

var rootCmd = &cobra.Command{
	Use:   "readiness",
	Short: "Readiness renders validation-readiness reports",
	Long: `Readiness runs the validation-readiness pipeline: every stage reads the
markdown reports of earlier stages, derives a verdict and writes a new report.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and returns the process exit code.
func Execute(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	return 1
}

func init() {
	rootCmd.PersistentFlags().String("dir", ".", "Working directory; report paths are relative to it")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("targets", "", "Target registry file (default <dir>/targets.yaml)")
	rootCmd.PersistentFlags().String("metrics-out", "", "Write prometheus metrics to this textfile after the run")
	rootCmd.PersistentFlags().Duration("step-timeout", 0, "Timeout for each launched process (0 disables)")
}

func newApp(cmd *cobra.Command) (*cli.App, error) {
	dir, _ := cmd.Flags().GetString("dir")
	level, _ := cmd.Flags().GetString("log-level")
	targets, _ := cmd.Flags().GetString("targets")
	metricsOut, _ := cmd.Flags().GetString("metrics-out")

	return cli.NewApp(cli.Options{
		Dir:         dir,
		LogLevel:    level,
		TargetsFile: targets,
		MetricsOut:  metricsOut,
		Stdout:      cmd.OutOrStdout(),
		Stderr:      cmd.ErrOrStderr(),
	})
}

// runWithApp adapts a command body that needs the shared collaborators.
func runWithApp(fn func(cmd *cobra.Command, args []string, app *cli.App) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		app, err := newApp(cmd)
		if err != nil {
			return err
		}
		return fn(cmd, args, app)
	}
}

func stepTimeout(cmd *cobra.Command) time.Duration {
	d, _ := cmd.Flags().GetDuration("step-timeout")
	return d
}
