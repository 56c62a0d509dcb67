package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/aretw0/readiness/internal/cli"
	"github.com/aretw0/readiness/pkg/stage"
	"github.com/spf13/cobra"
)

// Default adapter hook log locations, relative to --dir.
const (
	defaultHookLog     = ".audit_tmp/cascade-hook.log"
	defaultWritesLog   = ".audit_tmp/cascade-writes.log"
	defaultRuntimeLogs = ".audit_tmp/cascade-hook-runtime-*.log"
	defaultSmokeLogs   = ".audit_tmp/cascade-hook-smoke-*.log"
	defaultHookConfig  = "~/.codeium/windsurf/hooks.json"
	defaultTailLines   = 120
)

var adapterSessionStatusCmd = &cobra.Command{
	Use:   "adapter-session-status",
	Short: "Probe the adapter hooks and report the session status",
	Long: `Runs the hook verify and assessment probes, tails the hook logs and renders
the adapter session status. Exits 0 on PASS, 2 on NEEDS_REAL_SESSION and 1 otherwise.`,
	RunE: runWithApp(func(cmd *cobra.Command, _ []string, app *cli.App) error {
		launcher, err := app.Launcher(stepTimeout(cmd))
		if err != nil {
			return err
		}
		opts := stage.AdapterStatusOptions{
			Output:     flagString(cmd, "out"),
			HookLog:    flagString(cmd, "hook-log"),
			WritesLog:  flagString(cmd, "writes-log"),
			RuntimeLog: logPath(app.Dir, flagString(cmd, "runtime-log"), defaultRuntimeLogs),
			SmokeLog:   logPath(app.Dir, flagString(cmd, "smoke-log"), defaultSmokeLogs),
			TailLines:  flagInt(cmd, "tail-lines"),
		}
		return app.RunStage(cmd.Context(), stage.AdapterSessionStatus(opts), launcher)
	}),
}

var adapterRealSessionCmd = &cobra.Command{
	Use:   "adapter-real-session-report",
	Short: "Render the adapter real-session validation report",
	RunE: runWithApp(func(cmd *cobra.Command, _ []string, app *cli.App) error {
		launcher, err := app.Launcher(stepTimeout(cmd))
		if err != nil {
			return err
		}

		branch := flagString(cmd, "branch")
		if branch == "" {
			branch = probeLine(cmd, launcher, "git", "rev-parse", "--abbrev-ref", "HEAD")
		}
		nodeRuntime := flagString(cmd, "node-runtime")
		if nodeRuntime == "" {
			nodeRuntime = probeLine(cmd, launcher, "node", "--version")
		}

		opts := stage.AdapterSessionOptions{
			Output:         flagString(cmd, "out"),
			StatusReport:   flagString(cmd, "status-report"),
			HookConfig:     expandHome(flagString(cmd, "hook-config")),
			HookLog:        flagString(cmd, "hook-log"),
			WritesLog:      flagString(cmd, "writes-log"),
			RuntimeLog:     logPath(app.Dir, flagString(cmd, "runtime-log"), defaultRuntimeLogs),
			SmokeLog:       logPath(app.Dir, flagString(cmd, "smoke-log"), defaultSmokeLogs),
			TailLines:      flagInt(cmd, "tail-lines"),
			Operator:       flagString(cmd, "operator"),
			Branch:         branch,
			Repository:     flagString(cmd, "repository"),
			AdapterVersion: flagString(cmd, "adapter-version"),
			NodeRuntime:    nodeRuntime,
		}
		return app.RunStage(cmd.Context(), stage.AdapterRealSessionReport(opts), launcher)
	}),
}

var adapterReadinessCmd = &cobra.Command{
	Use:   "adapter-readiness",
	Short: "Summarize the adapter real-session report into a readiness verdict",
	RunE: runWithApp(func(cmd *cobra.Command, _ []string, app *cli.App) error {
		return app.RunStage(cmd.Context(), stage.AdapterReadiness(stage.AdapterReadinessOptions{
			Output:        flagString(cmd, "out"),
			AdapterReport: flagString(cmd, "adapter-report"),
		}), nil)
	}),
}

func addLogFlags(cmd *cobra.Command) {
	cmd.Flags().String("hook-log", defaultHookLog, "Hook log file")
	cmd.Flags().String("writes-log", defaultWritesLog, "Hook writes log file")
	cmd.Flags().String("runtime-log", "", "Hook runtime log (default: latest "+defaultRuntimeLogs+")")
	cmd.Flags().String("smoke-log", "", "Hook smoke log (default: latest "+defaultSmokeLogs+")")
	cmd.Flags().Int("tail-lines", defaultTailLines, "Number of log lines attached to the report")
}

func init() {
	rootCmd.AddCommand(adapterSessionStatusCmd, adapterRealSessionCmd, adapterReadinessCmd)

	adapterSessionStatusCmd.Flags().String("out", defaults.AdapterSessionStatus, "Output report path")
	addLogFlags(adapterSessionStatusCmd)

	f := adapterRealSessionCmd.Flags()
	f.String("out", defaults.AdapterRealSessionReport, "Output report path")
	f.String("status-report", defaults.AdapterSessionStatus, "Adapter session status report")
	f.String("hook-config", defaultHookConfig, "Adapter hooks configuration file")
	f.String("operator", "unknown", "Operator running the validation session")
	f.String("branch", "", "Branch under validation (default: current git branch)")
	f.String("repository", "", "Repository under validation")
	f.String("adapter-version", "unknown", "Adapter version")
	f.String("node-runtime", "", "Node runtime version (default: node --version)")
	addLogFlags(adapterRealSessionCmd)

	adapterReadinessCmd.Flags().String("out", defaults.AdapterReadiness, "Output report path")
	adapterReadinessCmd.Flags().String("adapter-report", defaults.AdapterRealSessionReport, "Adapter real-session report")
}

// logPath returns explicit, or the most recently modified file matching
// pattern under dir. An empty result renders as a missing input.
func logPath(dir, explicit, pattern string) string {
	if explicit != "" {
		return explicit
	}
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil || len(matches) == 0 {
		return ""
	}
	latest, latestMod := "", int64(0)
	for _, m := range matches {
		info, err := os.Stat(m)
		if err != nil {
			continue
		}
		if mod := info.ModTime().UnixNano(); latest == "" || mod > latestMod {
			latest, latestMod = m, mod
		}
	}
	if latest == "" {
		return ""
	}
	if rel, err := filepath.Rel(dir, latest); err == nil {
		return filepath.ToSlash(rel)
	}
	return latest
}

func expandHome(path string) string {
	rest, ok := strings.CutPrefix(path, "~/")
	if !ok {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, rest)
}
