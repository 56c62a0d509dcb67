package main

import (
	"github.com/aretw0/readiness/internal/cli"
	"github.com/aretw0/readiness/pkg/pipeline"
	"github.com/aretw0/readiness/pkg/plan"
	"github.com/aretw0/readiness/pkg/report"
	"github.com/aretw0/readiness/pkg/stage"
	"github.com/spf13/cobra"
)

var triageCmd = &cobra.Command{
	Use:   "triage",
	Short: "Run the consumer startup triage plan",
	Long: `Runs auth check, CI artifact collection, optional workflow lint, support bundle,
ticket draft and unblock status in order, then writes the triage report.
A failed auth check halts the plan.`,
	RunE: runWithApp(func(cmd *cobra.Command, _ []string, app *cli.App) error {
		opts := plan.TriageOptions{
			Repo:          flagString(cmd, "repo"),
			Limit:         flagInt(cmd, "limit"),
			OutDir:        flagString(cmd, "out-dir"),
			LintOptions:   lintOptions(cmd),
			SkipAuthCheck: flagBool(cmd, "skip-auth-check"),
		}
		steps, err := plan.BuildTriage(opts)
		if err != nil {
			return err
		}

		return app.RunPlan(cmd.Context(), cli.PlanRun{
			Report: stage.RunReportOptions{
				ID:     stage.IDConsumerStartupTriage,
				Title:  "Consumer Startup Triage",
				Output: pipeline.ResolveOutputs(opts.OutDir).ConsumerStartupTriage,
				Repo:   opts.Repo,
				Plan:   steps,
				Next: report.NextActions{
					Ready: []string{"Review the unblock status report and re-run the consumer workflow."},
					NotReady: []string{
						"Fix the failed required steps above (auth scopes first when auth-check failed).",
						"Re-run `readiness triage` to refresh the bundle.",
					},
				},
			},
			DryRun:      flagBool(cmd, "dry-run"),
			StepTimeout: stepTimeout(cmd),
			LockRedis:   flagString(cmd, "lock-redis"),
		})
	}),
}

func addPlanFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.String("repo", "", "Consumer repository (owner/repo)")
	f.Int("limit", plan.DefaultLimit, "Number of recent CI runs to inspect")
	f.String("out-dir", defaultOutDir, "Directory for every generated report")
	f.Bool("skip-workflow-lint", false, "Do not run the workflow lint step")
	f.String("repo-path", "", "Local checkout of the consumer repository (workflow lint)")
	f.String("actionlint-bin", "", "actionlint binary (workflow lint)")
	f.Bool("dry-run", false, "Print the command plan without running it")
	f.String("lock-redis", "", "redis:// URL used to serialize runs sharing the output directory")
}

func lintOptions(cmd *cobra.Command) plan.LintOptions {
	return plan.LintOptions{
		RunWorkflowLint: !flagBool(cmd, "skip-workflow-lint"),
		RepoPath:        flagString(cmd, "repo-path"),
		ActionlintBin:   flagString(cmd, "actionlint-bin"),
	}
}

func init() {
	rootCmd.AddCommand(triageCmd)
	addPlanFlags(triageCmd)
	triageCmd.Flags().Bool("skip-auth-check", false, "Skip the auth check step (already done by a preflight)")
}
