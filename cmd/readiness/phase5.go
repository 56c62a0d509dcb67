package main

import (
	"github.com/aretw0/readiness/internal/cli"
	"github.com/aretw0/readiness/pkg/pipeline"
	"github.com/aretw0/readiness/pkg/plan"
	"github.com/aretw0/readiness/pkg/stage"
	"github.com/spf13/cobra"
)

var blockersCmd = &cobra.Command{
	Use:   "phase5-blockers-readiness",
	Short: "Render the Phase 5 blockers readiness report",
	RunE: runWithApp(func(cmd *cobra.Command, _ []string, app *cli.App) error {
		return app.RunStage(cmd.Context(), stage.Phase5Blockers(stage.BlockersOptions{
			Output:               flagString(cmd, "out"),
			AdapterReport:        flagString(cmd, "adapter-report"),
			ConsumerTriageReport: flagString(cmd, "consumer-triage-report"),
			RequireAdapterReport: flagBool(cmd, "require-adapter-report"),
		}), nil)
	}),
}

var closureStatusCmd = &cobra.Command{
	Use:   "phase5-execution-closure-status",
	Short: "Render the Phase 5 execution closure status snapshot",
	RunE: runWithApp(func(cmd *cobra.Command, _ []string, app *cli.App) error {
		return app.RunStage(cmd.Context(), stage.Phase5ClosureStatus(stage.ClosureStatusOptions{
			Output:                  flagString(cmd, "out"),
			BlockersReport:          flagString(cmd, "phase5-blockers-report"),
			UnblockReport:           flagString(cmd, "consumer-unblock-report"),
			AdapterReadinessReport:  flagString(cmd, "adapter-readiness-report"),
			RequireAdapterReadiness: flagBool(cmd, "require-adapter-readiness"),
		}), nil)
	}),
}

var handoffCmd = &cobra.Command{
	Use:   "phase5-external-handoff",
	Short: "Render the Phase 5 external handoff report",
	RunE: runWithApp(func(cmd *cobra.Command, _ []string, app *cli.App) error {
		urls, _ := cmd.Flags().GetStringArray("artifact-url")
		return app.RunStage(cmd.Context(), stage.Phase5ExternalHandoff(stage.HandoffOptions{
			Output:              flagString(cmd, "out"),
			Repo:                flagString(cmd, "repo"),
			ClosureStatusReport: flagString(cmd, "phase5-status-report"),
			BlockersReport:      flagString(cmd, "phase5-blockers-report"),
			UnblockReport:       flagString(cmd, "consumer-unblock-report"),
			MockABReport:        flagString(cmd, "mock-ab-report"),
			RunReport:           flagString(cmd, "run-report"),
			ArtifactURLs:        urls,
			RequireArtifactURLs: flagBool(cmd, "require-artifact-urls"),
			RequireMockABReport: flagBool(cmd, "require-mock-ab-report"),
		}), nil)
	}),
}

var closureCmd = &cobra.Command{
	Use:   "closure",
	Short: "Run the Phase 5 execution closure plan",
	Long: `Runs the adapter flow, consumer auth preflight, consumer triage, blockers
readiness and closure status in order, then writes the closure run report.`,
	RunE: runWithApp(func(cmd *cobra.Command, _ []string, app *cli.App) error {
		opts := plan.ClosureOptions{
			Repo:                    flagString(cmd, "repo"),
			Limit:                   flagInt(cmd, "limit"),
			OutDir:                  flagString(cmd, "out-dir"),
			LintOptions:             lintOptions(cmd),
			IncludeAuthPreflight:    !flagBool(cmd, "skip-auth-preflight"),
			IncludeAdapter:          !flagBool(cmd, "skip-adapter"),
			RequireAdapterReadiness: flagBool(cmd, "require-adapter-readiness"),
			UseMockConsumer:         flagBool(cmd, "mock-consumer"),
		}
		steps, err := plan.BuildClosure(opts)
		if err != nil {
			return err
		}

		return app.RunPlan(cmd.Context(), cli.PlanRun{
			Report: stage.RunReportOptions{
				ID:     stage.IDClosureRunReport,
				Title:  "Phase 5 Execution Closure Run Report",
				Output: pipeline.ResolveOutputs(opts.OutDir).ClosureRunReport,
				Repo:   opts.Repo,
				Plan:   steps,
			},
			DryRun:      flagBool(cmd, "dry-run"),
			StepTimeout: stepTimeout(cmd),
			LockRedis:   flagString(cmd, "lock-redis"),
		})
	}),
}

func init() {
	rootCmd.AddCommand(blockersCmd, closureStatusCmd, handoffCmd, closureCmd)

	f := blockersCmd.Flags()
	f.String("adapter-report", defaults.AdapterReadiness, "Adapter readiness (or real-session) report")
	f.String("consumer-triage-report", defaults.ConsumerStartupTriage, "Consumer startup triage report")
	f.Bool("require-adapter-report", false, "Treat the adapter report as a required input")
	f.String("out", defaults.Phase5Blockers, "Output report path")

	f = closureStatusCmd.Flags()
	f.String("phase5-blockers-report", defaults.Phase5Blockers, "Phase 5 blockers readiness report")
	f.String("consumer-unblock-report", defaults.ConsumerStartupUnblock, "Consumer startup unblock status report")
	f.String("adapter-readiness-report", defaults.AdapterReadiness, "Adapter readiness report")
	f.Bool("require-adapter-readiness", false, "Treat adapter readiness as a required input")
	f.String("out", defaults.Phase5ClosureStatus, "Output report path")

	f = handoffCmd.Flags()
	f.String("repo", "", "Consumer repository (owner/repo)")
	f.String("phase5-status-report", defaults.Phase5ClosureStatus, "Phase 5 execution closure status report")
	f.String("phase5-blockers-report", defaults.Phase5Blockers, "Phase 5 blockers readiness report")
	f.String("consumer-unblock-report", defaults.ConsumerStartupUnblock, "Consumer startup unblock status report")
	f.String("mock-ab-report", defaults.MockConsumerAB, "Mock consumer A/B report")
	f.String("run-report", defaults.ClosureRunReport, "Closure run report")
	f.StringArray("artifact-url", nil, "Artifact URL to include (repeatable)")
	f.Bool("require-artifact-urls", false, "Block when no artifact URL is given")
	f.Bool("require-mock-ab-report", false, "Treat the mock A/B report as required")
	f.String("out", defaults.ExternalHandoff, "Output report path")
	_ = handoffCmd.MarkFlagRequired("repo")

	addPlanFlags(closureCmd)
	closureCmd.Flags().Bool("skip-auth-preflight", false, "Do not run the consumer auth preflight")
	closureCmd.Flags().Bool("skip-adapter", false, "Do not run the adapter flow")
	closureCmd.Flags().Bool("require-adapter-readiness", false, "Require a ready adapter")
	closureCmd.Flags().Bool("mock-consumer", false, "Use the mock consumer triage and A/B report")
}
