package main

import (
	"github.com/aretw0/readiness/internal/cli"
	"github.com/aretw0/readiness/pkg/stage"
	"github.com/spf13/cobra"
)

var consumerCIAuthCmd = &cobra.Command{
	Use:   "consumer-ci-auth",
	Short: "Check code-hosting CLI auth, token scopes and billing for a repository",
	RunE: runWithApp(func(cmd *cobra.Command, _ []string, app *cli.App) error {
		launcher, err := app.Launcher(stepTimeout(cmd))
		if err != nil {
			return err
		}
		return app.RunStage(cmd.Context(), stage.ConsumerCIAuth(stage.CIAuthOptions{
			Output: flagString(cmd, "out"),
			Repo:   flagString(cmd, "repo"),
		}), launcher)
	}),
}

var consumerUnblockCmd = &cobra.Command{
	Use:   "consumer-startup-unblock-status",
	Short: "Consolidate support bundle, auth and lint signals into an unblock verdict",
	RunE: runWithApp(func(cmd *cobra.Command, _ []string, app *cli.App) error {
		return app.RunStage(cmd.Context(), stage.ConsumerStartupUnblock(stage.UnblockOptions{
			Output:             flagString(cmd, "out"),
			Repo:               flagString(cmd, "repo"),
			SupportBundle:      flagString(cmd, "support-bundle"),
			AuthReport:         flagString(cmd, "auth-report"),
			WorkflowLintReport: flagString(cmd, "workflow-lint-report"),
		}), nil)
	}),
}

func init() {
	rootCmd.AddCommand(consumerCIAuthCmd, consumerUnblockCmd)

	consumerCIAuthCmd.Flags().String("repo", "", "Consumer repository (owner/repo)")
	consumerCIAuthCmd.Flags().String("out", defaults.ConsumerCIAuth, "Output report path")
	_ = consumerCIAuthCmd.MarkFlagRequired("repo")

	f := consumerUnblockCmd.Flags()
	f.String("repo", "", "Consumer repository (owner/repo)")
	f.String("support-bundle", defaults.SupportBundle, "Startup-failure support bundle")
	f.String("auth-report", defaults.ConsumerCIAuth, "Consumer CI auth report")
	f.String("workflow-lint-report", defaults.WorkflowLint, "Workflow lint report (optional)")
	f.String("out", defaults.ConsumerStartupUnblock, "Output report path")
}
