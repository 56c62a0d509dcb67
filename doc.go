/*
Package readiness is a validation-readiness pipeline for adapter and consumer CI rollouts.

Every stage reads the markdown reports written by earlier stages (or by external tooling),
extracts typed signals from them, derives a verdict and writes a new report that downstream
stages consume. Reports are plain files: the pipeline keeps no other state.

# Concept

A stage is one generic engine (pkg/stage) configured by a record per stage. The verdict
follows a fixed precedence: missing required inputs win over blockers, blockers win over the
stage's ready verdict, and advisory rules only add warnings. Rendering is deterministic, so the
same inputs and clock always produce the same bytes.

Longer flows run as command plans (pkg/plan) through a sequential orchestrator
(pkg/orchestrator). A failed critical-gate step halts the plan; other failures are recorded
and the run continues.

# Layout

  - pkg/domain: verdicts, outcomes, artifacts, steps.
  - pkg/signal: total extractors from report markdown to typed records.
  - pkg/verdict: the precedence resolver.
  - pkg/report: the deterministic renderer.
  - pkg/stage: stage definitions and the runtime they share.
  - pkg/plan, pkg/orchestrator: command plans and their execution.
  - pkg/pipeline: the fixed DAG of stages and output paths.
  - cmd/readiness: the CLI.

# Usage

	readiness triage --repo acme/app --skip-workflow-lint
	readiness closure --repo acme/app --skip-workflow-lint --dry-run
	readiness phase5-external-handoff --repo acme/app --artifact-url https://ci.example/run/1
	readiness graph --status
*/
package readiness
