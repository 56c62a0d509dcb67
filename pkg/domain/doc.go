/*
Package domain contains the core types of the readiness pipeline.

It is kept free of I/O: artifacts, verdicts, steps and executions are plain values
produced and consumed by the extractor, resolver, renderer and runner packages.

# Key Entities

  - Artifact: a markdown report on disk, both a stage output and a later stage input.
  - Verdict: the classification a stage derives (READY, BLOCKED, MISSING_INPUTS, ...).
  - Outcome: a verdict together with its blockers, missing inputs and warnings.
  - Step / Execution: one planned external invocation and its recorded result.
*/
package domain
