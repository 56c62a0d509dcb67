/*
Package ports defines the driven ports (interfaces) of the readiness pipeline.

These interfaces decouple stage evaluation and orchestration from the filesystem,
process spawning and coordination backends.

# Key Interfaces

  - ArtifactStore: reads and writes markdown artifacts (disk or memory).
  - Launcher: runs the external process behind a planned Step.
  - Capturer: runs a probe command and returns its output for parsing.
  - Locker: optional mutual exclusion for runs sharing an output directory.
*/
package ports
