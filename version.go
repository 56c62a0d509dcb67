package readiness

import _ "embed"

// Version is the released version of the readiness binary.
//
//go:embed VERSION
var Version string
