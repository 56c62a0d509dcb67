// Package config collects process-level settings read once at startup.
package config

import "os"

// Environment variable names.
const (
	EnvHookDiagnostic = "READINESS_HOOK_DIAGNOSTIC"
	EnvHookStrictNode = "READINESS_HOOK_STRICT_NODE"
)

// Env holds the boolean toggles that only influence report content.
type Env struct {
	HookDiagnostic bool
	HookStrictNode bool
}

// FromLookup builds an Env from a lookup function. A toggle is on when its value is "1".
func FromLookup(lookup func(string) (string, bool)) Env {
	on := func(key string) bool {
		v, ok := lookup(key)
		return ok && v == "1"
	}
	return Env{
		HookDiagnostic: on(EnvHookDiagnostic),
		HookStrictNode: on(EnvHookStrictNode),
	}
}

// Load reads the toggles from the process environment.
func Load() Env {
	return FromLookup(os.LookupEnv)
}

// OnOff renders a toggle for reports.
func OnOff(b bool) string {
	if b {
		return "ON"
	}
	return "OFF"
}
