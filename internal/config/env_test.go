package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromLookup(t *testing.T) {
	env := map[string]string{
		EnvHookDiagnostic: "1",
		EnvHookStrictNode: "true",
	}
	got := FromLookup(func(k string) (string, bool) {
		v, ok := env[k]
		return v, ok
	})
	assert.True(t, got.HookDiagnostic)
	assert.False(t, got.HookStrictNode, "only the literal 1 enables a toggle")
}

func TestLoad(t *testing.T) {
	t.Setenv(EnvHookStrictNode, "1")
	t.Setenv(EnvHookDiagnostic, "")
	got := Load()
	assert.True(t, got.HookStrictNode)
	assert.False(t, got.HookDiagnostic)
	assert.Equal(t, "ON", OnOff(true))
	assert.Equal(t, "OFF", OnOff(false))
}
