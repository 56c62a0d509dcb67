package process

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/aretw0/readiness/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}
}

func TestRunner_Launch(t *testing.T) {
	skipOnWindows(t)

	var stdout bytes.Buffer
	runner := NewRunner(WithOutput(&stdout, &stdout))
	runner.Register("shell", "sh", "-c")

	t.Run("Streams Output And Reports Zero", func(t *testing.T) {
		stdout.Reset()
		code, err := runner.Launch(context.Background(), domain.Step{ID: "ok", Target: "shell", Args: []string{"echo hello"}})
		require.NoError(t, err)
		assert.Equal(t, 0, code)
		assert.Equal(t, "hello\n", stdout.String())
	})

	t.Run("Non-Zero Exit Is Not An Error", func(t *testing.T) {
		code, err := runner.Launch(context.Background(), domain.Step{ID: "fail", Target: "shell", Args: []string{"exit 3"}})
		require.NoError(t, err)
		assert.Equal(t, 3, code)
	})

	t.Run("Fails For Unregistered Target", func(t *testing.T) {
		code, err := runner.Launch(context.Background(), domain.Step{ID: "x", Target: "hacker_script"})
		assert.ErrorIs(t, err, domain.ErrTargetNotRegistered)
		assert.Equal(t, 1, code)
	})

	t.Run("Missing Executable Maps To Exit One", func(t *testing.T) {
		r := NewRunner()
		r.Register("ghost", filepath.Join(t.TempDir(), "does-not-exist"))
		code, err := r.Launch(context.Background(), domain.Step{ID: "ghost", Target: "ghost"})
		assert.Error(t, err)
		assert.Equal(t, 1, code)
	})
}

func TestRunner_Timeout(t *testing.T) {
	skipOnWindows(t)

	runner := NewRunner(WithTimeout(100 * time.Millisecond))
	runner.Register("sleepy", "sleep", "5")

	start := time.Now()
	code, err := runner.Launch(context.Background(), domain.Step{ID: "sleepy", Target: "sleepy"})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "timed out")
	assert.Equal(t, 1, code)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestRunner_ProcessGroup(t *testing.T) {
	skipOnWindows(t)

	// logFile keeps launched processes off pipes, the way inherited
	// os.Stdout behaves in the CLI.
	logFile := func(t *testing.T) *os.File {
		t.Helper()
		f, err := os.Create(filepath.Join(t.TempDir(), "out.log"))
		require.NoError(t, err)
		t.Cleanup(func() { _ = f.Close() })
		return f
	}

	t.Run("Timeout Does Not Wait For Background Children", func(t *testing.T) {
		runner := NewRunner(WithTimeout(200 * time.Millisecond))
		runner.Register("shell", "sh", "-c")

		start := time.Now()
		res := runner.Capture(context.Background(), "shell", "sleep 5 & wait")
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "timed out")
		assert.Equal(t, 1, res.ExitCode)
		assert.Less(t, time.Since(start), 4*time.Second)
	})

	t.Run("Timeout Stops Background Writers", func(t *testing.T) {
		dir := t.TempDir()
		f := logFile(t)
		runner := NewRunner(WithBaseDir(dir), WithTimeout(200*time.Millisecond), WithOutput(f, f))
		runner.Register("shell", "sh", "-c")

		code, err := runner.Launch(context.Background(), domain.Step{
			ID: "slow", Target: "shell", Args: []string{"(sleep 1; echo late > late.md) & sleep 5"},
		})
		require.Error(t, err)
		assert.Equal(t, 1, code)

		time.Sleep(1500 * time.Millisecond)
		assert.NoFileExists(t, filepath.Join(dir, "late.md"))
	})

	t.Run("Children Left After Exit Are Stopped", func(t *testing.T) {
		dir := t.TempDir()
		f := logFile(t)
		runner := NewRunner(WithBaseDir(dir), WithOutput(f, f))
		runner.Register("shell", "sh", "-c")

		code, err := runner.Launch(context.Background(), domain.Step{
			ID: "detach", Target: "shell", Args: []string{"(sleep 1; echo late > late.md) &"},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, code)

		time.Sleep(1500 * time.Millisecond)
		assert.NoFileExists(t, filepath.Join(dir, "late.md"))
	})

	t.Run("Child Holding Output Open Does Not Block Exit", func(t *testing.T) {
		var out bytes.Buffer
		runner := NewRunner(WithOutput(&out, &out))
		runner.Register("shell", "sh", "-c")

		start := time.Now()
		code, err := runner.Launch(context.Background(), domain.Step{
			ID: "linger", Target: "shell", Args: []string{"sleep 10 & echo started"},
		})
		require.NoError(t, err)
		assert.Equal(t, 0, code)
		assert.Less(t, time.Since(start), KillGrace+3*time.Second)
	})

	t.Run("Cancelled Context Is Reported", func(t *testing.T) {
		runner := NewRunner()
		runner.Register("shell", "sh", "-c")

		ctx, cancel := context.WithCancel(context.Background())
		time.AfterFunc(100*time.Millisecond, cancel)
		res := runner.Capture(ctx, "shell", "sleep 5")
		require.Error(t, res.Err)
		assert.Contains(t, res.Err.Error(), "cancelled")
		assert.Equal(t, 1, res.ExitCode)
	})
}

func TestRunner_BaseDirAndEnv(t *testing.T) {
	skipOnWindows(t)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "marker.txt"), []byte("here"), 0644))

	runner := NewRunner(
		WithBaseDir(dir),
		WithRegistry(map[string]TargetConfig{
			"probe": {Command: "sh", Args: []string{"-c"}, Environment: map[string]string{"PROBE_VALUE": "42"}},
		}),
	)

	res := runner.Capture(context.Background(), "probe", "cat marker.txt; echo \" $PROBE_VALUE\"")
	require.True(t, res.OK(), "err=%v output=%s", res.Err, res.Output)
	assert.Equal(t, "here 42\n", res.Output)
}

func TestRunner_Capture(t *testing.T) {
	skipOnWindows(t)

	runner := NewRunner()
	runner.Register("shell", "sh", "-c")

	res := runner.Capture(context.Background(), "shell", "echo out; echo err >&2; exit 2")
	assert.NoError(t, res.Err)
	assert.Equal(t, 2, res.ExitCode)
	assert.False(t, res.OK())
	assert.Contains(t, res.Output, "out")
	assert.Contains(t, res.Output, "err")

	missing := runner.Capture(context.Background(), "nope")
	assert.ErrorIs(t, missing.Err, domain.ErrTargetNotRegistered)
	assert.Equal(t, 1, missing.ExitCode)
}

func TestRunner_Targets(t *testing.T) {
	runner := NewRunner()
	runner.Register("b", "true")
	runner.Register("a", "true")
	assert.Equal(t, []string{"a", "b"}, runner.Targets())
	assert.True(t, runner.Has("a"))
	assert.False(t, runner.Has("c"))
}
