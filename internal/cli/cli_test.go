package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parse(t *testing.T, args ...string) (*Options, bool, error) {
	t.Helper()
	return Parse(args, &bytes.Buffer{})
}

func TestParseNoArgsPrintsUsage(t *testing.T) {
	out := &bytes.Buffer{}
	opts, shouldExit, err := Parse(nil, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Nil(t, opts)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseHelpFlag(t *testing.T) {
	out := &bytes.Buffer{}
	_, shouldExit, err := Parse([]string{"-h"}, out)

	require.NoError(t, err)
	assert.True(t, shouldExit)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseUnknownCommand(t *testing.T) {
	_, _, err := parse(t, "frobnicate")

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
	assert.Contains(t, exitErr.Message, "frobnicate")
}

func TestParseCompileWithPath(t *testing.T) {
	opts, shouldExit, err := parse(t, "compile", "my.hcl")

	require.NoError(t, err)
	assert.False(t, shouldExit)
	assert.Equal(t, "compile", opts.Command)
	assert.Equal(t, "my.hcl", opts.ConfigPath)
}

func TestParseGlobalFlags(t *testing.T) {
	opts, _, err := parse(t,
		"--config", "cfg.hcl", "--cache-dir", "/tmp/cache",
		"--log-level", "debug", "--log-format", "json",
		"status")

	require.NoError(t, err)
	assert.Equal(t, "status", opts.Command)
	assert.Equal(t, "cfg.hcl", opts.ConfigPath)
	assert.Equal(t, "/tmp/cache", opts.CacheDir)
	assert.Equal(t, "debug", opts.LogLevel)
	assert.Equal(t, "json", opts.LogFormat)
}

func TestParsePositionalPathOverridesConfigFlag(t *testing.T) {
	opts, _, err := parse(t, "--config", "cfg.hcl", "lint", "other.hcl")

	require.NoError(t, err)
	assert.Equal(t, "other.hcl", opts.ConfigPath)
}

func TestParseBenchFlags(t *testing.T) {
	opts, _, err := parse(t, "bench", "--iterations", "250", "--warmup", "10")

	require.NoError(t, err)
	assert.Equal(t, 250, opts.Iterations)
	assert.Equal(t, 10, opts.Warmup)
}

func TestParseBenchRejectsNonPositiveIterations(t *testing.T) {
	_, _, err := parse(t, "bench", "--iterations", "0")

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseInitShell(t *testing.T) {
	opts, _, err := parse(t, "init", "--shell", "bash")
	require.NoError(t, err)
	assert.Equal(t, "bash", opts.Shell)

	_, _, err = parse(t, "init", "--shell", "fish")
	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseInvalidLogLevel(t *testing.T) {
	_, _, err := parse(t, "--log-level", "loud", "compile")

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseInvalidLogFormat(t *testing.T) {
	_, _, err := parse(t, "--log-format", "xml", "compile")

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseTooManyArguments(t *testing.T) {
	_, _, err := parse(t, "compile", "a.hcl", "b.hcl")

	var exitErr *ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}

func TestParseDefaults(t *testing.T) {
	opts, _, err := parse(t, "compile")

	require.NoError(t, err)
	assert.Equal(t, "text", opts.LogFormat)
	assert.Equal(t, "warn", opts.LogLevel)
	assert.Equal(t, 100, opts.Iterations)
	assert.Equal(t, "zsh", opts.Shell)
}
