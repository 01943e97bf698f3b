package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSpecPath(t *testing.T) {
	t.Run("long flag", func(t *testing.T) {
		var out bytes.Buffer
		cfg, exit, err := Parse([]string{"--spec", "exp.hcl"}, &out)
		require.NoError(t, err)
		require.False(t, exit)
		assert.Equal(t, "exp.hcl", cfg.SpecPath)
	})

	t.Run("short flag", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"-s", "exp.hcl"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "exp.hcl", cfg.SpecPath)
	})

	t.Run("positional argument", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"exp.hcl"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "exp.hcl", cfg.SpecPath)
	})
}

func TestParseNoPathPrintsUsage(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParseLogOptions(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var out bytes.Buffer
		cfg, _, err := Parse([]string{"exp.hcl"}, &out)
		require.NoError(t, err)
		assert.Equal(t, "text", cfg.LogFormat)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("invalid format", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"--log-format", "xml", "exp.hcl"}, &out)
		require.Error(t, err)
		exitErr, ok := err.(*ExitError)
		require.True(t, ok)
		assert.Equal(t, 2, exitErr.Code)
	})

	t.Run("invalid level", func(t *testing.T) {
		var out bytes.Buffer
		_, _, err := Parse([]string{"--log-level", "loud", "exp.hcl"}, &out)
		require.Error(t, err)
		var exitErr *ExitError
		require.ErrorAs(t, err, &exitErr)
	})
}

func TestParseHelp(t *testing.T) {
	var out bytes.Buffer
	cfg, exit, err := Parse([]string{"--help"}, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Nil(t, cfg)
}
