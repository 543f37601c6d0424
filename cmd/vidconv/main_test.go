package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vidconv/vidconv/pkg/models"
)

func writeTestConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := fmt.Sprintf("session:\n  path: %s\n", filepath.Join(dir, "session.json"))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestSelectFormat(t *testing.T) {
	format, key, err := selectFormat(true, "")
	require.NoError(t, err)
	assert.Equal(t, models.FormatMP3, format)
	assert.Equal(t, "mp3", key)

	// --resolution is ignored once --audio is set.
	format, key, err = selectFormat(true, "720p")
	require.NoError(t, err)
	assert.Equal(t, models.FormatMP3, format)
	assert.Equal(t, "mp3", key)

	format, key, err = selectFormat(false, "1080p")
	require.NoError(t, err)
	assert.Equal(t, models.FormatMP4, format)
	assert.Equal(t, "1080p", key)

	_, _, err = selectFormat(false, "")
	require.Error(t, err)
}

func TestThemeCommand(t *testing.T) {
	cfg := writeTestConfig(t)

	out, err := runCommand(t, "--config", cfg, "theme")
	require.NoError(t, err)
	assert.Contains(t, out, "light")

	out, err = runCommand(t, "--config", cfg, "theme", "dark")
	require.NoError(t, err)
	assert.Contains(t, out, "dark")

	// The preference persists in the session file.
	out, err = runCommand(t, "--config", cfg, "theme")
	require.NoError(t, err)
	assert.Contains(t, out, "dark")

	_, err = runCommand(t, "--config", cfg, "theme", "solarized")
	require.Error(t, err)
}

func TestCommandsRequireLogin(t *testing.T) {
	cfg := writeTestConfig(t)

	_, err := runCommand(t, "--config", cfg, "videos", "list")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "vidconv login")
}
