package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/specialistvlad/metaxml/internal/cli"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun_RendersDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte("objecttype {\n  name = \"Matias\"\n  id = \"123456-7\"\n}\n"), 0o600))

	out := &bytes.Buffer{}
	logs := &bytes.Buffer{}
	err := run(out, logs, []string{"-log-format", "text", path})
	require.NoError(t, err)
	assert.Equal(t, "<objecttype name=\"Matias\" id=\"123456-7\"/>\n", out.String())
	assert.Contains(t, logs.String(), "Rendered documents.")
}

func TestRun_InvalidDocument(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "main.hcl")
	require.NoError(t, os.WriteFile(path, []byte("alumno {\n  nombre = \"x\"\n"), 0o600))

	out := &bytes.Buffer{}
	err := run(out, &bytes.Buffer{}, []string{path})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse")
	assert.Empty(t, out.String())
}

func TestRun_ShouldExit(t *testing.T) {
	t.Parallel()

	out := &bytes.Buffer{}
	err := run(out, &bytes.Buffer{}, []string{"-h"})
	require.NoError(t, err, "run() should return a nil error when shouldExit is true")
	require.Contains(t, out.String(), "Usage:", "Expected help text to be printed to the output buffer")
}

func TestRun_ParseError(t *testing.T) {
	t.Parallel()

	err := run(&bytes.Buffer{}, &bytes.Buffer{}, []string{"--this-is-not-a-valid-flag"})
	require.Error(t, err, "run() should return an error when argument parsing fails")
	require.Contains(t, err.Error(), "flag provided but not defined: -this-is-not-a-valid-flag")

	var exitErr *cli.ExitError
	require.ErrorAs(t, err, &exitErr)
	assert.Equal(t, 2, exitErr.Code)
}
