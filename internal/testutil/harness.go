// Package testutil holds helpers shared by the package tests: a thread-safe
// log buffer, a temp-dir file writer and a harness that runs the App
// against a set of documents.
package testutil

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/specialistvlad/metaxml/internal/app"
	"github.com/stretchr/testify/require"
)

// SafeBuffer is a thread-safe buffer for capturing log output in tests.
type SafeBuffer struct {
	b  bytes.Buffer
	mu sync.Mutex
}

// Write implements the io.Writer interface for SafeBuffer.
func (b *SafeBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.Write(p)
}

// String implements the fmt.Stringer interface for SafeBuffer.
func (b *SafeBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.b.String()
}

// WriteFiles writes files (relative path -> content) under a fresh temporary
// directory and returns that directory.
func WriteFiles(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()
	for name, content := range files {
		filePath := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(filePath), 0o755))
		require.NoError(t, os.WriteFile(filePath, []byte(content), 0o644))
	}
	return dir
}

// HarnessResult holds the outcomes of an App run.
type HarnessResult struct {
	Output    string
	LogOutput string
	Err       error
	Dir       string
}

// RunApp writes files to a temp dir and runs the App over it. DocPath in cfg,
// when set, is taken relative to that dir; OutPath likewise.
func RunApp(t *testing.T, files map[string]string, cfg app.Config) *HarnessResult {
	t.Helper()

	dir := WriteFiles(t, files)
	cfg.DocPath = filepath.Join(dir, cfg.DocPath)
	if cfg.OutPath != "" {
		cfg.OutPath = filepath.Join(dir, cfg.OutPath)
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "debug"
	}
	if cfg.LogFormat == "" {
		cfg.LogFormat = "text"
	}

	config, err := app.NewConfig(cfg)
	require.NoError(t, err)

	out := &SafeBuffer{}
	logs := &SafeBuffer{}
	runErr := app.NewApp(out, logs, config).Run(context.Background())

	if os.Getenv("METAXML_TEST_LOGS") == "true" {
		t.Logf("--- Full Log Output for %s ---\n%s", t.Name(), logs.String())
	}

	return &HarnessResult{
		Output:    out.String(),
		LogOutput: logs.String(),
		Err:       runErr,
		Dir:       dir,
	}
}

// AssertLogged checks that the run logged a line containing every fragment.
func AssertLogged(t *testing.T, result *HarnessResult, fragments ...string) {
	t.Helper()

	for _, line := range strings.Split(result.LogOutput, "\n") {
		if containsAll(line, fragments) {
			return
		}
	}
	require.Fail(t, fmt.Sprintf("no log line contains all of %q", fragments), result.LogOutput)
}

func containsAll(s string, fragments []string) bool {
	for _, f := range fragments {
		if !strings.Contains(s, f) {
			return false
		}
	}
	return true
}
