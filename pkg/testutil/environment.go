package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrg/xdg"
)

// TestEnvironment points the XDG base directories at temp dirs for the
// duration of a test
type TestEnvironment struct {
	ConfigHome string
	StateHome  string

	t *testing.T
}

// NewTestEnvironment creates an isolated environment. BUSY_* variables from
// the caller's shell are cleared so they cannot leak into config loading.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()

	env := &TestEnvironment{
		ConfigHome: t.TempDir(),
		StateHome:  t.TempDir(),
		t:          t,
	}

	t.Setenv("XDG_CONFIG_HOME", env.ConfigHome)
	t.Setenv("XDG_STATE_HOME", env.StateHome)
	for _, kv := range os.Environ() {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, "BUSY_") {
			// Setenv registers the restore, Unsetenv hides it for the test
			t.Setenv(name, "")
			_ = os.Unsetenv(name)
		}
	}

	xdg.Reload()
	t.Cleanup(xdg.Reload)

	return env
}

// ConfigDir is where config.Load looks for the user config file
func (e *TestEnvironment) ConfigDir() string {
	return filepath.Join(e.ConfigHome, "busy")
}

// WriteConfig writes name under ConfigDir and returns its path
func (e *TestEnvironment) WriteConfig(name, content string) string {
	e.t.Helper()
	path := filepath.Join(e.ConfigDir(), name)
	WriteFile(e.t, path, content)
	return path
}

// WriteFile creates path and its parents
func WriteFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir for %s: %v", path, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", path, err)
	}
}
