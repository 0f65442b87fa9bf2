package main

import (
	"bytes"
	"fmt"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/at-ishikawa/studytrack/internal/bridge"
	"github.com/at-ishikawa/studytrack/internal/store"
)

// setConfigFile sets the global configFile variable and registers a cleanup to restore it.
func setConfigFile(t *testing.T, cfgPath string) {
	t.Helper()
	oldConfigFile := configFile
	configFile = cfgPath
	t.Cleanup(func() { configFile = oldConfigFile })
}

// setNow freezes the clock of the commands.
func setNow(t *testing.T, at time.Time) {
	t.Helper()
	oldNow := now
	now = func() time.Time { return at }
	t.Cleanup(func() { now = oldNow })
}

// setupBrokenConfigFile creates a config file with invalid YAML that causes Load() to fail.
func setupBrokenConfigFile(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("{{invalid yaml content"), 0644))
	return cfgPath
}

// setupBridgedConfig writes a local-first config whose remote store is a bridge over remote.
func setupBridgedConfig(t *testing.T, remote store.Gateway) string {
	t.Helper()
	server := httptest.NewServer(bridge.NewServer(remote).Handler())
	t.Cleanup(server.Close)

	tmpDir := t.TempDir()
	configContent := fmt.Sprintf(`user_id: user-1
timezone: UTC
deployment: local
gateway: bridge
local:
  path: %s
bridge:
  url: %s
  timeout: 2s
sync:
  probe_attempts: 1
`, filepath.Join(tmpDir, "data", "studytrack.db"), server.URL)

	cfgPath := filepath.Join(tmpDir, "config.yml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(configContent), 0644))
	return cfgPath
}

// execute runs the root command with args and returns what it printed.
func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}
