package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Load(nil, ""))

	cfg := m.Get()
	require.Equal(t, 40, cfg.Probe.Count)
	require.Equal(t, 400, cfg.Probe.TimeoutMS)
	require.Equal(t, 8, cfg.Batch.Concurrency)
	require.Equal(t, "servers", cfg.Workspace.ServersDir)
	require.Equal(t, "ping_results", cfg.Workspace.ResultsDir)
	require.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_YAMLFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pingrep.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
probe:
  count: 10
  timeout_ms: 250
batch:
  concurrency: 4
workspace:
  servers_dir: hosts
`), 0o644))

	m := NewManager()
	require.NoError(t, m.Load(nil, path))

	cfg := m.Get()
	require.Equal(t, 10, cfg.Probe.Count)
	require.Equal(t, 250, cfg.Probe.TimeoutMS)
	require.Equal(t, 4, cfg.Batch.Concurrency)
	require.Equal(t, "hosts", cfg.Workspace.ServersDir)
	// Untouched keys keep their defaults.
	require.Equal(t, "ping_results", cfg.Workspace.ResultsDir)
}

func TestLoad_ExplicitMissingFileFails(t *testing.T) {
	m := NewManager()
	require.Error(t, m.Load(nil, filepath.Join(t.TempDir(), "nope.yaml")))
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	t.Setenv("PINGREP_PROBE__COUNT", "12")
	t.Setenv("PINGREP_WORKSPACE__SERVERS_DIR", "env-servers")

	m := NewManager()
	require.NoError(t, m.Load(nil, ""))

	cfg := m.Get()
	require.Equal(t, 12, cfg.Probe.Count)
	require.Equal(t, "env-servers", cfg.Workspace.ServersDir)
}

func TestLoad_FlagsWinOverEnv(t *testing.T) {
	t.Setenv("PINGREP_LOG__LEVEL", "warn")

	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	BindFlags(flags)
	require.NoError(t, flags.Parse([]string{"--log.level=debug"}))

	m := NewManager()
	require.NoError(t, m.Load(flags, ""))
	require.Equal(t, "debug", m.Get().Log.Level)
}

func TestLoad_ClampsInvalidValues(t *testing.T) {
	t.Setenv("PINGREP_PROBE__COUNT", "0")
	t.Setenv("PINGREP_PROBE__TIMEOUT_MS", "-5")
	t.Setenv("PINGREP_BATCH__CONCURRENCY", "0")

	m := NewManager()
	require.NoError(t, m.Load(nil, ""))

	cfg := m.Get()
	require.Equal(t, 40, cfg.Probe.Count)
	require.Equal(t, 400, cfg.Probe.TimeoutMS)
	require.Equal(t, 8, cfg.Batch.Concurrency)
}

func TestProbeConfig_Timeout(t *testing.T) {
	p := ProbeConfig{TimeoutMS: 400}
	require.Equal(t, int64(400), p.Timeout().Milliseconds())
}
