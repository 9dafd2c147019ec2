// Package config loads and layers pingrep configuration the usual way:
// defaults, then a YAML file, then environment, then command-line flags.
package config

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/knadh/koanf/v2"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
	"github.com/spf13/pflag"
)

// Config is the fully resolved application configuration.
type Config struct {
	Probe     ProbeConfig     `koanf:"probe"`
	Batch     BatchConfig     `koanf:"batch"`
	Workspace WorkspaceConfig `koanf:"workspace"`
	Log       LogConfig       `koanf:"log"`
}

// ProbeConfig controls a single echo probe.
type ProbeConfig struct {
	// Binary is the echo command to invoke, normally "ping" from PATH.
	Binary string `koanf:"binary"`
	// Count is the number of echo requests sent per host.
	Count int `koanf:"count"`
	// TimeoutMS is the per-packet reply timeout in milliseconds.
	TimeoutMS int `koanf:"timeout_ms"`
}

// Timeout returns the per-packet timeout as a duration.
func (p ProbeConfig) Timeout() time.Duration {
	return time.Duration(p.TimeoutMS) * time.Millisecond
}

// BatchConfig controls batch fan-out.
type BatchConfig struct {
	// Concurrency is the maximum number of probes in flight at once.
	Concurrency int `koanf:"concurrency"`
}

// WorkspaceConfig locates the input and output directories.
type WorkspaceConfig struct {
	ServersDir string `koanf:"servers_dir"`
	ResultsDir string `koanf:"results_dir"`
}

// LogConfig controls logging behavior.
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// DefaultConfig returns the baseline configuration used when no other source
// overrides a value.
func DefaultConfig() Config {
	return Config{
		Probe: ProbeConfig{
			Binary:    "ping",
			Count:     40,
			TimeoutMS: 400,
		},
		Batch: BatchConfig{
			Concurrency: 8,
		},
		Workspace: WorkspaceConfig{
			ServersDir: "servers",
			ResultsDir: "ping_results",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// DefaultConfigAsMap flattens DefaultConfig for the confmap provider so koanf
// knows every key up front.
func DefaultConfigAsMap() map[string]any {
	def := DefaultConfig()
	return map[string]any{
		"probe.binary":          def.Probe.Binary,
		"probe.count":           def.Probe.Count,
		"probe.timeout_ms":      def.Probe.TimeoutMS,
		"batch.concurrency":     def.Batch.Concurrency,
		"workspace.servers_dir": def.Workspace.ServersDir,
		"workspace.results_dir": def.Workspace.ResultsDir,
		"log.level":             def.Log.Level,
		"log.format":            def.Log.Format,
	}
}

// Manager handles loading and accessing application configuration.
type Manager struct {
	k       *koanf.Koanf
	current Config
	mu      sync.RWMutex
}

// NewManager creates a Manager with an empty koanf instance.
func NewManager() *Manager {
	return &Manager{k: koanf.New(".")}
}

// Load resolves configuration from the default source chain.
//
// Precedence (highest to lowest):
//  1. Command-line flags (--log.level=debug)
//  2. Environment variables (PINGREP_ prefix, "__" maps to ".":
//     PINGREP_PROBE__COUNT -> probe.count)
//  3. YAML config file
//  4. Defaults
func (m *Manager) Load(flags *pflag.FlagSet, configFile string) error {
	return m.LoadWithSources(DefaultSources(configFile, flags, m.k))
}

// LoadWithSources loads the given sources in priority order (lowest first)
// and unmarshals the merged result.
func (m *Manager) LoadWithSources(sources []Source) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sort.Slice(sources, func(i, j int) bool {
		return sources[i].Priority() < sources[j].Priority()
	})

	for _, src := range sources {
		if err := src.Load(m.k); err != nil {
			return fmt.Errorf("loading config from %s: %w", src.Name(), err)
		}
	}

	var cfg Config
	if err := m.k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		return fmt.Errorf("unmarshaling merged config: %w", err)
	}
	m.current = m.postProcess(cfg)
	return nil
}

// Get returns a copy of the current configuration.
func (m *Manager) Get() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// postProcess coerces values that arrive as strings from the environment and
// clamps out-of-range numbers. Invalid values warn and fall back rather than
// failing the run.
func (m *Manager) postProcess(cfg Config) Config {
	// Environment values are strings; mapstructure will not convert them, so
	// re-read the numeric keys through cast.
	cfg.Probe.Count = cast.ToInt(m.k.Get("probe.count"))
	cfg.Probe.TimeoutMS = cast.ToInt(m.k.Get("probe.timeout_ms"))
	cfg.Batch.Concurrency = cast.ToInt(m.k.Get("batch.concurrency"))

	def := DefaultConfig()
	if cfg.Probe.Count < 1 {
		log.Warn().Int("count", cfg.Probe.Count).Msg("probe count must be >= 1, using default")
		cfg.Probe.Count = def.Probe.Count
	}
	if cfg.Probe.TimeoutMS <= 0 {
		log.Warn().Int("timeout_ms", cfg.Probe.TimeoutMS).Msg("probe timeout must be positive, using default")
		cfg.Probe.TimeoutMS = def.Probe.TimeoutMS
	}
	if cfg.Batch.Concurrency < 1 {
		log.Warn().Int("concurrency", cfg.Batch.Concurrency).Msg("concurrency must be >= 1, using default")
		cfg.Batch.Concurrency = def.Batch.Concurrency
	}
	if cfg.Probe.Binary == "" {
		cfg.Probe.Binary = def.Probe.Binary
	}
	if cfg.Workspace.ServersDir == "" {
		cfg.Workspace.ServersDir = def.Workspace.ServersDir
	}
	if cfg.Workspace.ResultsDir == "" {
		cfg.Workspace.ResultsDir = def.Workspace.ResultsDir
	}
	return cfg
}

// BindFlags registers the configuration flags shared by all commands. Flag
// names mirror config key paths so the posflag provider can merge them.
func BindFlags(flags *pflag.FlagSet) {
	defaults := DefaultConfig()
	flags.String("log.level", defaults.Log.Level, "Log level (debug, info, warn, error)")
	flags.String("log.format", defaults.Log.Format, "Log format (console, json)")
}
