package config

import (
	"fmt"
	"os"
	"strings"

	kyaml "github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// Source is one layer in the configuration chain. Sources with higher
// priority values override lower ones.
type Source interface {
	Name() string
	Priority() int
	Load(k *koanf.Koanf) error
}

// EnvPrefix is the prefix for configuration environment variables.
const EnvPrefix = "PINGREP_"

// Source priorities, lowest loads first.
const (
	priorityDefaults = 10
	priorityFile     = 20
	priorityEnv      = 30
	priorityFlags    = 40
)

type defaultsSource struct{}

func (defaultsSource) Name() string  { return "defaults" }
func (defaultsSource) Priority() int { return priorityDefaults }
func (defaultsSource) Load(k *koanf.Koanf) error {
	return k.Load(confmap.Provider(DefaultConfigAsMap(), "."), nil)
}

type fileSource struct {
	path     string
	explicit bool
}

func (s fileSource) Name() string  { return fmt.Sprintf("file(%s)", s.path) }
func (s fileSource) Priority() int { return priorityFile }
func (s fileSource) Load(k *koanf.Koanf) error {
	if _, err := os.Stat(s.path); err != nil {
		// A missing default config file is fine; a missing explicit one is not.
		if s.explicit {
			return fmt.Errorf("config file not found: %s", s.path)
		}
		return nil
	}
	return k.Load(file.Provider(s.path), kyaml.Parser())
}

type envSource struct{}

func (envSource) Name() string  { return "env" }
func (envSource) Priority() int { return priorityEnv }
func (envSource) Load(k *koanf.Koanf) error {
	return k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		// PINGREP_PROBE__COUNT -> probe.count; double underscore separates
		// path segments so keys like timeout_ms survive the mapping.
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
	}), nil)
}

type flagSource struct {
	flags *pflag.FlagSet
	k     *koanf.Koanf
}

func (flagSource) Name() string  { return "flags" }
func (flagSource) Priority() int { return priorityFlags }
func (s flagSource) Load(k *koanf.Koanf) error {
	if s.flags == nil {
		return nil
	}
	return k.Load(posflag.Provider(s.flags, ".", s.k), nil)
}

// DefaultSources builds the standard source chain. configFile may be empty,
// in which case ./pingrep.yaml is used when present.
func DefaultSources(configFile string, flags *pflag.FlagSet, k *koanf.Koanf) []Source {
	fs := fileSource{path: "pingrep.yaml"}
	if configFile != "" {
		fs = fileSource{path: configFile, explicit: true}
	}
	return []Source{
		defaultsSource{},
		fs,
		envSource{},
		flagSource{flags: flags, k: k},
	}
}
