// Package confloader provides configuration loading mechanism.
package confloader

import (
	"fmt"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "SESSGATE_"

// envSectionSeparator separates nesting levels in prefixed variable names,
// leaving single underscores to key names: SESSGATE_PROXY__KEY_FILE -> proxy.key_file.
const envSectionSeparator = "__"

// LegacyVar binds an unprefixed environment variable to a config key.
type LegacyVar struct {
	Key string

	// Bool marks a flag variable: any non-empty value means true.
	Bool bool
}

// Loader loads configuration from multiple sources.
type Loader struct {
	k         *koanf.Koanf
	envPrefix string
	filePath  string
	legacy    map[string]LegacyVar
	listKeys  map[string]bool
	loaded    bool
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithLegacyEnv registers unprefixed environment variables by name.
func WithLegacyEnv(vars map[string]LegacyVar) Option {
	return func(l *Loader) {
		l.legacy = vars
	}
}

// WithListKeys marks keys whose environment values are comma-separated lists.
func WithListKeys(keys ...string) Option {
	return func(l *Loader) {
		for _, k := range keys {
			l.listKeys[k] = true
		}
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
		listKeys:  make(map[string]bool),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load loads configuration from the file and the environment and
// unmarshals it into target. Fields of target that no source sets keep
// their current value, so callers pass a struct holding the defaults.
//
// Flag overrides are applied separately via LoadMap before Unmarshal.
func (l *Loader) Load(target any) error {
	if l.filePath != "" {
		if err := l.LoadFile(l.filePath); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}

	if err := l.LoadEnv(); err != nil {
		return err
	}

	if err := l.LoadLegacyEnv(); err != nil {
		return err
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	l.loaded = true
	return nil
}

// LoadFile loads configuration from a YAML file.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	provider := file.Provider(path)
	if err := l.k.Load(provider, yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}

	return nil
}

// LoadEnv loads prefixed environment variables.
// Example: SESSGATE_BACKEND__NO_VERIFY=true -> backend.no_verify
func (l *Loader) LoadEnv() error {
	provider := env.ProviderWithValue(l.envPrefix, ".", func(name, value string) (string, any) {
		key := strings.TrimPrefix(name, l.envPrefix)
		key = strings.ToLower(strings.ReplaceAll(key, envSectionSeparator, "."))
		if l.listKeys[key] {
			return key, splitList(value)
		}
		return key, value
	})
	if err := l.k.Load(provider, nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	return nil
}

// LoadLegacyEnv loads the registered unprefixed environment variables.
// Empty values are ignored.
func (l *Loader) LoadLegacyEnv() error {
	if len(l.legacy) == 0 {
		return nil
	}

	provider := env.ProviderWithValue("", ".", func(name, value string) (string, any) {
		v, ok := l.legacy[name]
		if !ok || value == "" {
			return "", nil
		}
		if v.Bool {
			return v.Key, true
		}
		if l.listKeys[v.Key] {
			return v.Key, splitList(value)
		}
		return v.Key, value
	})
	if err := l.k.Load(provider, nil); err != nil {
		return fmt.Errorf("load legacy env: %w", err)
	}

	return nil
}

// LoadMap loads configuration from a map (useful for flags or testing).
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal unmarshals the loaded configuration into the target struct.
// Uses koanf tags for struct field mapping.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// GetString returns a string value from the configuration.
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// IsLoaded returns true if configuration has been loaded.
func (l *Loader) IsLoaded() bool {
	return l.loaded
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
