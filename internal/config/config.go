// Package config loads cog's workspace configuration: watcher tuning,
// logging, and the user-installed extension table the Grammar Registry
// consults. It follows the teacher's viper-over-JSON layering, narrowed to
// the fields this indexer actually needs.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strconv"

	"github.com/BurntSushi/toml"
	pelletiertoml "github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	cogerrors "cog/internal/errors"
)

// SupportedConfigVersions lists the config schema versions this code reads.
var SupportedConfigVersions = []int{1}

// EnvOverride records an environment variable override that was applied.
type EnvOverride struct {
	EnvVar    string
	Path      string
	Value     interface{}
	FromValue string
}

// LoadResult carries the loaded Config plus how it was obtained.
type LoadResult struct {
	Config       *Config
	ConfigPath   string
	EnvOverrides []EnvOverride
	UsedDefaults bool
}

// WatcherConfig controls the workspace watcher's debounce and exclusions.
type WatcherConfig struct {
	Enabled    bool     `json:"enabled" mapstructure:"enabled" toml:"enabled"`
	DebounceMs int      `json:"debounceMs" mapstructure:"debounceMs" toml:"debounceMs"`
	Ignore     []string `json:"ignore" mapstructure:"ignore" toml:"ignore"`
}

// LoggingConfig controls the ambient logger.
type LoggingConfig struct {
	Level  string `json:"level" mapstructure:"level" toml:"level"`
	Format string `json:"format" mapstructure:"format" toml:"format"`
}

// ExtensionConfig declares a user-installed grammar override: the file
// extensions it claims and the command template ({file}/{output}
// placeholders) used to invoke it.
type ExtensionConfig struct {
	Extensions []string `json:"extensions" mapstructure:"extensions" toml:"extensions" yaml:"extensions"`
	Command    string   `json:"command" mapstructure:"command" toml:"command" yaml:"command"`
}

// Config is cog's on-disk configuration, stored at .cog/config.json.
type Config struct {
	Version       int                        `json:"version" mapstructure:"version" toml:"version"`
	WorkspaceRoot string                     `json:"workspaceRoot" mapstructure:"workspaceRoot" toml:"workspaceRoot"`
	Watcher       WatcherConfig              `json:"watcher" mapstructure:"watcher" toml:"watcher"`
	Logging       LoggingConfig              `json:"logging" mapstructure:"logging" toml:"logging"`
	Extensions    map[string]ExtensionConfig `json:"extensions" mapstructure:"extensions" toml:"extensions"`
}

// DefaultConfig returns cog's built-in configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Version:       1,
		WorkspaceRoot: ".",
		Watcher: WatcherConfig{
			Enabled:    true,
			DebounceMs: 500,
			Ignore: []string{
				"node_modules", "vendor", "target", "zig-out", "zig-cache",
				".zig-cache", "build", "dist", "__pycache__",
			},
		},
		Logging:    LoggingConfig{Level: "info", Format: "human"},
		Extensions: map[string]ExtensionConfig{},
	}
}

var envVarMappings = map[string]struct {
	path    string
	varType string
}{
	"COG_LOG_LEVEL":        {"logging.level", "string"},
	"COG_LOG_FORMAT":       {"logging.format", "string"},
	"COG_WATCHER_DEBOUNCE": {"watcher.debounceMs", "int"},
	"COG_WATCHER_ENABLED":  {"watcher.enabled", "bool"},
}

// LoadConfig loads .cog/config.json under repoRoot, or the built-in
// defaults if no file exists.
func LoadConfig(repoRoot string) (*Config, error) {
	result, err := LoadConfigWithDetails(repoRoot)
	if err != nil {
		return nil, err
	}
	return result.Config, nil
}

// LoadConfigWithDetails loads configuration and reports how it was sourced:
// an explicit COG_CONFIG_PATH override, a hand-written .cog/config.toml,
// the default .cog/config.json location, or the built-in defaults when none
// of these exists.
func LoadConfigWithDetails(repoRoot string) (*LoadResult, error) {
	result := &LoadResult{}

	if path := os.Getenv("COG_CONFIG_PATH"); path != "" {
		cfg, err := loadConfigFromPath(path)
		if err != nil {
			return nil, cogerrors.Wrap(cogerrors.Filesystem, "loading config from COG_CONFIG_PATH", err)
		}
		result.Config = cfg
		result.ConfigPath = path
	} else if tomlPath := filepath.Join(repoRoot, ".cog", "config.toml"); fileExists(tomlPath) {
		// A human-edited TOML config takes precedence over config.json when
		// both would otherwise apply, since it's the form a user wrote by hand.
		cfg := DefaultConfig()
		if _, err := toml.DecodeFile(tomlPath, cfg); err != nil {
			return nil, cogerrors.Wrap(cogerrors.Codec, "decoding config.toml", err)
		}
		result.Config = cfg
		result.ConfigPath = tomlPath
	} else {
		v := viper.New()
		v.SetDefault("version", 1)
		v.SetDefault("workspaceRoot", ".")
		v.SetConfigName("config")
		v.SetConfigType("json")
		v.AddConfigPath(filepath.Join(repoRoot, ".cog"))

		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); ok {
				result.Config = DefaultConfig()
				result.UsedDefaults = true
			} else {
				return nil, cogerrors.Wrap(cogerrors.Filesystem, "reading config", err)
			}
		} else {
			var cfg Config
			if err := v.Unmarshal(&cfg); err != nil {
				return nil, cogerrors.Wrap(cogerrors.Codec, "decoding config", err)
			}
			result.Config = &cfg
			result.ConfigPath = v.ConfigFileUsed()
		}
	}

	if err := mergeExtensionFiles(repoRoot, result.Config); err != nil {
		return nil, err
	}

	result.EnvOverrides = applyEnvOverrides(result.Config)
	return result, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// mergeExtensionFiles layers supplementary user-installed-extension tables
// on top of cfg.Extensions: `.cog/extensions.toml` (pelletier/go-toml, for
// users who prefer TOML over embedding the table in config.json) and
// `.cog/extensions.yaml` (yaml.v3, read last so it wins ties). Both are
// optional; a missing file is not an error.
func mergeExtensionFiles(repoRoot string, cfg *Config) error {
	if cfg.Extensions == nil {
		cfg.Extensions = map[string]ExtensionConfig{}
	}

	tomlPath := filepath.Join(repoRoot, ".cog", "extensions.toml")
	if data, err := os.ReadFile(tomlPath); err == nil {
		var extra map[string]ExtensionConfig
		if err := pelletiertoml.Unmarshal(data, &extra); err != nil {
			return cogerrors.Wrap(cogerrors.Codec, "decoding extensions.toml", err)
		}
		for k, v := range extra {
			cfg.Extensions[k] = v
		}
	}

	yamlPath := filepath.Join(repoRoot, ".cog", "extensions.yaml")
	if data, err := os.ReadFile(yamlPath); err == nil {
		var extra map[string]ExtensionConfig
		if err := yaml.Unmarshal(data, &extra); err != nil {
			return cogerrors.Wrap(cogerrors.Codec, "decoding extensions.yaml", err)
		}
		for k, v := range extra {
			cfg.Extensions[k] = v
		}
	}

	return nil
}

func loadConfigFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnvOverrides(cfg *Config) []EnvOverride {
	var overrides []EnvOverride

	for envVar, def := range envVarMappings {
		raw := os.Getenv(envVar)
		if raw == "" {
			continue
		}

		var value interface{}
		var err error
		switch def.varType {
		case "string":
			value = raw
		case "int":
			value, err = strconv.Atoi(raw)
		case "bool":
			value, err = strconv.ParseBool(raw)
		}
		if err != nil {
			continue
		}

		if applyOverride(cfg, def.path, value) {
			overrides = append(overrides, EnvOverride{EnvVar: envVar, Path: def.path, Value: value, FromValue: raw})
		}
	}

	return overrides
}

func applyOverride(cfg *Config, path string, value interface{}) bool {
	switch path {
	case "logging.level":
		if v, ok := value.(string); ok {
			cfg.Logging.Level = v
			return true
		}
	case "logging.format":
		if v, ok := value.(string); ok {
			cfg.Logging.Format = v
			return true
		}
	case "watcher.debounceMs":
		if v, ok := value.(int); ok {
			cfg.Watcher.DebounceMs = v
			return true
		}
	case "watcher.enabled":
		if v, ok := value.(bool); ok {
			cfg.Watcher.Enabled = v
			return true
		}
	}
	return false
}

// GetSupportedEnvVars lists every environment variable LoadConfig honors.
func GetSupportedEnvVars() []string {
	vars := make([]string, 0, len(envVarMappings))
	for v := range envVarMappings {
		vars = append(vars, v)
	}
	return vars
}

// Save writes c to repoRoot/.cog/config.json.
func (c *Config) Save(repoRoot string) error {
	dir := filepath.Join(repoRoot, ".cog")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return cogerrors.Wrap(cogerrors.Filesystem, "creating cog directory", err)
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return cogerrors.Wrap(cogerrors.Codec, "encoding config", err)
	}
	return os.WriteFile(filepath.Join(dir, "config.json"), data, 0o644)
}

// Validate checks that c's schema version is one this code understands.
func (c *Config) Validate() error {
	for _, v := range SupportedConfigVersions {
		if c.Version == v {
			return nil
		}
	}
	return cogerrors.New(cogerrors.UserInput, "unsupported config version")
}
