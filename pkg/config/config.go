// Package config holds tool configuration loaded from mpsweep config files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// Config holds all configuration options for mpsweep.
type Config struct {
	// Project root containing the mini program source. Relative roots are
	// resolved against the scanned path.
	Root string `koanf:"root"`

	// Entry is the entry-manifest path relative to the root.
	Entry string `koanf:"entry"`

	// Aliases are import-prefix overrides, highest priority in the merge.
	Aliases map[string][]string `koanf:"aliases"`

	// Essential files are exempt from unused detection, relative to root.
	Essential []string `koanf:"essential"`

	// IncludeAssets controls whether asset files appear in the unused set.
	IncludeAssets bool `koanf:"include_assets"`

	Exclude ExcludeConfig `koanf:"exclude"`
	Cache   CacheConfig   `koanf:"cache"`
	Output  OutputConfig  `koanf:"output"`
}

// ExcludeConfig defines file exclusion patterns for inventory assembly.
type ExcludeConfig struct {
	Patterns  []string `koanf:"patterns"`
	Dirs      []string `koanf:"dirs"`
	Gitignore bool     `koanf:"gitignore"`
}

// CacheConfig controls the extraction cache.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled"`
	Dir     string `koanf:"dir"`
	TTL     int    `koanf:"ttl"` // hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format  string `koanf:"format"` // text, json, markdown, toon
	Color   bool   `koanf:"color"`
	Verbose bool   `koanf:"verbose"`
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Root:  ".",
		Entry: "app.json",
		Exclude: ExcludeConfig{
			Dirs: []string{
				"node_modules",
				"miniprogram_npm",
				".git",
				".mpsweep",
				"dist",
				"build",
			},
			Gitignore: true,
		},
		Cache: CacheConfig{
			Enabled: false,
			Dir:     ".mpsweep/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
	}
}

// Load loads configuration from a file, picking the parser by extension.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault tries standard config locations, falling back to defaults.
func LoadOrDefault() *Config {
	names := []string{
		"mpsweep.toml",
		"mpsweep.yaml",
		"mpsweep.yml",
		"mpsweep.json",
		".mpsweep.toml",
		".mpsweep.yaml",
		".mpsweep.yml",
		".mpsweep.json",
	}
	for _, dir := range []string{".", ".mpsweep"} {
		for _, name := range names {
			path := filepath.Join(dir, name)
			if _, err := os.Stat(path); err == nil {
				if cfg, err := Load(path); err == nil {
					return cfg
				}
			}
		}
	}
	return DefaultConfig()
}
