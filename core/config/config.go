// Package config loads depscope.yaml: the packages to analyze, build
// flags, and the layer contracts to check.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/depscope/depscope/core/graph"
	"github.com/depscope/depscope/core/logger"
)

// FileName is the config file looked up in the working directory.
const FileName = "depscope.yaml"

type Config struct {
	// Packages are the top level Python packages to analyze.
	Packages []string `yaml:"packages"`
	// SearchPaths are the directories packages are resolved against.
	SearchPaths []string `yaml:"search_paths"`

	IncludeExternalPackages    bool   `yaml:"include_external_packages"`
	ExcludeTypeCheckingImports bool   `yaml:"exclude_type_checking_imports"`
	CacheDir                   string `yaml:"cache_dir"`
	NoCache                    bool   `yaml:"no_cache"`

	Contracts []Contract `yaml:"contracts"`
}

// Contract is one layered-architecture rule: layers ordered from
// highest to lowest, optionally resolved under containers.
type Contract struct {
	Name       string      `yaml:"name"`
	Containers []string    `yaml:"containers"`
	Layers     []LayerSpec `yaml:"layers"`
}

// LayerSpec is one entry in a contract's layers list. A scalar names a
// single-module layer; a sequence names independent siblings.
type LayerSpec struct {
	Modules []string
}

func (l *LayerSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var single string
		if err := value.Decode(&single); err != nil {
			return err
		}
		l.Modules = []string{single}
		return nil
	case yaml.SequenceNode:
		return value.Decode(&l.Modules)
	default:
		return fmt.Errorf("layer entries must be a module name or a list of module names (line %d)", value.Line)
	}
}

func (l LayerSpec) MarshalYAML() (any, error) {
	if len(l.Modules) == 1 {
		return l.Modules[0], nil
	}
	return l.Modules, nil
}

// ToLayer converts the spec into an analyzer layer. Siblings listed
// together are independent.
func (l LayerSpec) ToLayer() graph.Layer {
	return graph.NewLayer(l.Modules...)
}

func Default() *Config {
	return &Config{
		SearchPaths: []string{"."},
	}
}

// Load reads depscope.yaml from the working directory, falling back to
// defaults when no file exists.
func Load() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("cannot determine working dir: %w", err)
	}

	path := filepath.Join(wd, FileName)
	if _, err := os.Stat(path); err != nil {
		logger.Debug("No config file found, using default config")
		return Default(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads the config file at the given path.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse yaml: %w", err)
	}
	logger.Debug("Config file found: %s", path)

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) validate() error {
	for _, contract := range c.Contracts {
		if contract.Name == "" {
			return fmt.Errorf("every contract needs a name")
		}
		if len(contract.Layers) < 2 {
			return fmt.Errorf("contract %q needs at least two layers", contract.Name)
		}
	}
	return nil
}
