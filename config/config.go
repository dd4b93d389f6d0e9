package config

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/kilianp07/loadplan/core/evaluator"
	"github.com/kilianp07/loadplan/core/factory"
	"github.com/kilianp07/loadplan/core/model"
	"github.com/kilianp07/loadplan/core/runlog"
	"github.com/kilianp07/loadplan/core/solver"
)

type Config struct {
	// Scenario replaces the built-in reference scenario as a whole when set.
	Scenario  *model.Scenario        `json:"scenario"`
	Solver    solver.Config          `json:"solver"`
	Evaluator evaluator.Tables       `json:"evaluator"`
	History   runlog.Config          `json:"history"`
	Metrics   MetricsConfig          `json:"metrics"`
	Sinks     []factory.ModuleConfig `json:"sinks"`
	Sentry    SentryConfig           `json:"sentry"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{Solver: solver.DefaultConfig()}
	cfg.setDefaults()
	return cfg
}

// Load reads path (YAML or JSON) then applies K_-prefixed environment
// overrides, K_SOLVER__METHOD=greedy setting solver.method. An empty path
// loads defaults and environment only.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		ext := strings.ToLower(filepath.Ext(path))
		var parser koanf.Parser
		switch ext {
		case ".yaml", ".yml":
			parser = yaml.Parser()
		case ".json":
			parser = json.Parser()
		default:
			return nil, fmt.Errorf("unsupported config format: %s", ext)
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, err
		}
	}
	// Optional environment overrides
	if err := k.Load(env.Provider("K_", ".", func(s string) string {
		s = strings.TrimPrefix(strings.ToLower(s), "k_")
		return strings.ReplaceAll(s, "__", ".")
	}), nil); err != nil {
		return nil, err
	}
	// Solver settings are plain structs, so missing keys keep their default.
	cfg := Config{Solver: solver.DefaultConfig()}
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, err
	}
	cfg.setDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.Scenario == nil {
		c.Scenario = model.ReferenceScenario()
	}
	c.Solver.SetDefaults()
	c.Evaluator.SetDefaults()
	c.History.SetDefaults()
}

// Validate checks every section. Scenario problems surface as
// model.ErrMalformedInput before any solver runs.
func (c *Config) Validate() error {
	if err := c.Scenario.Validate(); err != nil {
		return fmt.Errorf("scenario: %w", err)
	}
	if err := c.Solver.Validate(); err != nil {
		return fmt.Errorf("solver: %w", err)
	}
	if err := c.Evaluator.Validate(); err != nil {
		return fmt.Errorf("evaluator: %w", err)
	}
	if err := c.Evaluator.Covers(c.Scenario); err != nil {
		return fmt.Errorf("evaluator: %w", err)
	}
	if err := c.History.Validate(); err != nil {
		return fmt.Errorf("history: %w", err)
	}
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("sinks[%d]: type is required", i)
		}
	}
	return nil
}
