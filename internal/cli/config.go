package cli

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// RunConfig is a YAML batch of verification requests.
type RunConfig struct {
	// Database is an optional run log path shared by every check.
	Database string `yaml:"database,omitempty"`

	// Timeout is an optional per-query solver timeout for every check.
	Timeout time.Duration `yaml:"timeout,omitempty"`

	// Checks lists the networks to verify, in order.
	Checks []RunConfigCheck `yaml:"checks"`
}

// RunConfigCheck is one entry of a run config.
type RunConfigCheck struct {
	Network    string `yaml:"network"`
	Size       int    `yaml:"size,omitempty"`
	Monolithic bool   `yaml:"monolithic,omitempty"`
}

const defaultSize = 3

// LoadRunConfig reads and validates a YAML run config.
func LoadRunConfig(path string) (*RunConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read run config: %w", err)
	}

	var cfg RunConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		return nil, fmt.Errorf("parse run config %s: %w", path, err)
	}

	if len(cfg.Checks) == 0 {
		return nil, fmt.Errorf("run config %s: no checks declared", path)
	}
	for i, c := range cfg.Checks {
		if c.Network == "" {
			return nil, fmt.Errorf("run config %s: check %d has no network", path, i)
		}
		if c.Size < 0 {
			return nil, fmt.Errorf("run config %s: check %d has negative size %d", path, i, c.Size)
		}
		if c.Size == 0 {
			cfg.Checks[i].Size = defaultSize
		}
	}
	if cfg.Timeout < 0 {
		return nil, fmt.Errorf("run config %s: negative timeout %s", path, cfg.Timeout)
	}
	return &cfg, nil
}
