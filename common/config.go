package common

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"CollatzScan/batch"
)

// DefaultConfig carries the parameters the original exploration campaign
// settled on: the extended generator set, tolerance +-20, exponents up to
// 4^30, a budget of 10000 steps per trajectory, and odd values only.
func DefaultConfig() batch.Config {
	return batch.Config{
		Generators: []int64{
			12, 16, 20, 24, 28, 32, 36, 40, 44, 48, 52, 56, 60, 64,
			68, 72, 80, 84, 88, 96, 100,
		},
		Tolerance:   20,
		MaxExponent: 30,
		MaxSteps:    10000,
		ChunkSize:   1000,
		OddOnly:     true,
	}
}

// LoadConfig reads a YAML run configuration, with file values applied over
// the defaults. An empty path returns the defaults unchanged.
func LoadConfig(path string) (batch.Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return cfg, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}
