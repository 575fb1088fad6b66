package cpu

import (
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"gopkg.in/yaml.v3"
)

// Config selects the backend and debug behavior of a Processor.
type Config struct {
	// CPU names the backend to use, or "any" for the first registered
	// one.
	CPU string `yaml:"cpu"`

	// DebugInfoFlags are passed through to the frontend on every define.
	DebugInfoFlags DebugInfoFlags `yaml:"debug_info_flags"`

	// Metrics receives the processor's counters. Nil leaves them
	// unregistered.
	Metrics prometheus.Registerer `yaml:"-"`
}

func DefaultConfig() Config {
	return Config{
		CPU: "any",
	}
}

// LoadConfig reads a YAML config file. Missing fields keep their defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("cpu: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("cpu: parse config %s: %w", path, err)
	}
	if cfg.CPU == "" {
		cfg.CPU = "any"
	}
	return cfg, nil
}
