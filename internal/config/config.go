// Package config loads and saves run configurations as YAML.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultDuration = 10.0
	DefaultVertices = 10
	DefaultCoupling = 1.0
)

type Config struct {
	Model      string  `yaml:"model"`
	Topology   string  `yaml:"topology"`
	Vertices   int     `yaml:"vertices"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	Duration   float64 `yaml:"duration"`
	Coupling   float64 `yaml:"coupling"`
	Workers    int     `yaml:"workers"`
	Seed       int64   `yaml:"seed"`
}

func DefaultConfig() *Config {
	return &Config{
		Model:      "diffusion",
		Topology:   "ring",
		Vertices:   DefaultVertices,
		Integrator: "rk4",
		Dt:         DefaultDt,
		Duration:   DefaultDuration,
		Coupling:   DefaultCoupling,
		Workers:    1,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) Validate() error {
	if c.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", c.Dt)
	}
	if c.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", c.Duration)
	}
	if c.Vertices < 1 {
		return fmt.Errorf("vertices must be at least 1, got %d", c.Vertices)
	}
	switch c.Model {
	case "diffusion", "kuramoto":
	default:
		return fmt.Errorf("unknown model %q", c.Model)
	}
	switch c.Topology {
	case "ring", "path", "star":
	default:
		return fmt.Errorf("unknown topology %q", c.Topology)
	}
	switch c.Integrator {
	case "rk4", "implicit-euler":
	default:
		return fmt.Errorf("unknown integrator %q", c.Integrator)
	}
	return nil
}
