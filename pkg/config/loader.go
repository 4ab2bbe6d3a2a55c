package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"
)

// ErrInvalidScenario is wrapped by every scenario validation failure.
var ErrInvalidScenario = errors.New("invalid scenario")

// LoadConfig loads and parses a configuration file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	cfg, err := ParseConfigYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// LoadScenario loads and parses a scenario file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}
	scenario, err := ParseScenarioYAML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse scenario file %s: %w", path, err)
	}
	return scenario, nil
}

func validateConfig(cfg *Config) error {
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[cfg.LogLevel] {
		return fmt.Errorf("invalid log_level: %s (must be debug, info, warn, or error)", cfg.LogLevel)
	}
	if cfg.Workers < 0 {
		return fmt.Errorf("workers cannot be negative, got %d", cfg.Workers)
	}
	if cfg.WorkerBudget < 0 {
		return fmt.Errorf("worker_budget cannot be negative, got %d", cfg.WorkerBudget)
	}
	if cfg.WorkerBudget > 0 && cfg.Workers > 0 && cfg.WorkerBudget < int64(cfg.Workers) {
		return fmt.Errorf("worker_budget %d is smaller than workers %d", cfg.WorkerBudget, cfg.Workers)
	}
	if cfg.BlockSize < 1 {
		return fmt.Errorf("block_size must be positive, got %d", cfg.BlockSize)
	}
	if cfg.DefaultSteps < 1 {
		return fmt.Errorf("default_steps must be positive, got %d", cfg.DefaultSteps)
	}
	return nil
}

// ValidateScenario checks a scenario before any simulation work starts.
// Every error wraps ErrInvalidScenario.
func ValidateScenario(s *Scenario) error {
	if err := validateScenario(s); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidScenario, err)
	}
	return nil
}

func validateScenario(s *Scenario) error {
	m := s.Market
	switch {
	case !finite(m.Spot) || m.Spot <= 0:
		return fmt.Errorf("market spot must be positive, got %v", m.Spot)
	case !finite(m.Volatility) || m.Volatility < 0:
		return fmt.Errorf("market volatility cannot be negative, got %v", m.Volatility)
	case !finite(m.Rate):
		return fmt.Errorf("market rate must be finite, got %v", m.Rate)
	case !finite(m.Expiry) || m.Expiry <= 0:
		return fmt.Errorf("market expiry must be positive, got %v", m.Expiry)
	}

	sim := s.Simulation
	if sim.Paths < 1 {
		return fmt.Errorf("simulation paths must be at least 1, got %d", sim.Paths)
	}
	if sim.Steps < 0 {
		return fmt.Errorf("simulation steps cannot be negative, got %d", sim.Steps)
	}
	switch strings.ToLower(sim.Distribution) {
	case "", "normal":
	case "student_t":
		if sim.DegreesOfFreedom < 0 || !finite(sim.DegreesOfFreedom) {
			return fmt.Errorf("simulation degrees_of_freedom must be positive, got %v", sim.DegreesOfFreedom)
		}
	default:
		return fmt.Errorf("unknown simulation distribution %q (must be normal or student_t)", sim.Distribution)
	}

	if len(s.Options) == 0 {
		return fmt.Errorf("at least one option must be defined")
	}
	names := make(map[string]bool, len(s.Options))
	for i, opt := range s.Options {
		if opt.Name == "" {
			return fmt.Errorf("option %d: name cannot be empty", i)
		}
		if names[opt.Name] {
			return fmt.Errorf("duplicate option name: %s", opt.Name)
		}
		names[opt.Name] = true

		if opt.Type != "call" && opt.Type != "put" {
			return fmt.Errorf("option %s: type must be 'call' or 'put', got %q", opt.Name, opt.Type)
		}
		if !finite(opt.Strike) || opt.Strike < 0 {
			return fmt.Errorf("option %s: strike cannot be negative, got %v", opt.Name, opt.Strike)
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Validate checks a config assembled outside ParseConfigYAML, such as one
// overridden by flags.
func (c *Config) Validate() error {
	applyConfigDefaults(c)
	return validateConfig(c)
}
