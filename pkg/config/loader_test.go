package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig(t *testing.T) {
	cfg, err := LoadConfig("../../config/config.yaml")
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected log_level 'info', got '%s'", cfg.LogLevel)
	}
	if cfg.Workers != 8 || cfg.WorkerBudget != 32 {
		t.Errorf("Expected workers 8 and budget 32, got %d and %d", cfg.Workers, cfg.WorkerBudget)
	}
	if cfg.BlockSize != 1024 {
		t.Errorf("Expected block_size 1024, got %d", cfg.BlockSize)
	}
	if cfg.HTTPAddr != ":8080" || cfg.GRPCAddr != ":50051" {
		t.Errorf("Unexpected listen addresses %q and %q", cfg.HTTPAddr, cfg.GRPCAddr)
	}
	if cfg.DefaultSteps != 252 {
		t.Errorf("Expected default_steps 252, got %d", cfg.DefaultSteps)
	}
}

func TestLoadScenario(t *testing.T) {
	scenario, err := LoadScenario("../../config/scenario.yaml")
	if err != nil {
		t.Fatalf("Failed to load scenario: %v", err)
	}

	if scenario.Market.Spot != 100 || scenario.Market.Volatility != 0.2 {
		t.Errorf("Unexpected market %+v", scenario.Market)
	}
	if scenario.Simulation.Distribution != "student_t" || scenario.Simulation.DegreesOfFreedom != 4 {
		t.Errorf("Unexpected simulation %+v", scenario.Simulation)
	}
	if !scenario.Simulation.Greeks {
		t.Error("Expected greeks to be enabled")
	}
	if scenario.Simulation.Seed != nil {
		t.Errorf("Expected no pinned seed, got %d", *scenario.Simulation.Seed)
	}
	if len(scenario.Options) != 3 {
		t.Fatalf("Expected 3 options, got %d", len(scenario.Options))
	}
	if scenario.Options[2].Name != "atm-put" || scenario.Options[2].Type != "put" {
		t.Errorf("Unexpected third option %+v", scenario.Options[2])
	}
}

func TestConfigDefaults(t *testing.T) {
	cfg, err := ParseConfigYAML([]byte("workers: 2\n"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if cfg.LogLevel != "info" || cfg.BlockSize != 1024 || cfg.DefaultSteps != 252 {
		t.Errorf("Expected defaults to be filled, got %+v", cfg)
	}

	def := DefaultConfig()
	if err := validateConfig(def); err != nil {
		t.Errorf("Expected default config to be valid, got %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	valid := func() *Config { return DefaultConfig() }

	tests := []struct {
		name        string
		mutate      func(*Config)
		expectError bool
	}{
		{"Valid config", func(*Config) {}, false},
		{"Invalid log level", func(c *Config) { c.LogLevel = "trace" }, true},
		{"Negative workers", func(c *Config) { c.Workers = -1 }, true},
		{"Negative budget", func(c *Config) { c.WorkerBudget = -1 }, true},
		{"Budget below workers", func(c *Config) { c.Workers = 8; c.WorkerBudget = 4 }, true},
		{"Budget equals workers", func(c *Config) { c.Workers = 4; c.WorkerBudget = 4 }, false},
		{"Zero block size", func(c *Config) { c.BlockSize = 0 }, true},
		{"Zero default steps", func(c *Config) { c.DefaultSteps = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := validateConfig(cfg)
			if tt.expectError && err == nil {
				t.Error("Expected error but got none")
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func validScenario() *Scenario {
	return &Scenario{
		Market:     Market{Spot: 100, Volatility: 0.2, Rate: 0.05, Expiry: 1},
		Simulation: Simulation{Paths: 1000, Steps: 52},
		Options:    []Option{{Name: "atm", Type: "call", Strike: 100}},
	}
}

func TestScenarioValidation(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(*Scenario)
		expectError bool
	}{
		{"Valid scenario", func(*Scenario) {}, false},
		{"Zero volatility", func(s *Scenario) { s.Market.Volatility = 0 }, false},
		{"Zero strike", func(s *Scenario) { s.Options[0].Strike = 0 }, false},
		{"Student-t without df", func(s *Scenario) { s.Simulation.Distribution = "student_t" }, false},
		{"Zero spot", func(s *Scenario) { s.Market.Spot = 0 }, true},
		{"Negative volatility", func(s *Scenario) { s.Market.Volatility = -0.1 }, true},
		{"Zero expiry", func(s *Scenario) { s.Market.Expiry = 0 }, true},
		{"Zero paths", func(s *Scenario) { s.Simulation.Paths = 0 }, true},
		{"Negative steps", func(s *Scenario) { s.Simulation.Steps = -1 }, true},
		{"Unknown distribution", func(s *Scenario) { s.Simulation.Distribution = "cauchy" }, true},
		{"Negative df", func(s *Scenario) { s.Simulation.Distribution = "student_t"; s.Simulation.DegreesOfFreedom = -2 }, true},
		{"No options", func(s *Scenario) { s.Options = nil }, true},
		{"Empty option name", func(s *Scenario) { s.Options[0].Name = "" }, true},
		{"Unknown option type", func(s *Scenario) { s.Options[0].Type = "straddle" }, true},
		{"Negative strike", func(s *Scenario) { s.Options[0].Strike = -1 }, true},
		{"Duplicate option", func(s *Scenario) { s.Options = append(s.Options, s.Options[0]) }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := validScenario()
			tt.mutate(s)
			err := ValidateScenario(s)
			if tt.expectError {
				if err == nil {
					t.Fatal("Expected error but got none")
				}
				if !errors.Is(err, ErrInvalidScenario) {
					t.Fatalf("expected ErrInvalidScenario, got %v", err)
				}
			}
			if !tt.expectError && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
		})
	}
}

func TestLoadInvalidFile(t *testing.T) {
	if _, err := LoadConfig("nonexistent.yaml"); err == nil {
		t.Error("Expected error when loading nonexistent config file")
	}
	if _, err := LoadScenario("nonexistent.yaml"); err == nil {
		t.Error("Expected error when loading nonexistent scenario file")
	}
}

func TestLoadMalformedYAML(t *testing.T) {
	tmpDir := t.TempDir()
	malformedFile := filepath.Join(tmpDir, "malformed.yaml")

	content := `
log_level: info
workers: [unclosed
`
	if err := os.WriteFile(malformedFile, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}

	if _, err := LoadConfig(malformedFile); err == nil {
		t.Error("Expected error when parsing malformed YAML")
	}
}
