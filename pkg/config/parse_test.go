package config

import "testing"

func TestParseScenarioYAMLString(t *testing.T) {
	yamlText := `
market: {spot: 100, volatility: 0.2, rate: 0.05, expiry: 1}
simulation:
  paths: 5000
  seed: 42
options:
  - {name: atm, type: call, strike: 100}
`

	scenario, err := ParseScenarioYAMLString(yamlText)
	if err != nil {
		t.Fatalf("ParseScenarioYAMLString failed: %v", err)
	}
	if scenario.Simulation.Seed == nil || *scenario.Simulation.Seed != 42 {
		t.Fatalf("expected pinned seed 42, got %v", scenario.Simulation.Seed)
	}
	if scenario.Simulation.Steps != 0 {
		t.Fatalf("expected steps left unset, got %d", scenario.Simulation.Steps)
	}
	if len(scenario.Options) != 1 || scenario.Options[0].Strike != 100 {
		t.Fatalf("unexpected options %+v", scenario.Options)
	}
}

func TestParseScenarioYAMLRejectsInvalid(t *testing.T) {
	if _, err := ParseScenarioYAMLString("market: {spot: 100}\n"); err == nil {
		t.Fatal("expected validation error for scenario without expiry or options")
	}
	if _, err := ParseScenarioYAMLString("market: [\n"); err == nil {
		t.Fatal("expected parse error for malformed yaml")
	}
}
