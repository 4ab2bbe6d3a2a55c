package config

// Config is the pricing daemon configuration.
type Config struct {
	LogLevel     string `yaml:"log_level"`
	Workers      int    `yaml:"workers"`       // per pricing call; 0 means GOMAXPROCS
	WorkerBudget int64  `yaml:"worker_budget"` // shared across concurrent calls; 0 means 4x workers
	BlockSize    int    `yaml:"block_size"`
	HTTPAddr     string `yaml:"http_addr"`
	GRPCAddr     string `yaml:"grpc_addr"`
	DefaultSteps int64  `yaml:"default_steps"`
	LogFile      string `yaml:"log_file,omitempty"`
}

// Scenario describes one pricing run: a market, how to simulate it and the
// options to price against it.
type Scenario struct {
	Market     Market     `yaml:"market" json:"market"`
	Simulation Simulation `yaml:"simulation" json:"simulation"`
	Options    []Option   `yaml:"options" json:"options"`
}

// Market holds the underlying's state.
type Market struct {
	Spot       float64 `yaml:"spot" json:"spot"`
	Volatility float64 `yaml:"volatility" json:"volatility"`
	Rate       float64 `yaml:"rate" json:"rate"`
	Expiry     float64 `yaml:"expiry" json:"expiry"` // years
}

// Simulation holds the Monte Carlo settings.
type Simulation struct {
	Paths            int64   `yaml:"paths" json:"paths"`
	Steps            int64   `yaml:"steps,omitempty" json:"steps,omitempty"`
	Distribution     string  `yaml:"distribution,omitempty" json:"distribution,omitempty"` // normal or student_t
	DegreesOfFreedom float64 `yaml:"degrees_of_freedom,omitempty" json:"degrees_of_freedom,omitempty"`
	Seed             *uint64 `yaml:"seed,omitempty" json:"seed,omitempty"`
	Greeks           bool    `yaml:"greeks,omitempty" json:"greeks,omitempty"`
}

// Option is one European option to price.
type Option struct {
	Name   string  `yaml:"name" json:"name"`
	Type   string  `yaml:"type" json:"type"` // call or put
	Strike float64 `yaml:"strike" json:"strike"`
}

// DefaultConfig is used when no config file is given.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *Config) {
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.BlockSize == 0 {
		cfg.BlockSize = 1024
	}
	if cfg.HTTPAddr == "" {
		cfg.HTTPAddr = ":8080"
	}
	if cfg.GRPCAddr == "" {
		cfg.GRPCAddr = ":50051"
	}
	if cfg.DefaultSteps == 0 {
		cfg.DefaultSteps = 252
	}
}
