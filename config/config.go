package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rustyeddy/champs/internal/logging"
	"github.com/rustyeddy/champs/ledger"
	"github.com/rustyeddy/champs/pricing"
	"github.com/rustyeddy/champs/sim"
)

// Config represents the complete championship configuration
type Config struct {
	Server      ServerConfig     `json:"server" yaml:"server"`
	Database    DatabaseConfig   `json:"database" yaml:"database"`
	Log         LogConfig        `json:"log" yaml:"log"`
	Simulation  SimulationConfig `json:"simulation" yaml:"simulation"`
	Assets      []AssetConfig    `json:"assets" yaml:"assets"`
	DemoStudent DemoConfig       `json:"demo_student" yaml:"demo_student"`
}

// ServerConfig contains HTTP listener parameters
type ServerConfig struct {
	Addr            string `json:"addr" yaml:"addr"`
	ShutdownTimeout string `json:"shutdown_timeout" yaml:"shutdown_timeout"` // e.g. "10s"
}

// ParseShutdownTimeout converts the timeout string to time.Duration
func (s ServerConfig) ParseShutdownTimeout() (time.Duration, error) {
	if s.ShutdownTimeout == "" {
		return 0, nil
	}
	return time.ParseDuration(s.ShutdownTimeout)
}

// DatabaseConfig locates the SQLite ledger
type DatabaseConfig struct {
	Path string `json:"path" yaml:"path"`
}

// LogConfig selects the slog level and handler
type LogConfig struct {
	Level  string `json:"level" yaml:"level"`
	Format string `json:"format" yaml:"format"` // "text" or "json"
}

// SimulationConfig contains the championship rules
type SimulationConfig struct {
	StartingCash    float64 `json:"starting_cash" yaml:"starting_cash"`
	BankInterest    float64 `json:"bank_interest" yaml:"bank_interest"`
	MaxWeeklyChange float64 `json:"max_weekly_change" yaml:"max_weekly_change"`
	MinPrice        float64 `json:"min_price" yaml:"min_price"`
	Seed            int64   `json:"seed,omitempty" yaml:"seed,omitempty"` // 0 seeds from the clock
	DefaultColor    string  `json:"default_color" yaml:"default_color"`
}

// AssetConfig is one tradable coin and its starting price
type AssetConfig struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Name   string  `json:"name" yaml:"name"`
	Price  float64 `json:"price" yaml:"price"`
}

// DemoConfig describes the student created by a reset. An empty name disables it.
type DemoConfig struct {
	Name     string              `json:"name" yaml:"name"`
	Color    string              `json:"color" yaml:"color"`
	Cash     float64             `json:"cash" yaml:"cash"`
	Bank     float64             `json:"bank" yaml:"bank"`
	Holdings []DemoHoldingConfig `json:"holdings,omitempty" yaml:"holdings,omitempty"`
}

// DemoHoldingConfig is a lot bought with Euros at the starting price
type DemoHoldingConfig struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Euros  float64 `json:"euros" yaml:"euros"`
}

// LoadFromFile loads configuration from a file (YAML or JSON)
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// Missing sections keep their defaults.
	cfg := Default()

	// Try YAML first, fall back to JSON
	err = yaml.Unmarshal(data, cfg)
	if err != nil {
		cfg = Default()
		err = json.Unmarshal(data, cfg)
		if err != nil {
			return nil, fmt.Errorf("parse config (tried YAML and JSON): %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// SaveToFile saves configuration to a file (YAML for .yaml/.yml, JSON otherwise)
func (c *Config) SaveToFile(path string) error {
	var data []byte
	var err error

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
	}

	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}
	if d, err := c.Server.ParseShutdownTimeout(); err != nil || d < 0 {
		return fmt.Errorf("server.shutdown_timeout must be a non-negative duration")
	}
	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if c.Log.Format != "" && c.Log.Format != "text" && c.Log.Format != "json" {
		return fmt.Errorf("log.format must be 'text' or 'json'")
	}

	s := c.Simulation
	if !positive(s.StartingCash) {
		return fmt.Errorf("simulation.starting_cash must be positive")
	}
	if !finite(s.BankInterest) || s.BankInterest < 0 {
		return fmt.Errorf("simulation.bank_interest must not be negative")
	}
	if !positive(s.MaxWeeklyChange) || s.MaxWeeklyChange >= 1 {
		return fmt.Errorf("simulation.max_weekly_change must be between 0 and 1")
	}
	if !positive(s.MinPrice) {
		return fmt.Errorf("simulation.min_price must be positive")
	}

	if len(c.Assets) == 0 {
		return fmt.Errorf("assets must list at least one asset")
	}
	seen := make(map[string]bool, len(c.Assets))
	for i, a := range c.Assets {
		if strings.TrimSpace(a.Symbol) == "" {
			return fmt.Errorf("assets[%d].symbol is required", i)
		}
		if seen[a.Symbol] {
			return fmt.Errorf("assets[%d]: duplicate symbol %s", i, a.Symbol)
		}
		seen[a.Symbol] = true
		if !positive(a.Price) {
			return fmt.Errorf("assets[%d].price must be positive", i)
		}
	}

	d := c.DemoStudent
	if d.Name == "" {
		return nil
	}
	if !finite(d.Cash) || d.Cash < 0 || !finite(d.Bank) || d.Bank < 0 {
		return fmt.Errorf("demo_student balances must not be negative")
	}
	for i, h := range d.Holdings {
		if !seen[h.Symbol] {
			return fmt.Errorf("demo_student.holdings[%d]: unknown asset %q", i, h.Symbol)
		}
		if !positive(h.Euros) {
			return fmt.Errorf("demo_student.holdings[%d].euros must be positive", i)
		}
	}
	return nil
}

// Default returns a configuration with sensible defaults
func Default() *Config {
	params := sim.DefaultParams()

	cfg := &Config{
		Server: ServerConfig{
			Addr:            ":5000",
			ShutdownTimeout: "10s",
		},
		Database: DatabaseConfig{
			Path: "./crypto_championships.db",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Simulation: SimulationConfig{
			StartingCash:    params.StartingCash,
			BankInterest:    params.BankInterest,
			MaxWeeklyChange: pricing.DefaultMaxChange,
			MinPrice:        pricing.DefaultFloor,
			DefaultColor:    params.DefaultColor,
		},
		DemoStudent: DemoConfig{
			Name:  params.Demo.Name,
			Color: params.Demo.Color,
			Cash:  params.Demo.Cash,
			Bank:  params.Demo.Bank,
		},
	}
	for _, a := range params.Assets {
		cfg.Assets = append(cfg.Assets, AssetConfig{Symbol: a.Symbol, Name: a.Name, Price: a.Price})
	}
	for _, h := range params.Demo.Holdings {
		cfg.DemoStudent.Holdings = append(cfg.DemoStudent.Holdings, DemoHoldingConfig{Symbol: h.Symbol, Euros: h.Euros})
	}
	return cfg
}

// Params converts the simulation sections into engine rules.
func (c *Config) Params() sim.Params {
	p := sim.Params{
		StartingCash: c.Simulation.StartingCash,
		BankInterest: c.Simulation.BankInterest,
		DefaultColor: c.Simulation.DefaultColor,
		Assets:       c.LedgerAssets(),
		Demo: sim.DemoStudent{
			Name:  c.DemoStudent.Name,
			Color: c.DemoStudent.Color,
			Cash:  c.DemoStudent.Cash,
			Bank:  c.DemoStudent.Bank,
		},
	}
	for _, h := range c.DemoStudent.Holdings {
		p.Demo.Holdings = append(p.Demo.Holdings, sim.DemoHolding{Symbol: h.Symbol, Euros: h.Euros})
	}
	return p
}

// LedgerAssets returns the configured assets; names default to the symbol.
func (c *Config) LedgerAssets() []ledger.Asset {
	assets := make([]ledger.Asset, 0, len(c.Assets))
	for _, a := range c.Assets {
		name := a.Name
		if name == "" {
			name = a.Symbol
		}
		assets = append(assets, ledger.Asset{Symbol: a.Symbol, Name: name, Price: a.Price})
	}
	return assets
}

// Walk returns the price walk configured by the simulation section.
func (c *Config) Walk() pricing.Walk {
	return pricing.Walk{MaxChange: c.Simulation.MaxWeeklyChange, Floor: c.Simulation.MinPrice}
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func positive(x float64) bool {
	return finite(x) && x > 0
}
