package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/rustyeddy/champs/config"
	"github.com/rustyeddy/champs/internal/logging"
	"github.com/rustyeddy/champs/ledger"
	"github.com/rustyeddy/champs/pricing"
	"github.com/rustyeddy/champs/sim"
)

var rootCmd = &cobra.Command{
	Use:   "champs",
	Short: "Crypto Championships classroom trading game",
	Long: `Champs runs a classroom crypto trading championship.

Students start with the same cash, buy and sell simulated coins,
park money in a bank that pays weekly interest, and compete on a
leaderboard. The instructor advances the week, which moves prices,
pays interest and records everyone's standing.

It provides tools for:
  - Serving the JSON API used by the classroom dashboard
  - Advancing weeks and resetting the championship
  - Trading on behalf of students from the terminal
  - Exporting snapshot and price history`,
	SilenceUsage: true,
}

var (
	cfgFile  string
	dbPath   string
	logLevel string
)

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (YAML or JSON)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "path to SQLite database (overrides config)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "debug, info, warn or error (overrides config)")
}

// loadConfig reads --config, or the defaults, and applies flag overrides.
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if cfgFile != "" {
		var err error
		if cfg, err = config.LoadFromFile(cfgFile); err != nil {
			return nil, err
		}
	}
	if dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// app is everything a command needs to act on the championship.
type app struct {
	cfg    *config.Config
	log    *slog.Logger
	store  *ledger.Store
	engine *sim.Engine
}

func (a *app) Close() error {
	return a.store.Close()
}

// openApp opens and seeds the ledger and wires the engine.
func openApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger)

	store, err := ledger.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := store.Init(ctx, cfg.LedgerAssets()); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("init db: %w", err)
	}

	prices := pricing.NewEngine(pricing.NewSource(cfg.Simulation.Seed), cfg.Walk())
	engine := sim.NewEngine(store, prices, cfg.Params(), logger)

	return &app{cfg: cfg, log: logger, store: store, engine: engine}, nil
}

// withApp runs fn against an open app and closes it afterwards.
func withApp(cmd *cobra.Command, fn func(a *app) error) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()
	return fn(a)
}
