package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"ReturnLens/internal/calculator"
	"ReturnLens/internal/config"
	"ReturnLens/internal/logger"
	"ReturnLens/internal/recorder"
)

var Cmd = &cobra.Command{
	Use:           "returnlens",
	Short:         "Investment return calculator",
	Long:          "Compute annual returns, outcomes and required investments for private deals, including follow-on rounds and fee waterfalls.",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setup()
	},
}

var args struct {
	configPath string
	json       bool
}

// Loaded by setup before any subcommand runs.
var (
	cfg    *config.Config
	log    *logger.Logger
	engine calculator.Engine
)

func init() {
	defaultPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		defaultPath = v
	}
	Cmd.PersistentFlags().StringVar(&args.configPath, "config", defaultPath, "path to the YAML config file")
	Cmd.PersistentFlags().BoolVar(&args.json, "json", false, "print results as JSON")

	Cmd.AddCommand(irrCmd, outcomeCmd, initialCmd, portfolioCmd, scenarioCmd, serveCmd)
}

func main() {
	if err := Cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup() error {
	c, err := config.Load(args.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return fmt.Errorf("config validation: %w", err)
	}
	cfg = c
	log = logger.New(cfg.Log.Level, cfg.Log.Environment)
	engine = calculator.NewEngine(cfg.SolverSettings())
	return nil
}

// openRecorder falls back to the no-op recorder when SQLite is unavailable.
func openRecorder() recorder.Recorder {
	if cfg.Database.SQLitePath == "" {
		return recorder.NewNoopRecorder()
	}
	sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath, log)
	if err != nil {
		log.Warnw("init sqlite recorder failed, using noop", "error", err)
		return recorder.NewNoopRecorder()
	}
	return sr
}
