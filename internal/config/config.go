package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"ReturnLens/internal/calculator"
)

// Config holds all application configuration.
type Config struct {
	Telegram struct {
		BotToken string `yaml:"bot_token"`
		ChatID   string `yaml:"chat_id"`
	} `yaml:"telegram"`
	Solver struct {
		Tolerance          float64 `yaml:"tolerance"`
		MaxIterations      int     `yaml:"max_iterations"`
		Seed               float64 `yaml:"seed"`
		BracketLow         float64 `yaml:"bracket_low"`
		BracketHigh        float64 `yaml:"bracket_high"`
		OuterTolerance     float64 `yaml:"outer_tolerance"`
		MaxOuterIterations int     `yaml:"max_outer_iterations"`
	} `yaml:"solver"`
	Schedule struct {
		EvaluateCron string `yaml:"evaluate_cron"`
	} `yaml:"schedule"`
	Scenarios struct {
		BookFile string `yaml:"book_file"`
	} `yaml:"scenarios"`
	Database struct {
		SQLitePath string `yaml:"sqlite_path"`
	} `yaml:"database"`
	Log struct {
		Level       string `yaml:"level"`
		Environment string `yaml:"environment"`
	} `yaml:"log"`
	Proxy string `yaml:"proxy"`
}

// Load reads config from a YAML file, then applies .env and environment
// variable overrides. A missing file or .env is not an error.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	// Solver defaults go in before the file so an explicit zero (seed: 0,
	// bracket_low: 0) survives.
	cfg.setSolverDefaults()

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	// .env never overrides variables already set in the environment.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	// Environment variable overrides
	if v := os.Getenv("TELEGRAM_BOT_TOKEN"); v != "" {
		cfg.Telegram.BotToken = v
	}
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		cfg.Telegram.ChatID = v
	}
	if v := os.Getenv("HTTPS_PROXY"); v != "" {
		cfg.Proxy = v
	}
	if v := os.Getenv("SCENARIO_BOOK"); v != "" {
		cfg.Scenarios.BookFile = v
	}
	if v := os.Getenv("SQLITE_PATH"); v != "" {
		cfg.Database.SQLitePath = v
	}
	if v := os.Getenv("CRON_EVALUATE"); v != "" {
		cfg.Schedule.EvaluateCron = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("APP_ENV"); v != "" {
		cfg.Log.Environment = v
	}
	if v := os.Getenv("SOLVER_TOLERANCE"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("SOLVER_TOLERANCE: %w", err)
		}
		cfg.Solver.Tolerance = f
	}
	if v := os.Getenv("SOLVER_MAX_ITERATIONS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("SOLVER_MAX_ITERATIONS: %w", err)
		}
		cfg.Solver.MaxIterations = n
	}

	cfg.applyDefaults()
	return cfg, nil
}

func (c *Config) setSolverDefaults() {
	d := calculator.DefaultSolver()
	c.Solver.Tolerance = d.Tolerance
	c.Solver.MaxIterations = d.MaxIterations
	c.Solver.Seed = d.Seed
	c.Solver.BracketLow = d.BracketLow
	c.Solver.BracketHigh = d.BracketHigh
	c.Solver.OuterTolerance = d.OuterTolerance
	c.Solver.MaxOuterIterations = d.MaxOuterIterations
}

func (c *Config) applyDefaults() {
	if c.Schedule.EvaluateCron == "" {
		c.Schedule.EvaluateCron = "0 0 8 * * 1"
	}
	if c.Scenarios.BookFile == "" {
		c.Scenarios.BookFile = "configs/scenarios.yaml"
	}
	if c.Database.SQLitePath == "" {
		c.Database.SQLitePath = "data/returnlens.db"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Environment == "" {
		c.Log.Environment = "development"
	}
}

// Validate checks the solver settings.
func (c *Config) Validate() error {
	s := c.Solver
	if s.Tolerance <= 0 {
		return fmt.Errorf("solver.tolerance must be positive")
	}
	if s.MaxIterations <= 0 {
		return fmt.Errorf("solver.max_iterations must be positive")
	}
	if s.OuterTolerance <= 0 {
		return fmt.Errorf("solver.outer_tolerance must be positive")
	}
	if s.MaxOuterIterations <= 0 {
		return fmt.Errorf("solver.max_outer_iterations must be positive")
	}
	if s.BracketLow <= -1 {
		return fmt.Errorf("solver.bracket_low must be above -1")
	}
	if s.BracketLow >= s.BracketHigh {
		return fmt.Errorf("solver.bracket_low must be below solver.bracket_high")
	}
	if s.Seed <= s.BracketLow || s.Seed >= s.BracketHigh {
		return fmt.Errorf("solver.seed must lie inside the bracket")
	}
	return nil
}

// ValidateServe additionally checks what the long-running service needs.
func (c *Config) ValidateServe() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.Telegram.BotToken == "" {
		return fmt.Errorf("telegram.bot_token is required")
	}
	if c.Telegram.ChatID == "" {
		return fmt.Errorf("telegram.chat_id is required")
	}
	return nil
}

// SolverSettings converts the solver section for the calculator.
func (c *Config) SolverSettings() calculator.Solver {
	return calculator.Solver{
		Tolerance:          c.Solver.Tolerance,
		MaxIterations:      c.Solver.MaxIterations,
		Seed:               c.Solver.Seed,
		BracketLow:         c.Solver.BracketLow,
		BracketHigh:        c.Solver.BracketHigh,
		OuterTolerance:     c.Solver.OuterTolerance,
		MaxOuterIterations: c.Solver.MaxOuterIterations,
	}
}
