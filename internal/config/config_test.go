package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func TestLoad_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	cfg, err := Load("missing.yaml")
	require.NoError(t, err)

	assert.Equal(t, 1e-6, cfg.Solver.Tolerance)
	assert.Equal(t, 100, cfg.Solver.MaxIterations)
	assert.Equal(t, 0.1, cfg.Solver.Seed)
	assert.Equal(t, -0.99, cfg.Solver.BracketLow)
	assert.Equal(t, 10.0, cfg.Solver.BracketHigh)
	assert.Equal(t, 20, cfg.Solver.MaxOuterIterations)
	assert.Equal(t, "0 0 8 * * 1", cfg.Schedule.EvaluateCron)
	assert.Equal(t, "configs/scenarios.yaml", cfg.Scenarios.BookFile)
	assert.Equal(t, "data/returnlens.db", cfg.Database.SQLitePath)
	assert.Equal(t, "info", cfg.Log.Level)
	require.NoError(t, cfg.Validate())
	assert.Error(t, cfg.ValidateServe())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "config.yaml", `
telegram:
  bot_token: file-token
  chat_id: "42"
solver:
  tolerance: 1e-8
  max_iterations: 50
  seed: 0.05
scenarios:
  book_file: book.yaml
`)
	t.Setenv("TELEGRAM_BOT_TOKEN", "env-token")
	t.Setenv("SOLVER_MAX_ITERATIONS", "75")
	t.Setenv("SQLITE_PATH", "/tmp/x.db")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "env-token", cfg.Telegram.BotToken)
	assert.Equal(t, "42", cfg.Telegram.ChatID)
	assert.Equal(t, 1e-8, cfg.Solver.Tolerance)
	assert.Equal(t, 75, cfg.Solver.MaxIterations)
	assert.Equal(t, "book.yaml", cfg.Scenarios.BookFile)
	assert.Equal(t, "/tmp/x.db", cfg.Database.SQLitePath)
	require.NoError(t, cfg.ValidateServe())

	sv := cfg.SolverSettings()
	assert.Equal(t, 1e-8, sv.Tolerance)
	assert.Equal(t, 75, sv.MaxIterations)
	assert.Equal(t, 0.05, sv.Seed)
}

func TestLoad_ExplicitZeroSolverValues(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	path := writeFile(t, dir, "config.yaml", `
solver:
  seed: 0
  bracket_low: -0.5
`)
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Solver.Seed)
	assert.Equal(t, -0.5, cfg.Solver.BracketLow)
	assert.Equal(t, 100, cfg.Solver.MaxIterations)
	require.NoError(t, cfg.Validate())

	path = writeFile(t, dir, "floor.yaml", "solver:\n  bracket_low: 0\n")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Equal(t, 0.0, cfg.Solver.BracketLow)
	assert.Equal(t, 0.1, cfg.Solver.Seed)
	require.NoError(t, cfg.Validate())

	path = writeFile(t, dir, "zero.yaml", "solver:\n  tolerance: 0\n")
	cfg, err = Load(path)
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	writeFile(t, dir, ".env", "LOG_LEVEL=debug\n")
	t.Setenv("LOG_LEVEL", "")
	os.Unsetenv("LOG_LEVEL")

	cfg, err := Load("missing.yaml")
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_BadValues(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	_, err := Load(writeFile(t, dir, "bad.yaml", "solver: [not, a, map]"))
	assert.Error(t, err)

	t.Setenv("SOLVER_TOLERANCE", "tiny")
	_, err = Load("missing.yaml")
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	chdir(t, t.TempDir())
	base, err := Load("missing.yaml")
	require.NoError(t, err)

	for name, mutate := range map[string]func(*Config){
		"tolerance":       func(c *Config) { c.Solver.Tolerance = -1 },
		"iterations":      func(c *Config) { c.Solver.MaxIterations = -5 },
		"outer":           func(c *Config) { c.Solver.MaxOuterIterations = -1 },
		"bracket floor":   func(c *Config) { c.Solver.BracketLow = -1 },
		"bracket order":   func(c *Config) { c.Solver.BracketHigh = -0.995 },
		"seed outside":    func(c *Config) { c.Solver.Seed = 20 },
		"outer tolerance": func(c *Config) { c.Solver.OuterTolerance = -1e-3 },
	} {
		t.Run(name, func(t *testing.T) {
			c := *base
			mutate(&c)
			assert.Error(t, c.Validate())
		})
	}
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains: it changes
// the working directory and restores the previous one when the test ends.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
