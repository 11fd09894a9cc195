package recorder

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"ReturnLens/internal/calculator"
	"ReturnLens/internal/logger"
	"ReturnLens/internal/model"
)

// SQLiteRecorder persists calculation history to a SQLite database.
type SQLiteRecorder struct {
	db  *sql.DB
	mu  sync.Mutex
	log *logger.Logger
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string, log *logger.Logger) (*SQLiteRecorder, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL lets dashboards read while the service writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db, log: log}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Infow("sqlite recorder opened", "path", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS calculations (
			id          TEXT PRIMARY KEY,
			timestamp   INTEGER NOT NULL,
			scenario    TEXT,
			trigger_type TEXT,
			mode        TEXT,
			initial     REAL,
			outcome     REAL,
			rate_input  REAL,
			years       REAL,
			follow_ons  INTEGER,
			rate        REAL,
			amount      REAL,
			method      TEXT,
			iterations  INTEGER,
			error_kind  TEXT,
			error       TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_calculations_ts ON calculations(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_calculations_scenario ON calculations(scenario, timestamp)`,

		`CREATE TABLE IF NOT EXISTS growth_points (
			calculation_id TEXT NOT NULL,
			month          INTEGER NOT NULL,
			value          REAL,
			PRIMARY KEY (calculation_id, month)
		)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordCalculation(rec *CalculationRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.At.IsZero() {
		rec.At = time.Now()
	}

	var (
		rate, amount sql.NullFloat64
		method       string
		iterations   int
		series       []model.GrowthPoint
		errText      string
	)
	if res := rec.Result; res != nil {
		if res.Rate != nil {
			rate = sql.NullFloat64{Float64: *res.Rate, Valid: true}
		}
		if res.Amount != nil {
			amount = sql.NullFloat64{Float64: *res.Amount, Valid: true}
		}
		method, iterations, series = res.Method, res.Iterations, res.GrowthSeries
	}
	if rec.Err != nil {
		errText = rec.Err.Error()
	}
	req := rec.Request

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`INSERT INTO calculations
		(id, timestamp, scenario, trigger_type, mode, initial, outcome, rate_input, years, follow_ons,
		 rate, amount, method, iterations, error_kind, error)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`,
		rec.ID, rec.At.Unix(), rec.Scenario, rec.Trigger, string(req.Mode),
		req.Initial, req.Outcome, req.Rate, req.Years, len(req.FollowOns),
		rate, amount, method, iterations, calculator.Kind(rec.Err), errText,
	); err != nil {
		return fmt.Errorf("insert calculation: %w", err)
	}

	if len(series) > 0 {
		stmt, err := tx.Prepare(`INSERT INTO growth_points (calculation_id, month, value) VALUES (?,?,?)`)
		if err != nil {
			return fmt.Errorf("prepare growth points: %w", err)
		}
		defer stmt.Close()
		for _, p := range series {
			if _, err := stmt.Exec(rec.ID, p.Month, p.Value); err != nil {
				return fmt.Errorf("insert growth point %d: %w", p.Month, err)
			}
		}
	}
	return tx.Commit()
}

// History returns the most recent calculations, newest first. An empty
// scenario matches all of them.
func (r *SQLiteRecorder) History(scenario string, limit int) ([]Summary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.Query(`SELECT id, timestamp, scenario, trigger_type, mode, rate, amount, method, error_kind, error
		FROM calculations
		WHERE ? = '' OR scenario = ?
		ORDER BY timestamp DESC, rowid DESC
		LIMIT ?`, scenario, scenario, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var out []Summary
	for rows.Next() {
		var (
			s            Summary
			ts           int64
			mode         string
			rate, amount sql.NullFloat64
		)
		if err := rows.Scan(&s.ID, &ts, &s.Scenario, &s.Trigger, &mode, &rate, &amount,
			&s.Method, &s.ErrorKind, &s.Error); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		s.At = time.Unix(ts, 0)
		s.Mode = model.CalculationMode(mode)
		if rate.Valid {
			s.Rate = &rate.Float64
		}
		if amount.Valid {
			s.Amount = &amount.Float64
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// GrowthSeries returns the stored series of a calculation in month order.
func (r *SQLiteRecorder) GrowthSeries(id string) ([]model.GrowthPoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	rows, err := r.db.Query(`SELECT month, value FROM growth_points WHERE calculation_id = ? ORDER BY month`, id)
	if err != nil {
		return nil, fmt.Errorf("query growth points: %w", err)
	}
	defer rows.Close()

	var out []model.GrowthPoint
	for rows.Next() {
		var p model.GrowthPoint
		if err := rows.Scan(&p.Month, &p.Value); err != nil {
			return nil, fmt.Errorf("scan growth point: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *SQLiteRecorder) Close() error {
	r.log.Info("closing sqlite recorder")
	return r.db.Close()
}
