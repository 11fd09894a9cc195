package recorder

import (
	"time"

	"ReturnLens/internal/model"
)

// Triggers say what caused a calculation.
const (
	TriggerCLI       = "CLI"
	TriggerScheduled = "SCHEDULED"
	TriggerCommand   = "COMMAND"
)

// CalculationRecord holds one calculation and its outcome. Result is nil when
// Err is set.
type CalculationRecord struct {
	ID       string // assigned on record when empty
	At       time.Time
	Scenario string
	Trigger  string
	Request  model.CalculationRequest
	Result   *model.CalculationResult
	Err      error
}

// Summary is a stored calculation without its growth series.
type Summary struct {
	ID        string
	At        time.Time
	Scenario  string
	Trigger   string
	Mode      model.CalculationMode
	Rate      *float64
	Amount    *float64
	Method    string
	ErrorKind string
	Error     string
}

// Recorder persists calculation history.
type Recorder interface {
	RecordCalculation(rec *CalculationRecord) error
	History(scenario string, limit int) ([]Summary, error)
	GrowthSeries(id string) ([]model.GrowthPoint, error)
	Close() error
}
