package recorder

import "ReturnLens/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCalculation(_ *CalculationRecord) error { return nil }
func (n *NoopRecorder) History(_ string, _ int) ([]Summary, error) { return nil, nil }
func (n *NoopRecorder) GrowthSeries(_ string) ([]model.GrowthPoint, error) { return nil, nil }
func (n *NoopRecorder) Close() error { return nil }
