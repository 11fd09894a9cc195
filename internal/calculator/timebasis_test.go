package calculator

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ReturnLens/internal/model"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestToYears_Relative(t *testing.T) {
	ref := date(2024, 1, 1)
	tests := []struct {
		name   string
		timing model.Timing
		want   float64
	}{
		{"days", model.RelativeTiming(730.5, model.UnitDays), 2},
		{"months", model.RelativeTiming(18, model.UnitMonths), 1.5},
		{"years", model.RelativeTiming(3, model.UnitYears), 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ToYears(tt.timing, ref)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestToYears_Absolute(t *testing.T) {
	got, err := ToYears(model.AbsoluteTiming(date(2025, 1, 1)), date(2024, 1, 1))
	require.NoError(t, err)
	assert.InDelta(t, 366/DaysPerYear, got, 1e-12)
}

func TestToYears_IgnoresTimeOfDay(t *testing.T) {
	ref := time.Date(2024, 3, 1, 23, 30, 0, 0, time.UTC)
	at := time.Date(2024, 3, 2, 0, 15, 0, 0, time.UTC)
	got, err := ToYears(model.AbsoluteTiming(at), ref)
	require.NoError(t, err)
	assert.InDelta(t, 1/DaysPerYear, got, 1e-12)
}

func TestToYears_InvalidTiming(t *testing.T) {
	ref := date(2024, 6, 15)
	tests := []struct {
		name   string
		timing model.Timing
	}{
		{"same day", model.AbsoluteTiming(ref)},
		{"before reference", model.AbsoluteTiming(date(2024, 1, 1))},
		{"zero quantity", model.RelativeTiming(0, model.UnitMonths)},
		{"negative quantity", model.RelativeTiming(-2, model.UnitYears)},
		{"unknown unit", model.RelativeTiming(1, "WEEKS")},
		{"unknown kind", model.Timing{Kind: "SOMETIME"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ToYears(tt.timing, ref)
			assert.ErrorIs(t, err, ErrInvalidTiming)
		})
	}
}
