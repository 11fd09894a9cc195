package calculator

import (
	"fmt"
	"math"
	"time"

	"ReturnLens/internal/model"
)

// DaysPerYear is the average Gregorian year length used to turn day counts
// into fractional years.
const DaysPerYear = 365.25

// ToYears converts a follow-on timing into fractional years after ref.
// The result is strictly positive: an absolute date on or before ref, or a
// non-positive relative quantity, fails with ErrInvalidTiming.
func ToYears(t model.Timing, ref time.Time) (float64, error) {
	switch t.Kind {
	case model.TimingAbsolute:
		days := daysBetween(ref, t.Date)
		if days <= 0 {
			return 0, fmt.Errorf("%w: %s is not after the initial investment on %s",
				ErrInvalidTiming, t.Date.Format(time.DateOnly), ref.Format(time.DateOnly))
		}
		return days / DaysPerYear, nil
	case model.TimingRelative:
		if !(t.Quantity > 0) || math.IsInf(t.Quantity, 0) {
			return 0, fmt.Errorf("%w: relative quantity %v must be positive", ErrInvalidTiming, t.Quantity)
		}
		switch t.Unit {
		case model.UnitDays:
			return t.Quantity / DaysPerYear, nil
		case model.UnitMonths:
			return t.Quantity / 12, nil
		case model.UnitYears:
			return t.Quantity, nil
		default:
			return 0, fmt.Errorf("%w: unknown time unit %q", ErrInvalidTiming, t.Unit)
		}
	default:
		return 0, fmt.Errorf("%w: unknown timing kind %q", ErrInvalidTiming, t.Kind)
	}
}

// daysBetween counts calendar days from a to b, ignoring the time of day and
// the location of either value.
func daysBetween(a, b time.Time) float64 {
	da := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	db := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return math.Round(db.Sub(da).Hours() / 24)
}
