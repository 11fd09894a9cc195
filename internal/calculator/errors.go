package calculator

import (
	"errors"
	"fmt"
)

// Calculation failures. Every error returned by this package wraps exactly
// one of these, so callers can classify it with errors.Is.
var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrInvalidTiming  = errors.New("invalid timing")
	ErrNoSignChange   = errors.New("cash flows have no sign change")
	ErrConvergence    = errors.New("solver did not converge")
	ErrDivisionByZero = errors.New("division by zero")

	// ErrInvalidFeeRate also matches ErrInvalidInput.
	ErrInvalidFeeRate = fmt.Errorf("%w: fee rate outside [0,1]", ErrInvalidInput)
)

// Kind returns a short stable name for the class of err, or "" when err does
// not come from this package.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidTiming):
		return "invalid_timing"
	case errors.Is(err, ErrInvalidFeeRate):
		return "invalid_fee_rate"
	case errors.Is(err, ErrInvalidInput):
		return "invalid_input"
	case errors.Is(err, ErrNoSignChange):
		return "no_sign_change"
	case errors.Is(err, ErrConvergence):
		return "convergence"
	case errors.Is(err, ErrDivisionByZero):
		return "division_by_zero"
	default:
		return ""
	}
}

func invalidInput(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}
