package oracle

import (
	"fmt"

	"github.com/rs/zerolog"

	"il-insurance-compute/internal/numeric"
)

// Result is the outcome of screening one price series.
//
// Accepted always reflects the per-pair deviation outcomes, even when the
// series as a whole is rejected: callers use it to see which samples passed
// the deviation screen independently of the timestamp check.
type Result struct {
	Valid    bool
	Accepted []numeric.Uint256
}

// Validator screens oracle price series for deviation spikes and broken
// time ordering before they are trusted by a claim evaluation.
type Validator struct {
	logger zerolog.Logger
}

// NewValidator constructs a price-series validator.
func NewValidator(logger zerolog.Logger) *Validator {
	return &Validator{logger: logger.With().Str("component", "oracle_validator").Logger()}
}

// Validate checks consecutive price deviations against a basis-point
// threshold and requires strictly increasing timestamps. Mismatched or
// empty inputs fail closed. Arithmetic faults during the basis-point
// scaling surface as errors rather than degrading into a wrong verdict.
func (v *Validator) Validate(prices, timestamps []numeric.Uint256, deviationThreshold numeric.Uint256) (Result, error) {
	if len(prices) != len(timestamps) || len(prices) == 0 {
		v.logger.Debug().
			Int("prices", len(prices)).
			Int("timestamps", len(timestamps)).
			Msg("序列长度不一致或为空, 整体判定无效")
		return Result{Valid: false, Accepted: []numeric.Uint256{}}, nil
	}

	valid := true
	accepted := make([]numeric.Uint256, 0, len(prices))

	for i := 1; i < len(prices); i++ {
		prev, curr := prices[i-1], prices[i]

		if prev.IsZero() {
			// Deviation from a zero base is undefined; reject the series
			// but keep scanning so Accepted stays meaningful.
			valid = false
			continue
		}

		deviation, err := deviationBP(prev, curr)
		if err != nil {
			return Result{}, fmt.Errorf("deviation at index %d: %w", i, err)
		}

		if deviation.Cmp(deviationThreshold) > 0 {
			valid = false
		} else {
			accepted = append(accepted, curr)
		}
	}

	for i := 1; i < len(timestamps); i++ {
		if timestamps[i].Cmp(timestamps[i-1]) <= 0 {
			v.logger.Debug().Int("index", i).Msg("时间戳未严格递增")
			valid = false
			break
		}
	}

	return Result{Valid: valid, Accepted: accepted}, nil
}

// deviationBP returns |curr-prev| * 10000 / prev, truncated.
func deviationBP(prev, curr numeric.Uint256) (numeric.Uint256, error) {
	var diff numeric.Uint256
	if curr.Cmp(prev) > 0 {
		diff = curr.SubSat(prev)
	} else {
		diff = prev.SubSat(curr)
	}

	scaled, err := diff.Mul(numeric.BasisPointScale)
	if err != nil {
		return numeric.Zero, err
	}
	return scaled.Div(prev)
}
