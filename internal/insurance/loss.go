package insurance

import (
	"fmt"

	"github.com/rs/zerolog"

	"il-insurance-compute/internal/numeric"
)

// LossCalculator computes the integer-precision impermanent loss of a
// constant-product LP position against the hold counterfactual.
//
// The value-retention factor 2*sqrt(r)/(1+r) is evaluated at integer
// precision. The truncation is coarse but deterministic; every operator
// must reproduce the same figure bit for bit, so no floating point.
type LossCalculator struct {
	logger zerolog.Logger
}

// NewLossCalculator constructs a loss calculator.
func NewLossCalculator(logger zerolog.Logger) *LossCalculator {
	return &LossCalculator{logger: logger.With().Str("component", "loss_calculator").Logger()}
}

// Compute returns the impermanent loss for the given pool snapshot. A zero
// entry price makes the price ratio undefined and fails closed to (0,
// false). Arithmetic faults surface as errors.
func (c *LossCalculator) Compute(snap PoolSnapshot) (LossResult, error) {
	if snap.InitialTokenAPrice.IsZero() || snap.InitialTokenBPrice.IsZero() {
		c.logger.Debug().Msg("zero entry price, loss undefined; failing closed")
		return LossResult{}, nil
	}

	priceRatio, err := crossRatio(snap)
	if err != nil {
		return LossResult{}, fmt.Errorf("price ratio: %w", err)
	}

	initialValue, err := portfolioValue(snap.InitialTokenAAmount, snap.InitialTokenAPrice, snap.InitialTokenBAmount, snap.InitialTokenBPrice)
	if err != nil {
		return LossResult{}, fmt.Errorf("initial value: %w", err)
	}

	holdValue, err := portfolioValue(snap.InitialTokenAAmount, snap.CurrentTokenAPrice, snap.InitialTokenBAmount, snap.CurrentTokenBPrice)
	if err != nil {
		return LossResult{}, fmt.Errorf("hold value: %w", err)
	}

	multiplier, err := lpMultiplier(priceRatio)
	if err != nil {
		return LossResult{}, fmt.Errorf("lp multiplier: %w", err)
	}

	lpValue, err := initialValue.Mul(multiplier)
	if err != nil {
		return LossResult{}, fmt.Errorf("lp value: %w", err)
	}

	feesEarned, err := scaleBP(initialValue, snap.PoolFeeRate)
	if err != nil {
		return LossResult{}, fmt.Errorf("fees earned: %w", err)
	}

	totalLPValue, err := lpValue.Add(feesEarned)
	if err != nil {
		return LossResult{}, fmt.Errorf("total lp value: %w", err)
	}

	loss := holdValue.SubSat(totalLPValue)

	c.logger.Debug().
		Str("price_ratio", priceRatio.String()).
		Str("hold_value", holdValue.String()).
		Str("total_lp_value", totalLPValue.String()).
		Str("impermanent_loss", loss.String()).
		Msg("impermanent loss computed")

	return LossResult{ImpermanentLoss: loss, HasLoss: !loss.IsZero()}, nil
}

// crossRatio is (currentA * initialB) / (initialA * currentB).
func crossRatio(snap PoolSnapshot) (numeric.Uint256, error) {
	num, err := snap.CurrentTokenAPrice.Mul(snap.InitialTokenBPrice)
	if err != nil {
		return numeric.Zero, err
	}
	den, err := snap.InitialTokenAPrice.Mul(snap.CurrentTokenBPrice)
	if err != nil {
		return numeric.Zero, err
	}
	return num.Div(den)
}

// portfolioValue is aAmt*aPrice + bAmt*bPrice.
func portfolioValue(aAmt, aPrice, bAmt, bPrice numeric.Uint256) (numeric.Uint256, error) {
	av, err := aAmt.Mul(aPrice)
	if err != nil {
		return numeric.Zero, err
	}
	bv, err := bAmt.Mul(bPrice)
	if err != nil {
		return numeric.Zero, err
	}
	return av.Add(bv)
}

// lpMultiplier is 2*isqrt(r) / (1+r), the constant-product value-retention
// factor relative to holding.
func lpMultiplier(ratio numeric.Uint256) (numeric.Uint256, error) {
	num, err := numeric.FromUint64(2).Mul(numeric.Isqrt(ratio))
	if err != nil {
		return numeric.Zero, err
	}
	den, err := numeric.FromUint64(1).Add(ratio)
	if err != nil {
		return numeric.Zero, err
	}
	return num.Div(den)
}

// scaleBP is v * rate / 10000.
func scaleBP(v, rate numeric.Uint256) (numeric.Uint256, error) {
	scaled, err := v.Mul(rate)
	if err != nil {
		return numeric.Zero, err
	}
	return scaled.Div(numeric.BasisPointScale)
}
