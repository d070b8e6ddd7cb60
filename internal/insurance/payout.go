package insurance

import (
	"fmt"

	"github.com/rs/zerolog"

	"il-insurance-compute/internal/numeric"
)

// PayoutCalculator converts an impermanent-loss figure into the amount the
// policy actually pays: deductible first, then the coverage ratio, then
// the coverage cap.
type PayoutCalculator struct {
	logger zerolog.Logger
}

// NewPayoutCalculator constructs a payout calculator.
func NewPayoutCalculator(logger zerolog.Logger) *PayoutCalculator {
	return &PayoutCalculator{logger: logger.With().Str("component", "payout_calculator").Logger()}
}

// Compute returns min((loss - deductible) * coverageRatio / 10000,
// coverageAmount), or zero when the loss does not clear the deductible.
// The policy ID is carried for audit logging only.
func (c *PayoutCalculator) Compute(policy PolicyParameters, impermanentLoss numeric.Uint256) (numeric.Uint256, error) {
	if impermanentLoss.Cmp(policy.Deductible) <= 0 {
		c.logger.Debug().
			Str("policy_id", policy.PolicyID.String()).
			Str("impermanent_loss", impermanentLoss.String()).
			Msg("loss within deductible, no payout")
		return numeric.Zero, nil
	}

	coveredLoss := impermanentLoss.SubSat(policy.Deductible)

	payout, err := scaleBP(coveredLoss, policy.CoverageRatio)
	if err != nil {
		return numeric.Zero, fmt.Errorf("apply coverage ratio: %w", err)
	}

	if payout.Cmp(policy.CoverageAmount) > 0 {
		payout = policy.CoverageAmount
	}

	c.logger.Debug().
		Str("policy_id", policy.PolicyID.String()).
		Str("covered_loss", coveredLoss.String()).
		Str("payout", payout.String()).
		Msg("payout computed")

	return payout, nil
}
