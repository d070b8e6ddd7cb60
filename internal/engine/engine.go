package engine

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"il-insurance-compute/internal/insurance"
	"il-insurance-compute/internal/numeric"
)

// ClaimRequest bundles the policy and pool state for one claim evaluation.
type ClaimRequest struct {
	Policy insurance.PolicyParameters `json:"policy"`
	Pool   insurance.PoolSnapshot     `json:"pool"`
}

// ClaimResult is the final output of a claim evaluation.
type ClaimResult struct {
	ImpermanentLoss numeric.Uint256 `json:"impermanentLoss"`
	HasLoss         bool            `json:"hasLoss"`
	Payout          numeric.Uint256 `json:"payout"`
	IsValid         bool            `json:"isValid"`
}

// Engine is the facade running a full claim evaluation: impermanent loss
// first, then the payout derived from it.
//
// IsValid is true by construction. Gating a claim on oracle and
// attestation inputs belongs to the caller, which must run the validator,
// aggregator and proof verifier before invoking the facade.
type Engine struct {
	losses  *insurance.LossCalculator
	payouts *insurance.PayoutCalculator
	logger  zerolog.Logger
}

// New constructs the compute engine.
func New(losses *insurance.LossCalculator, payouts *insurance.PayoutCalculator, logger zerolog.Logger) *Engine {
	return &Engine{
		losses:  losses,
		payouts: payouts,
		logger:  logger.With().Str("component", "compute_engine").Logger(),
	}
}

// ProcessClaim evaluates one claim request.
func (e *Engine) ProcessClaim(ctx context.Context, req ClaimRequest) (ClaimResult, error) {
	loss, err := e.losses.Compute(req.Pool)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("impermanent loss: %w", err)
	}

	payout, err := e.payouts.Compute(req.Policy, loss.ImpermanentLoss)
	if err != nil {
		return ClaimResult{}, fmt.Errorf("payout: %w", err)
	}

	e.logger.Info().
		Str("policy_id", req.Policy.PolicyID.String()).
		Str("impermanent_loss", loss.ImpermanentLoss.String()).
		Bool("has_loss", loss.HasLoss).
		Str("payout", payout.String()).
		Msg("claim evaluated")

	return ClaimResult{
		ImpermanentLoss: loss.ImpermanentLoss,
		HasLoss:         loss.HasLoss,
		Payout:          payout,
		IsValid:         true,
	}, nil
}
