package attestation

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"il-insurance-compute/internal/numeric"
)

// AggregationResult is the quorum-checked consensus over operator values.
type AggregationResult struct {
	AggregatedValue numeric.Uint256 `json:"aggregatedValue"`
	QuorumMet       bool            `json:"quorumMet"`
}

// Aggregator folds per-operator attested values into a single consensus
// value once enough of them pass the validity screen.
type Aggregator struct {
	signatures SignatureVerifier
	logger     zerolog.Logger
}

// NewAggregator constructs an aggregator delegating signature checks to
// the given verifier.
func NewAggregator(signatures SignatureVerifier, logger zerolog.Logger) *Aggregator {
	return &Aggregator{
		signatures: signatures,
		logger:     logger.With().Str("component", "attestation_aggregator").Logger(),
	}
}

// Aggregate returns the truncated mean of the valid values and whether the
// quorum threshold was reached. A value counts as valid only when it is
// non-zero, its signature and operator key are non-empty, and the wired
// SignatureVerifier accepts the triple.
//
// Mismatched input lengths and below-threshold submission counts fail
// closed to (0, false). When quorum is missed the aggregate resets to zero
// regardless of any partial sum.
func (a *Aggregator) Aggregate(ctx context.Context, values []numeric.Uint256, signatures, operatorKeys [][]byte, threshold numeric.Uint256) (AggregationResult, error) {
	if len(values) != len(signatures) || len(signatures) != len(operatorKeys) {
		a.logger.Debug().
			Int("values", len(values)).
			Int("signatures", len(signatures)).
			Int("operator_keys", len(operatorKeys)).
			Msg("input sequences differ in length, failing closed")
		return AggregationResult{}, nil
	}

	quorum, err := threshold.Uint64()
	if err != nil {
		// A threshold beyond 64 bits can never be met by a submission
		// count; treat it as an unmeetable quorum, not a fault.
		a.logger.Warn().Str("threshold", threshold.String()).Msg("quorum threshold exceeds 64 bits, unmeetable")
		return AggregationResult{}, nil
	}

	if uint64(len(values)) < quorum {
		return AggregationResult{}, nil
	}

	sum := numeric.Zero
	var validCount uint64

	for i, value := range values {
		if value.IsZero() || len(signatures[i]) == 0 || len(operatorKeys[i]) == 0 {
			continue
		}

		ok, err := a.signatures.VerifySignature(ctx, value, signatures[i], operatorKeys[i])
		if err != nil {
			return AggregationResult{}, fmt.Errorf("verify signature %d: %w", i, err)
		}
		if !ok {
			a.logger.Debug().Int("index", i).Msg("signature rejected, attestation discarded")
			continue
		}

		sum, err = sum.Add(value)
		if err != nil {
			return AggregationResult{}, fmt.Errorf("sum attestation %d: %w", i, err)
		}
		validCount++
	}

	quorumMet := validCount >= quorum

	aggregated := numeric.Zero
	if quorumMet && validCount > 0 {
		if aggregated, err = sum.Div(numeric.FromUint64(validCount)); err != nil {
			return AggregationResult{}, fmt.Errorf("mean of %d attestations: %w", validCount, err)
		}
	}

	a.logger.Debug().
		Uint64("valid", validCount).
		Uint64("quorum", quorum).
		Bool("quorum_met", quorumMet).
		Msg("attestations aggregated")

	return AggregationResult{AggregatedValue: aggregated, QuorumMet: quorumMet}, nil
}
