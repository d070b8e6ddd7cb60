package rpcserver

import (
	"context"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/rs/zerolog"

	"il-insurance-compute/internal/attestation"
	"il-insurance-compute/internal/engine"
	"il-insurance-compute/internal/insurance"
	"il-insurance-compute/internal/numeric"
	"il-insurance-compute/internal/oracle"
)

// ComputeAPI exposes the deterministic core over JSON-RPC. Registered
// under the "compute" namespace, so clients call compute_aggregateAttestations,
// compute_calculateImpermanentLoss, compute_calculatePayout,
// compute_validateOraclePrices, compute_verifyEncryptedAttestation and
// compute_processAttestationRequest.
type ComputeAPI struct {
	oracle     *oracle.Validator
	aggregator *attestation.Aggregator
	verifier   *attestation.Verifier
	losses     *insurance.LossCalculator
	payouts    *insurance.PayoutCalculator
	engine     *engine.Engine
	logger     zerolog.Logger
}

// NewComputeAPI wires the core components behind the RPC surface.
func NewComputeAPI(v *oracle.Validator, agg *attestation.Aggregator, ver *attestation.Verifier, losses *insurance.LossCalculator, payouts *insurance.PayoutCalculator, eng *engine.Engine, logger zerolog.Logger) *ComputeAPI {
	return &ComputeAPI{
		oracle:     v,
		aggregator: agg,
		verifier:   ver,
		losses:     losses,
		payouts:    payouts,
		engine:     eng,
		logger:     logger.With().Str("component", "compute_api").Logger(),
	}
}

// AggregationReply mirrors attestation.AggregationResult on the wire.
type AggregationReply struct {
	AggregatedValue *hexutil.Big `json:"aggregatedValue"`
	QuorumMet       bool         `json:"quorumMet"`
}

// LossReply mirrors insurance.LossResult on the wire.
type LossReply struct {
	ImpermanentLoss *hexutil.Big `json:"impermanentLoss"`
	HasLoss         bool         `json:"hasLoss"`
}

// PayoutReply carries a computed payout.
type PayoutReply struct {
	Payout *hexutil.Big `json:"payout"`
}

// OracleValidationReply mirrors oracle.Result on the wire.
type OracleValidationReply struct {
	IsValid        bool           `json:"isValid"`
	AcceptedPrices []*hexutil.Big `json:"acceptedPrices"`
}

// VerificationReply mirrors attestation.VerifyResult on the wire.
type VerificationReply struct {
	IsValid       bool         `json:"isValid"`
	ComputedValue *hexutil.Big `json:"computedValue"`
}

// ClaimRequestArgs is the flat claim-evaluation request.
type ClaimRequestArgs struct {
	PolicyID            *hexutil.Big `json:"policyId"`
	InitialTokenAAmount *hexutil.Big `json:"initialTokenAAmount"`
	InitialTokenBAmount *hexutil.Big `json:"initialTokenBAmount"`
	CurrentTokenAPrice  *hexutil.Big `json:"currentTokenAPrice"`
	CurrentTokenBPrice  *hexutil.Big `json:"currentTokenBPrice"`
	InitialTokenAPrice  *hexutil.Big `json:"initialTokenAPrice"`
	InitialTokenBPrice  *hexutil.Big `json:"initialTokenBPrice"`
	PoolFeeRate         *hexutil.Big `json:"poolFeeRate"`
	CoverageAmount      *hexutil.Big `json:"coverageAmount"`
	Deductible          *hexutil.Big `json:"deductible"`
	CoverageRatio       *hexutil.Big `json:"coverageRatio"`
}

// ClaimReply mirrors engine.ClaimResult on the wire.
type ClaimReply struct {
	ImpermanentLoss *hexutil.Big `json:"impermanentLoss"`
	HasLoss         bool         `json:"hasLoss"`
	Payout          *hexutil.Big `json:"payout"`
	IsValid         bool         `json:"isValid"`
}

// AggregateAttestations quorum-aggregates per-operator values.
func (api *ComputeAPI) AggregateAttestations(ctx context.Context, attestations []*hexutil.Big, signatures, operatorPublicKeys []hexutil.Bytes, threshold *hexutil.Big) (*AggregationReply, error) {
	values, err := fromHexBigs("attestations", attestations)
	if err != nil {
		return nil, err
	}
	thr, err := fromHexBig("threshold", threshold)
	if err != nil {
		return nil, err
	}

	res, err := api.aggregator.Aggregate(ctx, values, rawBytes(signatures), rawBytes(operatorPublicKeys), thr)
	if err != nil {
		return nil, err
	}
	return &AggregationReply{AggregatedValue: toHexBig(res.AggregatedValue), QuorumMet: res.QuorumMet}, nil
}

// CalculateImpermanentLoss computes IL for one pool snapshot.
func (api *ComputeAPI) CalculateImpermanentLoss(initialTokenAAmount, initialTokenBAmount, currentTokenAPrice, currentTokenBPrice, initialTokenAPrice, initialTokenBPrice, poolFeeRate *hexutil.Big) (*LossReply, error) {
	snap, err := poolSnapshot(&ClaimRequestArgs{
		InitialTokenAAmount: initialTokenAAmount,
		InitialTokenBAmount: initialTokenBAmount,
		CurrentTokenAPrice:  currentTokenAPrice,
		CurrentTokenBPrice:  currentTokenBPrice,
		InitialTokenAPrice:  initialTokenAPrice,
		InitialTokenBPrice:  initialTokenBPrice,
		PoolFeeRate:         poolFeeRate,
	})
	if err != nil {
		return nil, err
	}

	res, err := api.losses.Compute(snap)
	if err != nil {
		return nil, err
	}
	return &LossReply{ImpermanentLoss: toHexBig(res.ImpermanentLoss), HasLoss: res.HasLoss}, nil
}

// CalculatePayout converts an IL figure into a payout.
func (api *ComputeAPI) CalculatePayout(policyID, impermanentLoss, coverageAmount, deductible, coverageRatio *hexutil.Big) (*PayoutReply, error) {
	policy, err := policyParameters(&ClaimRequestArgs{
		PolicyID:       policyID,
		CoverageAmount: coverageAmount,
		Deductible:     deductible,
		CoverageRatio:  coverageRatio,
	})
	if err != nil {
		return nil, err
	}
	loss, err := fromHexBig("impermanentLoss", impermanentLoss)
	if err != nil {
		return nil, err
	}

	payout, err := api.payouts.Compute(policy, loss)
	if err != nil {
		return nil, err
	}
	return &PayoutReply{Payout: toHexBig(payout)}, nil
}

// ValidateOraclePrices screens a price series.
func (api *ComputeAPI) ValidateOraclePrices(priceData, timestamps []*hexutil.Big, deviationThreshold *hexutil.Big) (*OracleValidationReply, error) {
	prices, err := fromHexBigs("priceData", priceData)
	if err != nil {
		return nil, err
	}
	stamps, err := fromHexBigs("timestamps", timestamps)
	if err != nil {
		return nil, err
	}
	threshold, err := fromHexBig("deviationThreshold", deviationThreshold)
	if err != nil {
		return nil, err
	}

	res, err := api.oracle.Validate(prices, stamps, threshold)
	if err != nil {
		return nil, err
	}
	return &OracleValidationReply{IsValid: res.Valid, AcceptedPrices: toHexBigs(res.Accepted)}, nil
}

// VerifyEncryptedAttestation checks an encrypted attestation against its proof.
func (api *ComputeAPI) VerifyEncryptedAttestation(ctx context.Context, encryptedAttestation, proof hexutil.Bytes, publicInputs []*hexutil.Big) (*VerificationReply, error) {
	inputs, err := fromHexBigs("publicInputs", publicInputs)
	if err != nil {
		return nil, err
	}

	res, err := api.verifier.Verify(ctx, encryptedAttestation, proof, inputs)
	if err != nil {
		return nil, err
	}
	return &VerificationReply{IsValid: res.Valid, ComputedValue: toHexBig(res.ComputedValue)}, nil
}

// ProcessAttestationRequest runs the full claim evaluation facade.
func (api *ComputeAPI) ProcessAttestationRequest(ctx context.Context, args ClaimRequestArgs) (*ClaimReply, error) {
	policy, err := policyParameters(&args)
	if err != nil {
		return nil, err
	}
	pool, err := poolSnapshot(&args)
	if err != nil {
		return nil, err
	}

	res, err := api.engine.ProcessClaim(ctx, engine.ClaimRequest{Policy: policy, Pool: pool})
	if err != nil {
		return nil, err
	}
	return &ClaimReply{
		ImpermanentLoss: toHexBig(res.ImpermanentLoss),
		HasLoss:         res.HasLoss,
		Payout:          toHexBig(res.Payout),
		IsValid:         res.IsValid,
	}, nil
}

func policyParameters(args *ClaimRequestArgs) (insurance.PolicyParameters, error) {
	var (
		p   insurance.PolicyParameters
		err error
	)
	if p.PolicyID, err = fromHexBig("policyId", args.PolicyID); err != nil {
		return p, err
	}
	if p.CoverageAmount, err = fromHexBig("coverageAmount", args.CoverageAmount); err != nil {
		return p, err
	}
	if p.Deductible, err = fromHexBig("deductible", args.Deductible); err != nil {
		return p, err
	}
	if p.CoverageRatio, err = fromHexBig("coverageRatio", args.CoverageRatio); err != nil {
		return p, err
	}
	return p, nil
}

func poolSnapshot(args *ClaimRequestArgs) (insurance.PoolSnapshot, error) {
	var (
		s   insurance.PoolSnapshot
		err error
	)
	if s.InitialTokenAAmount, err = fromHexBig("initialTokenAAmount", args.InitialTokenAAmount); err != nil {
		return s, err
	}
	if s.InitialTokenBAmount, err = fromHexBig("initialTokenBAmount", args.InitialTokenBAmount); err != nil {
		return s, err
	}
	if s.CurrentTokenAPrice, err = fromHexBig("currentTokenAPrice", args.CurrentTokenAPrice); err != nil {
		return s, err
	}
	if s.CurrentTokenBPrice, err = fromHexBig("currentTokenBPrice", args.CurrentTokenBPrice); err != nil {
		return s, err
	}
	if s.InitialTokenAPrice, err = fromHexBig("initialTokenAPrice", args.InitialTokenAPrice); err != nil {
		return s, err
	}
	if s.InitialTokenBPrice, err = fromHexBig("initialTokenBPrice", args.InitialTokenBPrice); err != nil {
		return s, err
	}
	if s.PoolFeeRate, err = fromHexBig("poolFeeRate", args.PoolFeeRate); err != nil {
		return s, err
	}
	return s, nil
}

// fromHexBig treats a missing param as zero: the fail-closed semantics of
// the core make zero the safe interpretation of an omitted field.
func fromHexBig(name string, v *hexutil.Big) (numeric.Uint256, error) {
	if v == nil {
		return numeric.Zero, nil
	}
	u, err := numeric.FromBig((*big.Int)(v))
	if err != nil {
		return numeric.Zero, fmt.Errorf("param %s: %w", name, err)
	}
	return u, nil
}

func fromHexBigs(name string, vs []*hexutil.Big) ([]numeric.Uint256, error) {
	out := make([]numeric.Uint256, len(vs))
	for i, v := range vs {
		u, err := fromHexBig(fmt.Sprintf("%s[%d]", name, i), v)
		if err != nil {
			return nil, err
		}
		out[i] = u
	}
	return out, nil
}

func toHexBig(v numeric.Uint256) *hexutil.Big {
	return (*hexutil.Big)(v.Big())
}

func toHexBigs(vs []numeric.Uint256) []*hexutil.Big {
	out := make([]*hexutil.Big, len(vs))
	for i, v := range vs {
		out[i] = toHexBig(v)
	}
	return out
}

func rawBytes(vs []hexutil.Bytes) [][]byte {
	out := make([][]byte, len(vs))
	for i, v := range vs {
		out[i] = v
	}
	return out
}
