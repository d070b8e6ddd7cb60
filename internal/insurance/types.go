package insurance

import "il-insurance-compute/internal/numeric"

// PolicyParameters describe one coverage contract. Immutable for the
// duration of a claim evaluation; nothing here is persisted by this node.
type PolicyParameters struct {
	PolicyID       numeric.Uint256 `json:"policyId"`
	CoverageAmount numeric.Uint256 `json:"coverageAmount"`
	Deductible     numeric.Uint256 `json:"deductible"`
	// CoverageRatio is in basis points. Values above 10000 are legal and
	// amplify the covered loss; the coverage cap still bounds the payout.
	CoverageRatio numeric.Uint256 `json:"coverageRatio"`
}

// PoolSnapshot captures the LP position used for the loss computation:
// entry amounts, entry prices and current prices for both legs, plus the
// pool's fee rate in basis points.
type PoolSnapshot struct {
	InitialTokenAAmount numeric.Uint256 `json:"initialTokenAAmount"`
	InitialTokenBAmount numeric.Uint256 `json:"initialTokenBAmount"`
	CurrentTokenAPrice  numeric.Uint256 `json:"currentTokenAPrice"`
	CurrentTokenBPrice  numeric.Uint256 `json:"currentTokenBPrice"`
	InitialTokenAPrice  numeric.Uint256 `json:"initialTokenAPrice"`
	InitialTokenBPrice  numeric.Uint256 `json:"initialTokenBPrice"`
	PoolFeeRate         numeric.Uint256 `json:"poolFeeRate"`
}

// LossResult is the outcome of one impermanent-loss computation.
type LossResult struct {
	ImpermanentLoss numeric.Uint256 `json:"impermanentLoss"`
	HasLoss         bool            `json:"hasLoss"`
}
