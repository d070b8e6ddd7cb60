package app

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"il-insurance-compute/internal/engine"
	"il-insurance-compute/internal/insurance"
	"il-insurance-compute/internal/numeric"
)

// EvaluateOptions carry one claim evaluation as decimal strings; values
// routinely exceed 64 bits, so flags stay textual until parsed.
type EvaluateOptions struct {
	PolicyID            string
	InitialTokenAAmount string
	InitialTokenBAmount string
	CurrentTokenAPrice  string
	CurrentTokenBPrice  string
	InitialTokenAPrice  string
	InitialTokenBPrice  string
	PoolFeeRateBP       string
	CoverageAmount      string
	Deductible          string
	CoverageRatioBP     string
}

// Evaluate runs a single claim evaluation and prints the result.
func (a *App) Evaluate(ctx context.Context, opts EvaluateOptions) error {
	policy := insurance.PolicyParameters{}
	pool := insurance.PoolSnapshot{}

	fields := []struct {
		name  string
		raw   string
		value *numeric.Uint256
	}{
		{"policy-id", opts.PolicyID, &policy.PolicyID},
		{"coverage-amount", opts.CoverageAmount, &policy.CoverageAmount},
		{"deductible", opts.Deductible, &policy.Deductible},
		{"coverage-ratio-bp", opts.CoverageRatioBP, &policy.CoverageRatio},
		{"initial-a-amount", opts.InitialTokenAAmount, &pool.InitialTokenAAmount},
		{"initial-b-amount", opts.InitialTokenBAmount, &pool.InitialTokenBAmount},
		{"current-a-price", opts.CurrentTokenAPrice, &pool.CurrentTokenAPrice},
		{"current-b-price", opts.CurrentTokenBPrice, &pool.CurrentTokenBPrice},
		{"initial-a-price", opts.InitialTokenAPrice, &pool.InitialTokenAPrice},
		{"initial-b-price", opts.InitialTokenBPrice, &pool.InitialTokenBPrice},
		{"fee-rate-bp", opts.PoolFeeRateBP, &pool.PoolFeeRate},
	}
	for _, f := range fields {
		if f.raw == "" {
			return fmt.Errorf("--%s is required", f.name)
		}
		v, err := numeric.FromDecimal(f.raw)
		if err != nil {
			return fmt.Errorf("invalid --%s: %w", f.name, err)
		}
		*f.value = v
	}

	res, err := a.newEngine().ProcessClaim(ctx, engine.ClaimRequest{Policy: policy, Pool: pool})
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(writer, "Field\tValue")
	fmt.Fprintf(writer, "Policy\t%s\n", policy.PolicyID)
	fmt.Fprintf(writer, "Coverage ratio\t%s%%\n", bpToPercent(policy.CoverageRatio))
	fmt.Fprintf(writer, "Pool fee rate\t%s%%\n", bpToPercent(pool.PoolFeeRate))
	fmt.Fprintf(writer, "Impermanent loss\t%s\n", res.ImpermanentLoss)
	fmt.Fprintf(writer, "Has loss\t%t\n", res.HasLoss)
	fmt.Fprintf(writer, "Payout\t%s\n", res.Payout)
	return writer.Flush()
}

// bpToPercent renders a basis-point figure as a percentage, e.g. 8000 -> "80.00".
func bpToPercent(bp numeric.Uint256) string {
	return decimal.NewFromBigInt(bp.Big(), -2).StringFixed(2)
}
