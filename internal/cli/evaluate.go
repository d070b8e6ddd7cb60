package cli

import (
	"github.com/spf13/cobra"

	"il-insurance-compute/internal/app"
)

var evaluateOpts app.EvaluateOptions

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate a single claim from the command line",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Evaluate(cmd.Context(), evaluateOpts)
	},
}

func init() {
	flags := evaluateCmd.Flags()
	flags.StringVar(&evaluateOpts.PolicyID, "policy-id", "", "Policy identifier")
	flags.StringVar(&evaluateOpts.InitialTokenAAmount, "initial-a-amount", "", "Entry amount of token A")
	flags.StringVar(&evaluateOpts.InitialTokenBAmount, "initial-b-amount", "", "Entry amount of token B")
	flags.StringVar(&evaluateOpts.CurrentTokenAPrice, "current-a-price", "", "Current price of token A")
	flags.StringVar(&evaluateOpts.CurrentTokenBPrice, "current-b-price", "", "Current price of token B")
	flags.StringVar(&evaluateOpts.InitialTokenAPrice, "initial-a-price", "", "Entry price of token A")
	flags.StringVar(&evaluateOpts.InitialTokenBPrice, "initial-b-price", "", "Entry price of token B")
	flags.StringVar(&evaluateOpts.PoolFeeRateBP, "fee-rate-bp", "30", "Pool fee rate in basis points")
	flags.StringVar(&evaluateOpts.CoverageAmount, "coverage-amount", "", "Coverage cap")
	flags.StringVar(&evaluateOpts.Deductible, "deductible", "", "Deductible")
	flags.StringVar(&evaluateOpts.CoverageRatioBP, "coverage-ratio-bp", "8000", "Coverage ratio in basis points")
}
