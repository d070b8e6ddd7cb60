package cli

import (
	"github.com/spf13/cobra"

	"il-insurance-compute/internal/app"
)

var curveOpts app.CurveOptions

var curveCmd = &cobra.Command{
	Use:   "curve",
	Short: "渲染整数精度的 IL 曲线 (CSV/PNG)",
	RunE: func(cmd *cobra.Command, args []string) error {
		return getApp().Curve(cmd.Context(), curveOpts)
	},
}

func init() {
	curveCmd.Flags().IntVar(&curveOpts.MaxRatio, "max-ratio", 16, "Largest price ratio to sweep")
	curveCmd.Flags().Uint64Var(&curveOpts.FeeRateBP, "fee-rate-bp", 30, "Pool fee rate in basis points")
	curveCmd.Flags().StringVar(&curveOpts.PNGPath, "png", "", "Path to write PNG chart")
	curveCmd.Flags().StringVar(&curveOpts.CSVPath, "csv", "", "Path to write CSV data")
}
