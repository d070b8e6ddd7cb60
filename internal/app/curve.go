package app

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/shopspring/decimal"
	chart "github.com/wcharczuk/go-chart/v2"

	"il-insurance-compute/internal/insurance"
	"il-insurance-compute/internal/numeric"
)

// CurveOptions configure the loss-curve sweep.
type CurveOptions struct {
	MaxRatio  int
	FeeRateBP uint64
	PNGPath   string
	CSVPath   string
}

// curvePoint is one sweep sample of the integer IL curve.
type curvePoint struct {
	Ratio     int
	HoldValue numeric.Uint256
	Loss      numeric.Uint256
	LossBP    numeric.Uint256
}

// Curve sweeps the price ratio over a reference pool and renders the
// integer-precision loss curve as CSV and/or PNG. The output shows the
// truncation steps of the engine's arithmetic exactly as claims will see
// them, which is the point: this is a diagnostic of what the node
// computes, not of the continuous IL formula.
func (a *App) Curve(ctx context.Context, opts CurveOptions) error {
	if opts.CSVPath == "" && opts.PNGPath == "" {
		return errors.New("at least one of --csv or --png must be provided")
	}
	if opts.MaxRatio < 1 {
		return errors.New("--max-ratio must be at least 1")
	}

	losses, _ := a.newCalculators()

	// Reference pool: equal legs entered at unit prices, leg A repriced to
	// the swept ratio. hold = amount*(ratio+1), so loss_bp is well defined.
	const legAmount = 1_000_000
	points := make([]curvePoint, 0, opts.MaxRatio)

	for r := 1; r <= opts.MaxRatio; r++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		snap := referenceSnapshot(uint64(r), opts.FeeRateBP, legAmount)
		res, err := losses.Compute(snap)
		if err != nil {
			return fmt.Errorf("ratio %d: %w", r, err)
		}

		hold, err := holdValue(snap)
		if err != nil {
			return fmt.Errorf("ratio %d hold value: %w", r, err)
		}

		lossBP, err := fraction(res.ImpermanentLoss, hold)
		if err != nil {
			return fmt.Errorf("ratio %d loss fraction: %w", r, err)
		}

		points = append(points, curvePoint{Ratio: r, HoldValue: hold, Loss: res.ImpermanentLoss, LossBP: lossBP})
	}

	a.Logger.Info().Int("points", len(points)).Msg("loss curve computed")

	if opts.CSVPath != "" {
		if err := writeCurveCSV(opts.CSVPath, points); err != nil {
			return err
		}
	}
	if opts.PNGPath != "" {
		if err := writeCurvePNG(opts.PNGPath, points); err != nil {
			return err
		}
	}
	return nil
}

func referenceSnapshot(ratio, feeRateBP, legAmount uint64) insurance.PoolSnapshot {
	return insurance.PoolSnapshot{
		InitialTokenAAmount: numeric.FromUint64(legAmount),
		InitialTokenBAmount: numeric.FromUint64(legAmount),
		CurrentTokenAPrice:  numeric.FromUint64(ratio),
		CurrentTokenBPrice:  numeric.FromUint64(1),
		InitialTokenAPrice:  numeric.FromUint64(1),
		InitialTokenBPrice:  numeric.FromUint64(1),
		PoolFeeRate:         numeric.FromUint64(feeRateBP),
	}
}

func holdValue(snap insurance.PoolSnapshot) (numeric.Uint256, error) {
	a, err := snap.InitialTokenAAmount.Mul(snap.CurrentTokenAPrice)
	if err != nil {
		return numeric.Zero, err
	}
	b, err := snap.InitialTokenBAmount.Mul(snap.CurrentTokenBPrice)
	if err != nil {
		return numeric.Zero, err
	}
	return a.Add(b)
}

// fraction returns num*10000/den in basis points.
func fraction(num, den numeric.Uint256) (numeric.Uint256, error) {
	scaled, err := num.Mul(numeric.BasisPointScale)
	if err != nil {
		return numeric.Zero, err
	}
	return scaled.Div(den)
}

func writeCurveCSV(path string, points []curvePoint) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write([]string{"price_ratio", "hold_value", "impermanent_loss", "loss_bp"}); err != nil {
		return err
	}
	for _, p := range points {
		record := []string{
			strconv.Itoa(p.Ratio),
			p.HoldValue.String(),
			p.Loss.String(),
			p.LossBP.String(),
		}
		if err := writer.Write(record); err != nil {
			return err
		}
	}
	return writer.Error()
}

func writeCurvePNG(path string, points []curvePoint) error {
	if err := ensureDir(path); err != nil {
		return err
	}

	x := make([]float64, len(points))
	lossPct := make([]float64, len(points))
	for i, p := range points {
		x[i] = float64(p.Ratio)
		lossPct[i] = decimal.NewFromBigInt(p.LossBP.Big(), -2).InexactFloat64()
	}

	graph := chart.Chart{
		Width:  1280,
		Height: 720,
		XAxis: chart.XAxis{
			Name: "Price ratio",
		},
		YAxis: chart.YAxis{
			Name: "Loss vs hold (%)",
			ValueFormatter: func(v interface{}) string {
				return chart.FloatValueFormatterWithFormat(v, "%.2f")
			},
		},
		Series: []chart.Series{
			chart.ContinuousSeries{
				Name:    "Integer IL",
				XValues: x,
				YValues: lossPct,
			},
		},
	}
	graph.Elements = []chart.Renderable{chart.Legend(&graph)}

	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return graph.Render(chart.PNG, file)
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
