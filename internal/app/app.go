package app

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"

	"il-insurance-compute/internal/attestation"
	"il-insurance-compute/internal/config"
	"il-insurance-compute/internal/engine"
	"il-insurance-compute/internal/insurance"
	"il-insurance-compute/internal/oracle"
	"il-insurance-compute/internal/rpcserver"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger()}
}

func (a *App) newCalculators() (*insurance.LossCalculator, *insurance.PayoutCalculator) {
	return insurance.NewLossCalculator(a.Logger), insurance.NewPayoutCalculator(a.Logger)
}

func (a *App) newEngine() *engine.Engine {
	losses, payouts := a.newCalculators()
	return engine.New(losses, payouts, a.Logger)
}

func (a *App) newComputeAPI() *rpcserver.ComputeAPI {
	losses, payouts := a.newCalculators()

	// The Nop verifiers accept every well-formed input; swap in real BLS
	// and ZK backends here once the operator set runs them.
	aggregator := attestation.NewAggregator(attestation.NopSignatureVerifier{}, a.Logger)
	verifier := attestation.NewVerifier(attestation.NopProofVerifier{}, a.Logger)

	return rpcserver.NewComputeAPI(
		oracle.NewValidator(a.Logger),
		aggregator,
		verifier,
		losses,
		payouts,
		engine.New(losses, payouts, a.Logger),
		a.Logger,
	)
}

// Run executes the long-running compute service.
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	srv, err := rpcserver.New(a.Config.Server, a.newComputeAPI(), a.Logger)
	if err != nil {
		return err
	}

	a.Logger.Info().Str("environment", a.Config.App.Environment).Msg("starting compute service")
	err = srv.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("compute service stopped")
	return nil
}
