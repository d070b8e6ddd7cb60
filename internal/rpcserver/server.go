package rpcserver

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/ethereum/go-ethereum/rpc"
	"github.com/rs/zerolog"

	"il-insurance-compute/internal/config"
)

// Server serves the compute API as JSON-RPC over HTTP.
type Server struct {
	cfg    config.ServerConfig
	rpc    *rpc.Server
	logger zerolog.Logger
}

// New registers the compute API and prepares the listener.
func New(cfg config.ServerConfig, api *ComputeAPI, logger zerolog.Logger) (*Server, error) {
	srv := rpc.NewServer()
	if err := srv.RegisterName("compute", api); err != nil {
		return nil, fmt.Errorf("register compute namespace: %w", err)
	}

	return &Server{
		cfg:    cfg,
		rpc:    srv,
		logger: logger.With().Str("component", "rpc_server").Logger(),
	}, nil
}

// Run blocks serving requests until ctx is cancelled, then drains
// in-flight calls within the configured shutdown window.
func (s *Server) Run(ctx context.Context) error {
	httpSrv := &http.Server{
		Addr:         s.cfg.ListenAddr,
		Handler:      s.rpc,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpSrv.ListenAndServe()
	}()

	s.logger.Info().Str("addr", s.cfg.ListenAddr).Msg("json-rpc server listening")

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			s.logger.Error().Err(err).Msg("http shutdown incomplete")
		}
		s.rpc.Stop()
		s.logger.Info().Msg("json-rpc server stopped")
		return ctx.Err()
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve json-rpc: %w", err)
	}
}

// Handler exposes the underlying RPC handler; tests dial it in-process.
func (s *Server) Handler() *rpc.Server {
	return s.rpc
}
