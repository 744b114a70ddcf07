package app

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"crypto-dashboard/internal/api"
)

// Serve exposes the dashboard over HTTP until interrupted.
func (a *App) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := a.Config.Server
	handler := api.NewHandler(a.newDashboard(), a.Config.Analysis.DefaultMonths, a.Logger)
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      api.SetupRoutes(handler),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info().Str("addr", cfg.Addr).Msg("starting http api")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error().Err(err).Msg("http api shutdown failed")
		return err
	}

	a.Logger.Info().Msg("http api stopped")
	return nil
}
