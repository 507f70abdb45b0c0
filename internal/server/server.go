package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rpattn/liftdesk/internal/config"
)

// Serve runs the HTTP server until ctx is cancelled, then shuts it down
// gracefully within cfg.ShutdownTimeout.
func Serve(ctx context.Context, app *App, cfg config.HTTPConfig) error {
	server := &http.Server{
		Addr:         cfg.Addr,
		Handler:      NewRouter(app, cfg),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		app.Logger.WithField("addr", cfg.Addr).Info("starting liftdesk server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	app.Logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	app.Logger.Info("server exited")
	return nil
}
