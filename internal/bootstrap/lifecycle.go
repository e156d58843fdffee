package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

const signalChannelBufferSize = 1

// Run starts the worker pool, the price refresher, and the HTTP server, then
// blocks until a shutdown signal or a server error.
func (a *App) Run(ctx context.Context) error {
	if err := a.Pool.Start(); err != nil {
		return fmt.Errorf("failed to start worker pool: %w", err)
	}
	a.PoolMonitor.Start(ctx)

	if err := a.Refresher.Start(); err != nil {
		return fmt.Errorf("failed to start refresher: %w", err)
	}

	errChan := make(chan error, 1)
	go func() {
		errChan <- a.Server.Start()
	}()

	sigChan := make(chan os.Signal, signalChannelBufferSize)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case serverErr := <-errChan:
		if serverErr != nil {
			a.Logger.Error("Server error", "error", serverErr.Error())
			return fmt.Errorf("server error: %w", serverErr)
		}
		return nil
	case sig := <-sigChan:
		return a.shutdown(ctx, sig)
	case <-ctx.Done():
		return a.shutdown(ctx, nil)
	}
}

// shutdown stops components in reverse dependency order: no new HTTP work,
// then no new scheduled work, then drain the pool.
func (a *App) shutdown(ctx context.Context, sig os.Signal) error {
	if sig != nil {
		a.Logger.Info("Shutdown signal received", "signal", sig.String())
	} else {
		a.Logger.Info("Shutting down")
	}

	shutdownCtx, cancel := context.WithTimeout(
		context.WithoutCancel(ctx), a.Config.Server.ShutdownTimeout)
	defer cancel()

	a.Logger.Info("Stopping HTTP server")
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error("Failed to stop server", "error", err.Error())
	}

	a.Logger.Info("Stopping price refresher")
	a.Refresher.Stop()

	a.Logger.Info("Draining worker pool")
	a.PoolMonitor.Stop()
	if err := a.Pool.Stop(shutdownCtx); err != nil {
		a.Logger.Error("Failed to stop worker pool", "error", err.Error())
	}

	a.Logger.Info("Server stopped successfully")
	return nil
}
