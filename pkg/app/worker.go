package app

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"slotbook/pkg/config"
	"slotbook/pkg/contracts"
	"sync"
	"syscall"
)

// RunWorkers runs each worker until SIGINT or SIGTERM, then closes them and
// the shared clients. A worker that fails on its own stops the others.
func RunWorkers(cfg *config.Config, workers ...contracts.Worker) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	for _, w := range workers {
		wg.Add(1)
		go func(w contracts.Worker) {
			defer wg.Done()
			if err := w.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
				cfg.Log.Error("Worker stopped with error", "error", err)
				stop()
			}
		}(w)
	}

	<-ctx.Done()
	cfg.Log.Info("Shutdown signal received, stopping workers")
	wg.Wait()

	for _, w := range workers {
		if err := w.Close(); err != nil {
			cfg.Log.Error("Failed to close worker", "error", err)
		}
	}
	cfg.GracefulShutdown()
	cfg.Log.Info("Workers stopped gracefully")
}
