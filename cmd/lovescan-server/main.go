package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mikey/lovescan/internal/core"
	"github.com/mikey/lovescan/internal/di"
	"github.com/mikey/lovescan/internal/ports"
	"go.uber.org/zap"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	frontends []ports.ScanFrontend,
	llmClient core.LLMClient,
	cacheRepo core.CacheRepository,
	publisher core.ReportPublisher,
) error {
	defer logger.Sync()

	started := make([]ports.ScanFrontend, 0, len(frontends))
	for _, fe := range frontends {
		if err := fe.Start(); err != nil {
			logger.Error("Failed to start frontend", zap.String("frontend", fe.Name()), zap.Error(err))
			stopFrontends(logger, started)
			return fmt.Errorf("failed to start %s frontend: %w", fe.Name(), err)
		}
		started = append(started, fe)
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("Shutting down...", zap.String("signal", sig.String()))

	stopFrontends(logger, started)

	if closer, ok := llmClient.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close LLM client", zap.Error(err))
		}
	}

	if stopper, ok := cacheRepo.(interface{ Stop() }); ok {
		stopper.Stop()
	}

	if closer, ok := publisher.(interface{ Close() }); ok {
		closer.Close()
	}

	logger.Info("Shutdown complete")
	return nil
}

func stopFrontends(logger *zap.Logger, frontends []ports.ScanFrontend) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	for i := len(frontends) - 1; i >= 0; i-- {
		if err := frontends[i].Stop(ctx); err != nil {
			logger.Error("Failed to stop frontend", zap.String("frontend", frontends[i].Name()), zap.Error(err))
		}
	}
}
