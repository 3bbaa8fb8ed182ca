package main

import (
	"os"

	"go.uber.org/zap"

	"github.com/mikey/lovescan/internal/adapters/cli"
	"github.com/mikey/lovescan/internal/core"
	"github.com/mikey/lovescan/internal/di"
	"github.com/mikey/lovescan/internal/ports"
)

var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetServiceBuilder(buildServices)

	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// buildServices resolves the scan services from the CLI container
func buildServices(opts cli.Options) (*cli.Services, error) {
	container, err := di.BuildCLIContainer(&di.CLIOptions{
		ConfigFile: opts.ConfigFile,
		Verbose:    opts.Verbose,
		JSONLog:    opts.JSONLog,
		Provider:   opts.Provider,
		APIKey:     opts.APIKey,
		Model:      opts.Model,
	})
	if err != nil {
		return nil, err
	}

	var svc *cli.Services
	err = container.Invoke(func(
		logger *zap.Logger,
		service *core.ScanService,
		llmClient core.LLMClient,
		images ports.ImageSearcher,
	) {
		svc = &cli.Services{
			Scanner: service,
			Images:  images,
			Close: func() {
				if closer, ok := llmClient.(interface{ Close() error }); ok {
					if err := closer.Close(); err != nil {
						logger.Warn("Failed to close LLM client", zap.Error(err))
					}
				}
				_ = logger.Sync()
			},
		}
	})
	if err != nil {
		return nil, err
	}
	return svc, nil
}
