package di

import (
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/lovescan/internal/config"
	"github.com/mikey/lovescan/internal/core"
	"github.com/mikey/lovescan/internal/factory"
	"github.com/mikey/lovescan/internal/logging"
	"github.com/mikey/lovescan/internal/metrics"
	"github.com/mikey/lovescan/internal/ports"
	"github.com/mikey/lovescan/internal/utils"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	if err := provideFactories(container); err != nil {
		return nil, err
	}

	// Register text processor
	if err := container.Provide(func(f *factory.TextProcessorFactory) *utils.TextProcessor {
		return f.CreateTextProcessor()
	}); err != nil {
		return nil, err
	}

	// Register LLM client
	if err := container.Provide(func(f *factory.LLMFactory) (core.LLMClient, error) {
		return f.CreateLLMClient()
	}); err != nil {
		return nil, err
	}

	// Register cache repository
	if err := container.Provide(func(f *factory.CacheFactory) (core.CacheRepository, error) {
		return f.CreateCacheRepository()
	}); err != nil {
		return nil, err
	}

	// Register report publisher
	if err := container.Provide(func(f *factory.PublisherFactory) (core.ReportPublisher, error) {
		return f.CreatePublisher()
	}); err != nil {
		return nil, err
	}

	// Register metrics
	if err := container.Provide(metrics.NewRecorder); err != nil {
		return nil, err
	}
	if err := container.Provide(func(r *metrics.Recorder) core.ScanObserver {
		return r
	}); err != nil {
		return nil, err
	}

	// Register reverse image search
	if err := container.Provide(func(f *factory.ScanFactory) (ports.ImageSearcher, error) {
		return f.CreateImageSearcher()
	}); err != nil {
		return nil, err
	}

	// Register scan service
	if err := container.Provide(func(
		f *factory.ScanFactory,
		llmClient core.LLMClient,
		cacheRepo core.CacheRepository,
		publisher core.ReportPublisher,
		observer core.ScanObserver,
	) (*core.ScanService, error) {
		return f.CreateScanService(llmClient, cacheRepo, publisher, observer)
	}); err != nil {
		return nil, err
	}

	// Register frontends
	if err := container.Provide(func(
		f *factory.FrontendFactory,
		service *core.ScanService,
		images ports.ImageSearcher,
		recorder *metrics.Recorder,
		logger *zap.Logger,
	) ([]ports.ScanFrontend, error) {
		frontends, err := f.CreateFrontends(service, images, recorder.Handler())
		if err != nil {
			return nil, err
		}
		for _, fe := range frontends {
			logger.Debug("Registered frontend", zap.String("name", fe.Name()))
		}
		return frontends, nil
	}); err != nil {
		return nil, err
	}

	return container, nil
}

func provideFactories(container *dig.Container) error {
	constructors := []interface{}{
		factory.NewTextProcessorFactory,
		factory.NewLLMFactory,
		factory.NewCacheFactory,
		factory.NewPublisherFactory,
		factory.NewScanFactory,
		factory.NewFrontendFactory,
	}
	for _, c := range constructors {
		if err := container.Provide(c); err != nil {
			return err
		}
	}
	return nil
}
