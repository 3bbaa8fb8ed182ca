package factory

import (
	"fmt"

	"github.com/mikey/lovescan/internal/adapters/publisher"
	"github.com/mikey/lovescan/internal/config"
	"github.com/mikey/lovescan/internal/core"
	"go.uber.org/zap"
)

// PublisherFactory creates report publishers
type PublisherFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewPublisherFactory creates a new publisher factory
func NewPublisherFactory(cfg *config.Config, logger *zap.Logger) *PublisherFactory {
	return &PublisherFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreatePublisher creates the configured report publisher. "none" disables publishing.
func (f *PublisherFactory) CreatePublisher() (core.ReportPublisher, error) {
	reportCfg, err := f.cfg.GetReport()
	if err != nil {
		return nil, fmt.Errorf("invalid report configuration: %w", err)
	}

	switch reportCfg.Publisher {
	case "none", "":
		return nil, nil
	case "log":
		return publisher.NewLogPublisher(f.logger.Named("report")), nil
	case "nats":
		return publisher.NewNATSPublisher(
			reportCfg.NATS.URL,
			reportCfg.NATS.Subject,
			reportCfg.NATS.MaxReconnects,
			reportCfg.NATS.ReconnectWait,
			f.logger.Named("nats"),
		)
	default:
		return nil, fmt.Errorf("unsupported report publisher: %s", reportCfg.Publisher)
	}
}
