package factory

import (
	"fmt"
	"net/http"

	"github.com/mikey/lovescan/internal/adapters/httpapi"
	"github.com/mikey/lovescan/internal/adapters/mailintake"
	"github.com/mikey/lovescan/internal/config"
	"github.com/mikey/lovescan/internal/ports"
	"go.uber.org/zap"
)

// FrontendFactory creates the frontends named in server.frontends
type FrontendFactory struct {
	cfg    *config.Config
	logger *zap.Logger
}

// NewFrontendFactory creates a new frontend factory
func NewFrontendFactory(cfg *config.Config, logger *zap.Logger) *FrontendFactory {
	return &FrontendFactory{
		cfg:    cfg,
		logger: logger,
	}
}

// CreateFrontends creates every configured frontend
func (f *FrontendFactory) CreateFrontends(scanner ports.Scanner, images ports.ImageSearcher, metrics http.Handler) ([]ports.ScanFrontend, error) {
	serverCfg, err := f.cfg.GetServer()
	if err != nil {
		return nil, fmt.Errorf("invalid server configuration: %w", err)
	}
	scanCfg, err := f.cfg.GetScan()
	if err != nil {
		return nil, fmt.Errorf("invalid scan configuration: %w", err)
	}

	var frontends []ports.ScanFrontend
	for _, name := range serverCfg.Frontends {
		switch name {
		case "http":
			frontends = append(frontends, httpapi.NewServer(scanner, images, metrics, serverCfg.HTTP, f.logger.Named("http")))
		case "smtp":
			frontends = append(frontends, mailintake.NewMailIntake(scanner, serverCfg.SMTP, scanCfg.AnalyzerTimeout, f.logger.Named("smtp")))
		default:
			return nil, fmt.Errorf("unsupported frontend: %s", name)
		}
	}

	if len(frontends) == 0 {
		return nil, fmt.Errorf("no frontends configured")
	}

	return frontends, nil
}
