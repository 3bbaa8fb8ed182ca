package ports

import (
	"context"

	"github.com/mikey/lovescan/internal/core"
)

// Scanner turns an evidence set into a report
type Scanner interface {
	Scan(ctx context.Context, items []core.EvidenceItem) (*core.ReportPayload, error)
}

// ImageSearcher runs a reverse image search for a profile photo
type ImageSearcher interface {
	SearchImage(ctx context.Context, imageURI string) ([]core.ImageMatch, error)
}

// ScanFrontend accepts evidence from outside the process
type ScanFrontend interface {
	// Name identifies the frontend in logs
	Name() string

	// Start begins serving in the background
	Start() error

	// Stop shuts the frontend down, waiting for in-flight scans until ctx is done
	Stop(ctx context.Context) error
}
