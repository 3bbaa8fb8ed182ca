package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mikey/lovescan/internal/core"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// msgPublisher is the part of a NATS connection used here
type msgPublisher interface {
	Publish(subj string, data []byte) error
}

// NATSPublisher hands reports to the reporting layer over NATS
type NATSPublisher struct {
	conn    msgPublisher
	nc      *nats.Conn
	subject string
	logger  *zap.Logger
}

// NewNATSPublisher connects to NATS. The connection retries in the background
// so the server can start before the broker is reachable.
func NewNATSPublisher(url, subject string, maxReconnects int, reconnectWait time.Duration, logger *zap.Logger) (*NATSPublisher, error) {
	if url == "" {
		url = nats.DefaultURL
	}

	logger.Info("Connecting to NATS", zap.String("url", url), zap.String("subject", subject))

	nc, err := nats.Connect(url,
		nats.Name("lovescan"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(maxReconnects),
		nats.ReconnectWait(reconnectWait),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("NATS reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("NATS connection closed")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	return &NATSPublisher{
		conn:    nc,
		nc:      nc,
		subject: subject,
		logger:  logger,
	}, nil
}

// Publish sends the report as JSON on the configured subject
func (p *NATSPublisher) Publish(ctx context.Context, report *core.ReportPayload) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := p.conn.Publish(p.subject, data); err != nil {
		return fmt.Errorf("failed to publish report to %s: %w", p.subject, err)
	}

	p.logger.Debug("Report published",
		zap.String("scan_id", report.ID),
		zap.String("subject", p.subject),
		zap.Int("bytes", len(data)))

	return nil
}

// Close drains pending messages and closes the connection
func (p *NATSPublisher) Close() {
	if p.nc == nil {
		return
	}
	if err := p.nc.Drain(); err != nil {
		p.logger.Warn("Failed to drain NATS connection", zap.Error(err))
		p.nc.Close()
	}
}
