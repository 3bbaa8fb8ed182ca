package publisher

import (
	"context"

	"github.com/mikey/lovescan/internal/core"
	"go.uber.org/zap"
)

// LogPublisher writes report summaries to the log
type LogPublisher struct {
	logger *zap.Logger
}

// NewLogPublisher creates a new log publisher
func NewLogPublisher(logger *zap.Logger) *LogPublisher {
	return &LogPublisher{logger: logger}
}

// Publish logs the report summary
func (p *LogPublisher) Publish(ctx context.Context, report *core.ReportPayload) error {
	fields := []zap.Field{
		zap.String("scan_id", report.ID),
		zap.Int("risk_score", report.RiskScore),
		zap.String("risk_level", string(report.RiskLevel)),
		zap.String("score_band", report.ScoreBand),
		zap.Strings("scan_types", report.ScanTypes),
		zap.Strings("suggested_reasons", report.SuggestedReasons),
	}
	if report.ReportedName != nil {
		fields = append(fields, zap.String("reported_name", *report.ReportedName))
	}

	p.logger.Info("Report ready", fields...)
	return nil
}
