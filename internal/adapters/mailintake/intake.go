package mailintake

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/mikey/lovescan/internal/config"
	"github.com/mikey/lovescan/internal/core"
	"github.com/mikey/lovescan/internal/ports"
	"go.uber.org/zap"
)

// MailIntake accepts forwarded conversations over SMTP, scans the message
// text as chat evidence and relays the message with verdict headers
type MailIntake struct {
	scanner     ports.Scanner
	cfg         config.SMTPConfig
	scanTimeout time.Duration
	logger      *zap.Logger
	server      *smtp.Server
	relay       func(sender string, recipients []string, data []byte) error
}

// NewMailIntake creates a new mail intake frontend
func NewMailIntake(scanner ports.Scanner, cfg config.SMTPConfig, scanTimeout time.Duration, logger *zap.Logger) *MailIntake {
	m := &MailIntake{
		scanner:     scanner,
		cfg:         cfg,
		scanTimeout: scanTimeout,
		logger:      logger,
	}
	m.relay = m.sendToRelay
	return m
}

// Name identifies the frontend
func (m *MailIntake) Name() string {
	return "smtp"
}

// Start starts the SMTP listener
func (m *MailIntake) Start() error {
	ln, err := net.Listen("tcp", m.cfg.ListenAddress)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", m.cfg.ListenAddress, err)
	}

	m.server = smtp.NewServer(&smtpBackend{intake: m})
	m.server.Addr = m.cfg.ListenAddress
	m.server.Domain = m.cfg.Domain
	m.server.ReadTimeout = 30 * time.Second
	m.server.WriteTimeout = 30 * time.Second
	m.server.MaxMessageBytes = m.cfg.MaxMessageBytes
	m.server.MaxRecipients = 50

	m.logger.Info("Mail intake starting", zap.String("address", ln.Addr().String()))

	go func() {
		if err := m.server.Serve(ln); err != nil && !errors.Is(err, smtp.ErrServerClosed) {
			m.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the SMTP listener
func (m *MailIntake) Stop(ctx context.Context) error {
	if m.server == nil {
		return nil
	}
	return m.server.Close()
}

// process scans one raw message and returns it with verdict headers
func (m *MailIntake) process(ctx context.Context, raw []byte) ([]byte, *core.ReportPayload, error) {
	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to parse message: %w", err)
	}

	text, err := extractText(msg)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to extract text content: %w", err)
	}

	var items []core.EvidenceItem
	if strings.TrimSpace(text) != "" {
		items = append(items, core.ChatText{Text: text})
	}

	if m.scanTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.scanTimeout)
		defer cancel()
	}

	report, scanErr := m.scanner.Scan(ctx, items)
	if scanErr != nil {
		m.logger.Error("Failed to scan forwarded message",
			zap.String("subject", decodeHeader(msg.Header.Get("Subject"))),
			zap.Error(scanErr))
	}

	return annotate(raw, m.cfg.Headers, report, scanErr), report, nil
}

// sendToRelay hands the annotated message to the next hop
func (m *MailIntake) sendToRelay(sender string, recipients []string, data []byte) error {
	relayAddr := net.JoinHostPort(m.cfg.RelayHost, fmt.Sprintf("%d", m.cfg.RelayPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}

	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			m.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			recipientOK = true
		}
	}
	if !recipientOK {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		m.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	intake *MailIntake
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(c *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{intake: b.intake}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	intake     *MailIntake
	sender     string
	recipients []string
}

func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

func (s *smtpSession) Logout() error {
	return nil
}

func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data scans the message and relays it
func (s *smtpSession) Data(r io.Reader) error {
	m := s.intake

	raw, err := io.ReadAll(r)
	if err != nil {
		m.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	annotated, report, err := m.process(context.Background(), raw)
	if err != nil {
		m.logger.Error("Rejecting unreadable message", zap.String("sender", s.sender), zap.Error(err))
		return &smtp.SMTPError{Code: 554, EnhancedCode: smtp.EnhancedCode{5, 6, 0}, Message: "Message could not be parsed"}
	}

	if m.cfg.RelayEnabled {
		if err := m.relay(s.sender, s.recipients, annotated); err != nil {
			m.logger.Error("Failed to relay message", zap.String("sender", s.sender), zap.Error(err))
			return &smtp.SMTPError{Code: 451, EnhancedCode: smtp.EnhancedCode{4, 4, 1}, Message: "Relay temporarily unavailable"}
		}
	}

	fields := []zap.Field{zap.String("sender", s.sender), zap.Int("recipients", len(s.recipients))}
	if report != nil {
		fields = append(fields,
			zap.String("scan_id", report.ID),
			zap.Int("risk_score", report.RiskScore),
			zap.String("risk_level", string(report.RiskLevel)))
	}
	m.logger.Info("Processed forwarded message", fields...)

	return nil
}
