// Package mail sends purchase receipts.
package mail

import (
	"context"
	"log/slog"
)

// Message is a plain-text email.
type Message struct {
	To      string
	Subject string
	Body    string
}

// Sender delivers a Message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// LogSender writes messages to the log instead of sending them. It is used
// when no SMTP relay is configured.
type LogSender struct {
	logger *slog.Logger
}

// NewLogSender creates a LogSender.
func NewLogSender(logger *slog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

// Send implements Sender.
func (s *LogSender) Send(_ context.Context, msg Message) error {
	s.logger.Info("email not sent, SMTP disabled",
		"to", msg.To,
		"subject", msg.Subject,
		"body_bytes", len(msg.Body),
	)
	return nil
}
