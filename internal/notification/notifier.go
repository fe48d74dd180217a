// Package notification delivers workflow events to the people who need to act on them.
// Delivery is asynchronous and at-most-once: failures are logged and never retried.
package notification

import (
	"context"
	"log/slog"

	"github.com/SscSPs/koperasi_backend/internal/core/domain"
)

// Message is a rendered notification ready to send.
type Message struct {
	To      string
	Kind    domain.EventKind
	Subject string
	Body    string
}

// Notifier sends one rendered message.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// LogNotifier writes messages to the log instead of sending them.
// It is used when no mail transport is configured.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier returns a LogNotifier writing to logger, or to slog.Default when nil.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

var _ Notifier = (*LogNotifier)(nil)

func (n *LogNotifier) Send(ctx context.Context, msg Message) error {
	n.logger.InfoContext(ctx, "Notification",
		slog.String("to", msg.To),
		slog.String("kind", string(msg.Kind)),
		slog.String("subject", msg.Subject))
	return nil
}
