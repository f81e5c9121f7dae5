package notification

import (
	"context"

	"github.com/storefront/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// LogNotifier writes messages to the log instead of sending them
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier creates a log-only notifier
func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: log}
}

func (l *LogNotifier) Name() string { return "log" }

func (l *LogNotifier) Send(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}
	logger.FromContextOr(ctx, l.logger).Info("Notification",
		zap.String("to", msg.To),
		zap.String("template", msg.Template),
		zap.String("subject", msg.Subject),
		zap.String("text", msg.Text))
	return nil
}
