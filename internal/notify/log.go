package notify

import (
	"context"
	"log/slog"
)

// LogNotifier writes the message to the log instead of delivering it.
// Used in local development where no mail credentials exist.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	n.log.InfoContext(ctx, "mail suppressed in dev mode",
		"to", to,
		"subject", subject,
		"body", htmlBody,
	)
	return nil
}
