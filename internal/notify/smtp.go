package notify

import (
	"context"
	"errors"
	"strings"

	"github.com/dongwook32/web-hub/config"
	"gopkg.in/gomail.v2"
)

// SMTPNotifier sends mail through a plain SMTP relay.
type SMTPNotifier struct {
	dialer   *gomail.Dialer
	from     string
	fromName string
}

// NewSMTPNotifier constructs an SMTP notifier from mail config.
func NewSMTPNotifier(cfg config.MailConfig) (*SMTPNotifier, error) {
	if strings.TrimSpace(cfg.SMTPHost) == "" {
		return nil, errors.New("smtp host is required")
	}

	return &SMTPNotifier{
		dialer:   gomail.NewDialer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPass),
		from:     cfg.From,
		fromName: cfg.FromName,
	}, nil
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	// gomail has no context support; honor cancellation before dialing.
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", n.from, n.fromName)
	m.SetHeader("To", to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", htmlBody)

	return n.dialer.DialAndSend(m)
}
