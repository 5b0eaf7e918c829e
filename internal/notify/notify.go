package notify

import "context"

// Notifier delivers a message to an external address. The send is
// synchronous: a failure is reported once to the caller and never
// retried or queued.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}
