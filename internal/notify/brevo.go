package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/dongwook32/web-hub/config"
)

const brevoEndpoint = "https://api.brevo.com/v3/smtp/email"

// BrevoNotifier sends transactional mail through the Brevo (formerly
// Sendinblue) REST API, the provider the hub deploys with.
type BrevoNotifier struct {
	apiKey   string
	from     string
	fromName string
	client   *http.Client
}

// NewBrevoNotifier constructs a Brevo notifier from mail config.
func NewBrevoNotifier(cfg config.MailConfig) (*BrevoNotifier, error) {
	if strings.TrimSpace(cfg.BrevoAPIKey) == "" {
		return nil, errors.New("brevo api key is required")
	}

	return &BrevoNotifier{
		apiKey:   cfg.BrevoAPIKey,
		from:     cfg.From,
		fromName: cfg.FromName,
		client:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type brevoAddress struct {
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type brevoMessage struct {
	Sender      brevoAddress   `json:"sender"`
	To          []brevoAddress `json:"to"`
	Subject     string         `json:"subject"`
	HTMLContent string         `json:"htmlContent"`
}

func (n *BrevoNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	payload, err := json.Marshal(brevoMessage{
		Sender:      brevoAddress{Email: n.from, Name: n.fromName},
		To:          []brevoAddress{{Email: to}},
		Subject:     subject,
		HTMLContent: htmlBody,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, brevoEndpoint, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("api-key", n.apiKey)

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("brevo send failed with status %d", resp.StatusCode)
	}
	return nil
}
