package delivery

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"
)

// ErrMailerDisabled is returned when no mail provider is configured.
var ErrMailerDisabled = errors.New("mail delivery is not configured")

// Mailer sends a generated essay to the candidate's inbox.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) (messageID string, err error)
}

// HTTPMailer posts to a Resend-style JSON email API.
type HTTPMailer struct {
	client *resty.Client
	from   string
}

// NewHTTPMailer builds an HTTPMailer. endpoint is the full send URL.
func NewHTTPMailer(apiKey, from, endpoint string, timeout time.Duration) (*HTTPMailer, error) {
	apiKey = strings.TrimSpace(apiKey)
	from = strings.TrimSpace(from)
	endpoint = strings.TrimSpace(endpoint)
	if apiKey == "" || from == "" || endpoint == "" {
		return nil, ErrMailerDisabled
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	client := resty.New().
		SetBaseURL(endpoint).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetAuthToken(apiKey)

	return &HTTPMailer{client: client, from: from}, nil
}

// Send posts the email and returns the provider message id.
func (m *HTTPMailer) Send(ctx context.Context, to, subject, body string) (string, error) {
	resp, err := m.client.R().
		SetContext(ctx).
		SetBody(map[string]any{
			"from":    m.from,
			"to":      []string{to},
			"subject": subject,
			"text":    body,
		}).
		Post("")
	if err != nil {
		return "", fmt.Errorf("mail request: %w", err)
	}
	if resp.IsError() {
		return "", fmt.Errorf("mail provider status %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}

	return gjson.Get(resp.String(), "id").String(), nil
}

// DisabledMailer rejects every send. Used when MAIL_API_KEY is absent.
type DisabledMailer struct{}

func (DisabledMailer) Send(context.Context, string, string, string) (string, error) {
	return "", ErrMailerDisabled
}
