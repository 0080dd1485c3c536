package sms

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Sender delivers a text message to a phone number. Delivery is best-effort;
// callers are expected to log failures rather than roll anything back.
type Sender interface {
	Send(ctx context.Context, to, message string) error
}

// GatewayConfig configures the outbound SMS gateway. Credentials come from
// the environment, never from code.
type GatewayConfig struct {
	BaseURL  string
	APIKey   string
	SenderID string
	Timeout  time.Duration
}

// GatewaySender posts messages to an HTTP SMS gateway.
type GatewaySender struct {
	config GatewayConfig
	client *http.Client
}

func NewGatewaySender(config GatewayConfig) *GatewaySender {
	timeout := config.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &GatewaySender{
		config: config,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *GatewaySender) Send(ctx context.Context, to, message string) error {
	form := url.Values{}
	form.Set("apikey", s.config.APIKey)
	form.Set("sender", s.config.SenderID)
	form.Set("to", to)
	form.Set("message", message)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.config.BaseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build SMS request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach SMS gateway: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("SMS gateway returned status %d", resp.StatusCode)
	}

	return nil
}
