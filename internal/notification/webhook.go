package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
)

type embed struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Color       int    `json:"color"`
}

type webhookPayload struct {
	Embeds []embed `json:"embeds"`
}

// WebhookSender posts alerts as a single embed to a Discord-compatible webhook
type WebhookSender struct {
	httpClient *http.Client
	logger     *zap.Logger
}

// NewWebhookSender creates a webhook sender with a bounded request timeout
func NewWebhookSender(timeout time.Duration, logger *zap.Logger) *WebhookSender {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &WebhookSender{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Send posts alert to url. Any 2xx answer counts as delivered.
func (s *WebhookSender) Send(ctx context.Context, url string, alert port.Alert) error {
	body, err := json.Marshal(webhookPayload{Embeds: []embed{{
		Title:       alert.Title,
		Description: alert.Description,
		Color:       alert.Color,
	}}})
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}

	s.logger.Debug("Webhook alert delivered",
		zap.String("title", alert.Title),
		zap.Int("status", resp.StatusCode))
	return nil
}

// Verify interface compliance
var _ port.AlertSender = (*WebhookSender)(nil)
