// Package notification delivers punch alerts to webhooks and an optional Lark chat.
package notification

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
	"github.com/garyjia/hrone-autopunch/internal/domain/decision"
	"github.com/garyjia/hrone-autopunch/internal/domain/entity"
)

// Notifier resolves the alert target for an account and sends the alert
type Notifier struct {
	sender         port.AlertSender
	defaultWebhook string
	mirror         port.MessageSender
	mirrorChatID   string
	logger         *zap.Logger
}

// Option configures a Notifier
type Option func(*Notifier)

// WithDefaultWebhook sets the webhook used for accounts without their own
func WithDefaultWebhook(url string) Option {
	return func(n *Notifier) {
		n.defaultWebhook = url
	}
}

// WithMirror copies every alert as text into a chat
func WithMirror(sender port.MessageSender, chatID string) Option {
	return func(n *Notifier) {
		if sender != nil && chatID != "" {
			n.mirror = sender
			n.mirrorChatID = chatID
		}
	}
}

// NewNotifier creates a new Notifier
func NewNotifier(sender port.AlertSender, logger *zap.Logger, opts ...Option) *Notifier {
	n := &Notifier{
		sender: sender,
		logger: logger,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// Failure sends a red alert asking the owner to punch manually
func (n *Notifier) Failure(ctx context.Context, account *entity.Account, message string) error {
	return n.send(ctx, account, port.Alert{
		Title:       fmt.Sprintf("Punching failed [%s]", account.Username),
		Description: "Kindly punch manually\n\n" + message,
		Color:       ColorFailure,
	})
}

// Info sends an informational alert
func (n *Notifier) Info(ctx context.Context, account *entity.Account, title, message string, color int) error {
	return n.send(ctx, account, port.Alert{
		Title:       title,
		Description: message,
		Color:       color,
	})
}

// Skipped sends a grey notice explaining why the account was not punched
func (n *Notifier) Skipped(ctx context.Context, account *entity.Account, message string) error {
	return n.Info(ctx, account, fmt.Sprintf("Punching skipped [%s]", account.Username), message, ColorSkip)
}

// Punched sends the check-in (green) or check-out (amber) confirmation
func (n *Notifier) Punched(ctx context.Context, account *entity.Account, direction decision.Direction, punchTime string) error {
	color := ColorCheckOut
	if direction == decision.DirectionIn {
		color = ColorCheckIn
	}
	return n.Info(ctx, account,
		"Attendance Check"+direction.Title(),
		fmt.Sprintf("**%s** has checked %s at %s.", account.DisplayName(), direction, punchTime),
		color)
}

// Target returns the webhook an account's alerts go to, or "" when none is configured
func (n *Notifier) Target(account *entity.Account) string {
	if account != nil && account.WebhookURL != "" {
		return account.WebhookURL
	}
	return n.defaultWebhook
}

func (n *Notifier) send(ctx context.Context, account *entity.Account, alert port.Alert) error {
	if n.mirror != nil {
		if err := n.mirror.SendText(ctx, n.mirrorChatID, alert.Title+"\n"+alert.Description); err != nil {
			n.logger.Warn("Failed to mirror alert to chat",
				zap.String("title", alert.Title),
				zap.Error(err))
		}
	}

	url := n.Target(account)
	if url == "" {
		n.logger.Debug("No alert target configured", zap.String("title", alert.Title))
		return nil
	}

	if err := n.sender.Send(ctx, url, alert); err != nil {
		n.logger.Error("Failed to send alert",
			zap.String("title", alert.Title),
			zap.Error(err))
		return fmt.Errorf("send alert: %w", err)
	}

	return nil
}
