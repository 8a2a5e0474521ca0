package lark

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	larkim "github.com/larksuite/oapi-sdk-go/v3/service/im/v1"
	"go.uber.org/zap"

	"github.com/garyjia/hrone-autopunch/internal/application/port"
)

const (
	receiveIDTypeChat = "chat_id"
	msgTypeText       = "text"
)

// Messenger implements port.MessageSender on top of the IM message API
type Messenger struct {
	client *Client
	logger *zap.Logger
}

// NewMessenger creates a new Lark message sender adapter
func NewMessenger(client *Client, logger *zap.Logger) *Messenger {
	return &Messenger{
		client: client,
		logger: logger,
	}
}

// SendText posts a plain text message to a group chat
func (m *Messenger) SendText(ctx context.Context, chatID, content string) error {
	if chatID == "" {
		return errors.New("chatID cannot be empty")
	}
	if content == "" {
		return errors.New("content cannot be empty")
	}

	body, err := json.Marshal(map[string]string{"text": content})
	if err != nil {
		return fmt.Errorf("failed to marshal text content: %w", err)
	}

	req := larkim.NewCreateMessageReqBuilder().
		ReceiveIdType(receiveIDTypeChat).
		Body(larkim.NewCreateMessageReqBodyBuilder().
			ReceiveId(chatID).
			MsgType(msgTypeText).
			Content(string(body)).
			Build()).
		Build()

	resp, err := m.client.client.Im.Message.Create(ctx, req)
	if err != nil {
		m.logger.Error("Failed to send Lark message",
			zap.String("chat_id", chatID),
			zap.Error(err))
		return fmt.Errorf("failed to send message: %w", err)
	}

	if !resp.Success() {
		m.logger.Error("Lark API returned failure",
			zap.String("chat_id", chatID),
			zap.Int("code", resp.Code),
			zap.String("msg", resp.Msg))
		return fmt.Errorf("lark API error: code=%d, msg=%s", resp.Code, resp.Msg)
	}

	if resp.Data != nil && resp.Data.MessageId != nil {
		m.logger.Debug("Lark message sent",
			zap.String("chat_id", chatID),
			zap.String("message_id", *resp.Data.MessageId))
	}

	return nil
}

// Verify interface compliance
var _ port.MessageSender = (*Messenger)(nil)
