package telegram

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"scopebot/internal/scope"
)

const chatActionTimeout = 10 * time.Second

// Sender implements the command layer's Replier interface over the Telegram
// API. Replies honor the request's render mode and quote the inbound message
// in group chats.
type Sender struct {
	b      *bot.Bot
	logger *slog.Logger
}

// NewSender creates a Sender over a connected bot instance.
func NewSender(b *bot.Bot, logger *slog.Logger) *Sender {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Sender{b: b, logger: logger.With("component", "sender")}
}

// SendMessage delivers a text reply to the request's chat.
func (s *Sender) SendMessage(ctx context.Context, chat *scope.ChatContext, text string) error {
	params := &bot.SendMessageParams{
		ChatID:    chat.ChatID,
		Text:      text,
		ParseMode: chat.RenderMode,
	}
	if chat.ReplyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{
			MessageID:                chat.ReplyTo,
			AllowSendingWithoutReply: true,
		}
	}
	if _, err := s.b.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	return nil
}

// SendPhoto delivers an image reply to the request's chat.
func (s *Sender) SendPhoto(ctx context.Context, chat *scope.ChatContext, caption string, data []byte) error {
	params := &bot.SendPhotoParams{
		ChatID:  chat.ChatID,
		Photo:   &models.InputFileUpload{Filename: "image.png", Data: bytes.NewReader(data)},
		Caption: caption,
	}
	if chat.ReplyTo != 0 {
		params.ReplyParameters = &models.ReplyParameters{
			MessageID:                chat.ReplyTo,
			AllowSendingWithoutReply: true,
		}
	}
	if _, err := s.b.SendPhoto(ctx, params); err != nil {
		return fmt.Errorf("failed to send photo: %w", err)
	}
	return nil
}

// SendChatAction issues a typing/upload indicator without blocking the
// request. Failures are logged at debug and swallowed: the indicator is a
// UX affordance, not a correctness dependency.
func (s *Sender) SendChatAction(ctx context.Context, chatID int64, action models.ChatAction) {
	go func() {
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), chatActionTimeout)
		defer cancel()

		if _, err := s.b.SendChatAction(actx, &bot.SendChatActionParams{ChatID: chatID, Action: action}); err != nil {
			s.logger.Debug("Chat action failed", "chat_id", chatID, "action", string(action), "error", err)
		}
	}()
}
