package handlers

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot/models"

	"scopebot/internal/command"
	"scopebot/internal/scope"
)

// NewImageHandler returns a handler for the /img command.
func NewImageHandler(deps HandlerDeps) command.HandlerFunc {
	return imageHandler{deps}.Handle
}

type imageHandler struct {
	deps HandlerDeps
}

func (h imageHandler) Handle(ctx context.Context, req *scope.Request, trigger, args string) error {
	log := h.deps.Logger.With("handler", "img")

	if args == "" {
		return h.deps.Replier.SendMessage(ctx, &req.Chat, "Please describe the image, e.g. /img a cat in a hat")
	}

	log.InfoContext(ctx, "Handling /img command", "chat_id", req.Share.ChatID, "prompt_len", len(args))

	h.deps.Replier.SendChatAction(ctx, req.Chat.ChatID, models.ChatActionUploadPhoto)

	data, err := h.deps.AI.GenerateImage(ctx, args)
	if err != nil {
		return fmt.Errorf("failed to generate image: %w", err)
	}

	return h.deps.Replier.SendPhoto(ctx, &req.Chat, "", data)
}
