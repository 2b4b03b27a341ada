package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"html"

	"github.com/go-telegram/bot/models"

	"scopebot/internal/command"
	"scopebot/internal/scope"
)

// NewEchoHandler returns the dev-mode /echo handler, which dumps the raw
// inbound message back to the chat.
func NewEchoHandler(deps HandlerDeps) command.HandlerFunc {
	return echoHandler{deps}.Handle
}

type echoHandler struct {
	deps HandlerDeps
}

func (h echoHandler) Handle(ctx context.Context, req *scope.Request, trigger, args string) error {
	dump, err := json.MarshalIndent(req.Message, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize message: %w", err)
	}

	req.Chat.RenderMode = models.ParseModeHTML
	return h.deps.Replier.SendMessage(ctx, &req.Chat, "<pre>"+html.EscapeString(string(dump))+"</pre>")
}
