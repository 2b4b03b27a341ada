package handlers

import (
	"context"
	"fmt"

	"scopebot/internal/command"
	"scopebot/internal/scope"
)

// NewNewHandler returns a handler for the /new command, which discards the
// conversation history for the request's namespace.
func NewNewHandler(deps HandlerDeps) command.HandlerFunc {
	return newHandler{deps}.Handle
}

type newHandler struct {
	deps HandlerDeps
}

func (h newHandler) Handle(ctx context.Context, req *scope.Request, trigger, args string) error {
	log := h.deps.Logger.With("handler", "new")
	log.InfoContext(ctx, "Handling /new command", "chat_id", req.Share.ChatID, "history_key", req.Share.HistoryKey)

	if err := h.deps.Histories.Clear(ctx, req.Share.HistoryKey); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}

	return h.deps.Replier.SendMessage(ctx, &req.Chat, "New conversation started.")
}
