package handlers

import (
	"context"
	"fmt"
	"strings"

	"scopebot/internal/command"
	"scopebot/internal/scope"
)

// NewStartHandler returns a handler for the /start command. Like /new it
// discards the conversation history, and it additionally reports the ids the
// namespace was derived from.
func NewStartHandler(deps HandlerDeps) command.HandlerFunc {
	return startHandler{deps}.Handle
}

type startHandler struct {
	deps HandlerDeps
}

func (h startHandler) Handle(ctx context.Context, req *scope.Request, trigger, args string) error {
	log := h.deps.Logger.With("handler", "start")
	log.InfoContext(ctx, "Handling /start command", "chat_id", req.Share.ChatID, "speaker_id", req.Share.SpeakerID)

	if err := h.deps.Histories.Clear(ctx, req.Share.HistoryKey); err != nil {
		return fmt.Errorf("failed to clear conversation: %w", err)
	}

	var sb strings.Builder
	sb.WriteString("New conversation started.\n")
	fmt.Fprintf(&sb, "Your ID: %d\n", req.Share.SpeakerID)
	if scope.IsGroupKind(req.Share.ChatKind) {
		fmt.Fprintf(&sb, "Group ID: %d\n", req.Share.ChatID)
	}

	return h.deps.Replier.SendMessage(ctx, &req.Chat, sb.String())
}
