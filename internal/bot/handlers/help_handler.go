package handlers

import (
	"context"
	"fmt"
	"strings"

	"scopebot/internal/command"
	"scopebot/internal/scope"
)

// NewHelpHandler returns a handler for the /help command. It lists the
// registry it was given, which is fully populated before first dispatch.
func NewHelpHandler(deps HandlerDeps, registry *command.Registry) command.HandlerFunc {
	h := helpHandler{deps: deps, registry: registry}
	return h.Handle
}

type helpHandler struct {
	deps     HandlerDeps
	registry *command.Registry
}

func (h helpHandler) Handle(ctx context.Context, req *scope.Request, trigger, args string) error {
	log := h.deps.Logger.With("handler", "help")
	log.InfoContext(ctx, "Handling /help command", "chat_id", req.Share.ChatID, "speaker_id", req.Share.SpeakerID)

	var sb strings.Builder
	sb.WriteString("Available commands:\n")
	for _, cmd := range h.registry.Commands() {
		fmt.Fprintf(&sb, "%s - %s\n", cmd.Trigger, cmd.Help)
	}

	return h.deps.Replier.SendMessage(ctx, &req.Chat, sb.String())
}
