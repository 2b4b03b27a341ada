package handlers

import (
	"context"
	"fmt"
	"strings"

	"scopebot/internal/command"
	"scopebot/internal/scope"
)

// NewSetEnvHandler returns a handler for the /setenv command, which merges a
// single KEY=VALUE pair into the conversation's configuration and persists
// the result.
func NewSetEnvHandler(deps HandlerDeps) command.HandlerFunc {
	return setEnvHandler{deps}.Handle
}

type setEnvHandler struct {
	deps HandlerDeps
}

func (h setEnvHandler) Handle(ctx context.Context, req *scope.Request, trigger, args string) error {
	log := h.deps.Logger.With("handler", "setenv")

	key, value, ok := strings.Cut(args, "=")
	if !ok || key == "" {
		return h.deps.Replier.SendMessage(ctx, &req.Chat, "Usage: /setenv KEY=VALUE")
	}

	log.InfoContext(ctx, "Handling /setenv command", "chat_id", req.Share.ChatID, "key", key)

	if err := req.Config.Merge(key, value); err != nil {
		// Bad input is reported to the user, not treated as a failure.
		return h.deps.Replier.SendMessage(ctx, &req.Chat, fmt.Sprintf("Update failed: %s", err))
	}

	if err := h.deps.Configs.Save(ctx, req.Share.ConfigKey, req.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}

	return h.deps.Replier.SendMessage(ctx, &req.Chat, "Update configuration success.")
}
