package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"strings"

	"github.com/go-telegram/bot/models"

	"scopebot/internal/command"
	"scopebot/internal/scope"
)

// NewSystemHandler returns a handler for the /system command. The reply is
// tiered: the model name is always shown, the conversation configuration is
// added in debug mode, and the resolved request context in dev mode. The bot
// token is never echoed.
func NewSystemHandler(deps HandlerDeps) command.HandlerFunc {
	return systemHandler{deps}.Handle
}

type systemHandler struct {
	deps HandlerDeps
}

func (h systemHandler) Handle(ctx context.Context, req *scope.Request, trigger, args string) error {
	log := h.deps.Logger.With("handler", "system")
	log.InfoContext(ctx, "Handling /system command", "chat_id", req.Share.ChatID)

	model := req.Config.Model
	if model == "" {
		model = h.deps.Config.Gemini.Model
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Chat model: %s\n", model)

	if h.deps.Config.Bot.DebugMode {
		if dump, err := json.MarshalIndent(req.Config, "", "  "); err == nil {
			fmt.Fprintf(&sb, "User config:\n%s\n", dump)
		}
	}

	if h.deps.Config.Bot.DevMode {
		redacted := *req
		redacted.Bot.Token = ""
		if dump, err := json.MarshalIndent(struct {
			Bot   scope.BotIdentity
			Chat  scope.ChatContext
			Share scope.ShareContext
		}{redacted.Bot, redacted.Chat, redacted.Share}, "", "  "); err == nil {
			fmt.Fprintf(&sb, "Request context:\n%s\n", dump)
		}
	}

	req.Chat.RenderMode = models.ParseModeHTML
	return h.deps.Replier.SendMessage(ctx, &req.Chat, "<pre>"+html.EscapeString(sb.String())+"</pre>")
}
