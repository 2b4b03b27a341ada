package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"html"
	"sort"
	"strings"

	"github.com/go-telegram/bot/models"

	"scopebot/internal/command"
	"scopebot/internal/scope"
)

// NewRoleHandler returns a handler for the /role command family:
//
//	/role show              list all presets
//	/role <name> del        delete a preset (missing is fine)
//	/role <name> KEY=VALUE  create or update a preset field
func NewRoleHandler(deps HandlerDeps) command.HandlerFunc {
	return roleHandler{deps}.Handle
}

type roleHandler struct {
	deps HandlerDeps
}

const roleUsage = "Usage:\n/role show\n/role <name> del\n/role <name> KEY=VALUE"

func (h roleHandler) Handle(ctx context.Context, req *scope.Request, trigger, args string) error {
	log := h.deps.Logger.With("handler", "role")
	log.InfoContext(ctx, "Handling /role command", "chat_id", req.Share.ChatID, "args", args)

	if args == "" {
		return h.deps.Replier.SendMessage(ctx, &req.Chat, roleUsage)
	}
	if args == "show" {
		return h.show(ctx, req)
	}

	name, rest, ok := strings.Cut(args, " ")
	if !ok {
		return h.deps.Replier.SendMessage(ctx, &req.Chat, roleUsage)
	}
	rest = strings.TrimSpace(rest)

	if rest == "del" {
		req.Config.DeleteRole(name)
		if err := h.deps.Configs.Save(ctx, req.Share.ConfigKey, req.Config); err != nil {
			return fmt.Errorf("failed to save config: %w", err)
		}
		return h.deps.Replier.SendMessage(ctx, &req.Chat, fmt.Sprintf("Role %q deleted.", name))
	}

	key, value, ok := strings.Cut(rest, "=")
	if !ok || key == "" {
		return h.deps.Replier.SendMessage(ctx, &req.Chat, roleUsage)
	}

	preset := h.deps.Configs.EnsureRole(req.Config, name)
	if err := preset.Merge(key, value); err != nil {
		return h.deps.Replier.SendMessage(ctx, &req.Chat, fmt.Sprintf("Update failed: %s", err))
	}
	if err := h.deps.Configs.Save(ctx, req.Share.ConfigKey, req.Config); err != nil {
		return fmt.Errorf("failed to save config: %w", err)
	}
	return h.deps.Replier.SendMessage(ctx, &req.Chat, fmt.Sprintf("Role %q updated.", name))
}

func (h roleHandler) show(ctx context.Context, req *scope.Request) error {
	if len(req.Config.Roles) == 0 {
		return h.deps.Replier.SendMessage(ctx, &req.Chat, "No roles defined. Total: 0")
	}

	names := make([]string, 0, len(req.Config.Roles))
	for name := range req.Config.Roles {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	fmt.Fprintf(&sb, "Defined roles (%d):\n", len(names))
	for _, name := range names {
		dump, err := json.MarshalIndent(req.Config.Roles[name], "", "  ")
		if err != nil {
			continue
		}
		fmt.Fprintf(&sb, "%s:\n%s\n", name, dump)
	}

	req.Chat.RenderMode = models.ParseModeHTML
	return h.deps.Replier.SendMessage(ctx, &req.Chat, "<pre>"+html.EscapeString(sb.String())+"</pre>")
}
