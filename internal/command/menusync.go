package command

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
)

// CommandMenuAPI is the slice of the Telegram API menu sync needs.
type CommandMenuAPI interface {
	SetMyCommands(ctx context.Context, params *bot.SetMyCommandsParams) (bool, error)
}

// standardScopes are always synced, even when empty, so a scope whose last
// command was hidden gets its stale menu cleared.
var standardScopes = []MenuScope{
	ScopeAllPrivateChats,
	ScopeAllGroupChats,
	ScopeAllChatAdministrators,
}

// SyncMenu partitions the registry's commands by visibility scope, skips any
// trigger listed in hidden, and issues one menu replacement per scope. The
// operation is idempotent and order-independent; it is safe to re-run on
// every deployment. The result maps each scope to its error, nil on success.
func SyncMenu(ctx context.Context, api CommandMenuAPI, registry *Registry, hidden []string, logger *slog.Logger) map[MenuScope]error {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	log := logger.With("component", "menu_sync")

	perScope := make(map[MenuScope][]models.BotCommand)
	for _, s := range standardScopes {
		perScope[s] = []models.BotCommand{}
	}
	for _, cmd := range registry.Commands() {
		if slices.Contains(hidden, cmd.Trigger) {
			continue
		}
		for _, s := range cmd.Scopes {
			perScope[s] = append(perScope[s], models.BotCommand{
				Command:     strings.TrimPrefix(cmd.Trigger, "/"),
				Description: cmd.Help,
			})
		}
	}

	result := make(map[MenuScope]error, len(perScope))
	for menuScope, commands := range perScope {
		scopeModel, err := scopeModel(menuScope)
		if err != nil {
			result[menuScope] = err
			continue
		}
		_, err = api.SetMyCommands(ctx, &bot.SetMyCommandsParams{
			Commands: commands,
			Scope:    scopeModel,
		})
		result[menuScope] = err
		if err != nil {
			log.WarnContext(ctx, "Failed to sync command menu", "scope", menuScope, "error", err)
		} else {
			log.DebugContext(ctx, "Synced command menu", "scope", menuScope, "commands", len(commands))
		}
	}
	return result
}

func scopeModel(s MenuScope) (models.BotCommandScope, error) {
	switch s {
	case ScopeAllPrivateChats:
		return &models.BotCommandScopeAllPrivateChats{}, nil
	case ScopeAllGroupChats:
		return &models.BotCommandScopeAllGroupChats{}, nil
	case ScopeAllChatAdministrators:
		return &models.BotCommandScopeAllChatAdministrators{}, nil
	}
	return nil, fmt.Errorf("unknown menu scope %q", s)
}
