// Package handlers implements the bot's command handlers and the chat
// fall-through for non-command text.
package handlers

import (
	"log/slog"

	"scopebot/internal/ai"
	"scopebot/internal/command"
	"scopebot/internal/config"
	"scopebot/internal/database"
	"scopebot/internal/history"
	"scopebot/internal/usage"
	"scopebot/internal/userconfig"
	"scopebot/internal/version"
)

// HandlerDeps provides dependencies for command handlers.
type HandlerDeps struct {
	Logger    *slog.Logger
	Config    *config.Config
	KV        database.KV
	Configs   *userconfig.Store
	Histories *history.Store
	Usage     *usage.Tracker
	AI        ai.Client
	Replier   command.Replier
	Versions  *version.Checker
}
