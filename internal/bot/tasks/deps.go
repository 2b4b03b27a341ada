// Package tasks defines the recurring maintenance tasks the scheduler runs.
package tasks

import (
	"log/slog"

	"scopebot/internal/command"
	"scopebot/internal/config"
	"scopebot/internal/database"
)

// TaskDeps contains all dependencies required by scheduled tasks.
type TaskDeps struct {
	Logger   *slog.Logger
	Store    database.Store
	Registry *command.Registry
	Menu     command.CommandMenuAPI
	Config   *config.Config
}
