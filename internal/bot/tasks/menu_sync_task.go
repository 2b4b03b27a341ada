package tasks

import (
	"context"
	"fmt"
	"time"

	"scopebot/internal/command"
)

// newMenuSyncTask creates the scheduled task that republishes the command
// menus to Telegram. Commands change only at startup, but periodic syncing
// repairs menus after Telegram-side resets or a failed initial publish.
func newMenuSyncTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "menu_sync")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled menu sync task...")
		startTime := time.Now()

		results := command.SyncMenu(ctx, deps.Menu, deps.Registry, deps.Config.Bot.HideCommands, log)

		failed := 0
		for scope, err := range results {
			if err != nil {
				failed++
				log.ErrorContext(ctx, "Menu sync failed for scope", "scope", scope, "error", err)
			}
		}

		duration := time.Since(startTime)
		if failed > 0 {
			return fmt.Errorf("menu sync failed for %d of %d scopes", failed, len(results))
		}

		log.InfoContext(ctx, "Scheduled menu sync task completed successfully", "scopes", len(results), "duration", duration)
		return nil
	}
}
