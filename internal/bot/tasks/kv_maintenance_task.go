package tasks

import (
	"context"
	"fmt"
	"time"
)

// newKVMaintenanceTask creates the scheduled task that compacts the
// key/value database.
func newKVMaintenanceTask(deps TaskDeps) ScheduledTaskFunc {
	log := deps.Logger.With("task", "kv_maintenance")

	return func(ctx context.Context) error {
		log.InfoContext(ctx, "Starting scheduled KV maintenance task...")
		startTime := time.Now()

		err := deps.Store.RunMaintenance(ctx)

		duration := time.Since(startTime)

		if err != nil {
			log.ErrorContext(ctx, "KV maintenance task failed", "error", err, "duration", duration)

			return fmt.Errorf("kv maintenance failed: %w", err)
		}

		log.InfoContext(ctx, "Scheduled KV maintenance task completed successfully", "duration", duration)
		return nil
	}
}
