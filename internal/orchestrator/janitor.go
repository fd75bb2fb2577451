package orchestrator

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"postflow/internal/store"
)

// Janitor prunes terminal posts past the retention window on a cron
// schedule. It runs inside the orchestrator process; pruning is
// best-effort and never touches non-terminal or retry-exhausted posts.
type Janitor struct {
	queue     store.ScheduleQueue
	retention time.Duration
	logger    *slog.Logger
	cron      *cron.Cron
}

// NewJanitor creates a janitor with the given retention window.
func NewJanitor(queue store.ScheduleQueue, retention time.Duration, logger *slog.Logger) *Janitor {
	return &Janitor{
		queue:     queue,
		retention: retention,
		logger:    logger,
		cron:      cron.New(),
	}
}

// Start schedules the hourly prune. Returns an error only if the cron
// expression fails to parse.
func (j *Janitor) Start() error {
	_, err := j.cron.AddFunc("@every 1h", j.prune)
	if err != nil {
		return err
	}
	j.cron.Start()
	return nil
}

// Stop stops the cron scheduler and waits for a running prune.
func (j *Janitor) Stop() {
	ctx := j.cron.Stop()
	<-ctx.Done()
}

func (j *Janitor) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().Add(-j.retention)
	n, err := j.queue.PruneTerminal(ctx, cutoff)
	if err != nil {
		j.logger.Error("prune failed", "error", err)
		return
	}
	if n > 0 {
		j.logger.Info("pruned terminal posts", "count", n, "older_than", cutoff)
	}
}
