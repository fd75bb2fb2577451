// Package orchestrator runs the time-driven publishing loop: it polls
// for due posts, claims them, dispatches to the target platforms and
// applies the retry or terminal transition.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"

	"postflow/internal/publish"
	"postflow/internal/store"
)

// Config holds configuration for the orchestrator.
type Config struct {
	ID           string
	Concurrency  int
	TickInterval time.Duration
	MaxBackoff   time.Duration // Maximum backoff when queue is empty (default: 30s)
	// TenantIDs optionally restricts this orchestrator to specific
	// tenants. Empty means all tenants.
	TenantIDs []uuid.UUID
}

// Orchestrator coordinates claim, dispatch and state transitions. All
// cross-process coordination goes through the store's atomic claim;
// multiple orchestrator processes can run side by side.
type Orchestrator struct {
	queue      store.ScheduleQueue
	contents   store.ContentStore
	dispatcher *publish.Dispatcher
	config     Config
	logger     *slog.Logger
	now        func() time.Time

	published metric.Int64Counter
	failed    metric.Int64Counter
	retried   metric.Int64Counter
}

// New creates a new orchestrator.
func New(queue store.ScheduleQueue, contents store.ContentStore, dispatcher *publish.Dispatcher, config Config, logger *slog.Logger) *Orchestrator {
	if config.Concurrency <= 0 {
		config.Concurrency = 4
	}
	if config.TickInterval <= 0 {
		config.TickInterval = time.Second
	}
	if config.MaxBackoff <= 0 {
		config.MaxBackoff = 30 * time.Second
	}

	meter := otel.Meter("postflow-orchestrator")
	published, _ := meter.Int64Counter("postflow.posts.published")
	failed, _ := meter.Int64Counter("postflow.posts.failed")
	retried, _ := meter.Int64Counter("postflow.posts.retried")

	return &Orchestrator{
		queue:      queue,
		contents:   contents,
		dispatcher: dispatcher,
		config:     config,
		logger:     logger,
		now:        time.Now,
		published:  published,
		failed:     failed,
		retried:    retried,
	}
}

// Run starts the main tick loop. It blocks until the context is
// cancelled, then drains: in-flight posts run to completion so no
// entity is left mid-dispatch with ambiguous external state.
func (o *Orchestrator) Run(ctx context.Context) error {
	o.logger.Info("orchestrator starting",
		"id", o.config.ID, "concurrency", o.config.Concurrency, "tick", o.config.TickInterval)

	sem := make(chan struct{}, o.config.Concurrency)
	var wg sync.WaitGroup

	pollNow := make(chan struct{}, 1)
	currentBackoff := o.config.TickInterval

	triggerPoll := func() {
		select {
		case pollNow <- struct{}{}:
		default:
			// Already a poll pending
		}
	}

	triggerPoll()

	for {
		select {
		case <-ctx.Done():
			o.logger.Info("context cancelled, draining in-flight dispatches")
			wg.Wait()
			return ctx.Err()

		case <-time.After(currentBackoff):
			triggerPoll()

		case <-pollNow:
			availableSlots := o.config.Concurrency - len(sem)
			if availableSlots <= 0 {
				continue
			}

			items, err := o.queue.DueBatch(ctx, o.config.TenantIDs, availableSlots)
			if err != nil {
				o.logger.Error("due batch failed", "error", err)
				continue
			}

			if len(items) == 0 {
				// Empty queue: back off exponentially, capped.
				currentBackoff *= 2
				if currentBackoff > o.config.MaxBackoff {
					currentBackoff = o.config.MaxBackoff
				}
				continue
			}

			currentBackoff = o.config.TickInterval

			for _, item := range items {
				sem <- struct{}{}
				wg.Add(1)
				go func(item store.DueItem) {
					defer wg.Done()
					defer func() { <-sem }()
					// Dispatch must finish even if the loop is
					// shutting down.
					o.processOne(context.WithoutCancel(ctx), item)
				}(item)
			}

			// Work found: poll again immediately once slots free up.
			triggerPoll()
		}
	}
}

// processOne runs one post through claim -> dispatch -> transition.
// Every failure ends up in the post's persisted state; nothing is
// thrown out of the loop.
func (o *Orchestrator) processOne(ctx context.Context, item store.DueItem) {
	post, ok, err := o.queue.ClaimDue(ctx, item.PostID)
	if err != nil {
		o.logger.Error("claim failed", "post_id", item.PostID, "error", err)
		return
	}
	if !ok {
		// Another worker won the claim. Normal skip.
		return
	}

	logger := o.logger.With("post_id", post.ID, "tenant_id", post.TenantID)
	logger.Info("publishing", "platforms", post.Platforms, "retry_count", post.RetryCount)

	content, err := o.contents.GetContentByID(ctx, post.TenantID, post.ContentID)
	if err != nil {
		o.settleFailure(ctx, logger, post, nil, "content unavailable: "+err.Error())
		return
	}

	results, allOK := o.dispatcher.Dispatch(ctx, post, content)
	if allOK {
		if err := o.queue.MarkPublished(ctx, post.ID, results); err != nil {
			logger.Error("mark published failed", "error", err)
			return
		}
		o.published.Add(ctx, 1)
		logger.Info("published", "platforms", len(results))
		return
	}

	o.settleFailure(ctx, logger, post, results, store.AggregateFailureMessage)
}

// settleFailure records the failure and re-enters the schedule when
// retries remain. A post that has used its three retries stays
// terminally failed and is surfaced to operators for manual action.
func (o *Orchestrator) settleFailure(ctx context.Context, logger *slog.Logger, post *store.ScheduledPost, results map[string]store.PlatformResult, message string) {
	if err := o.queue.MarkFailed(ctx, post.ID, results, message); err != nil {
		logger.Error("mark failed failed", "error", err)
		return
	}
	o.failed.Add(ctx, 1)

	if !publish.RetryEligible(store.PostStatusFailed, post.RetryCount) {
		logger.Warn("retries exhausted, manual action required", "retry_count", post.RetryCount)
		return
	}

	nextRetryAt := publish.NextRetryAt(o.now(), post.RetryCount)
	err := o.queue.ScheduleRetry(ctx, post.ID, nextRetryAt)
	if errors.Is(err, store.ErrRetryExhausted) {
		logger.Warn("retries exhausted, manual action required", "retry_count", post.RetryCount)
		return
	}
	if err != nil {
		logger.Error("schedule retry failed", "error", err)
		return
	}
	o.retried.Add(ctx, 1)
	logger.Info("retry scheduled", "next_retry_at", nextRetryAt, "attempt", post.RetryCount+1)
}
