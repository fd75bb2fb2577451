package publish

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"postflow/internal/store"
)

// Dispatcher fans one scheduled post out to its target platforms. It
// always attempts every platform and joins all outcomes before
// aggregating, so a failure on one platform never abandons the others
// and operators get complete diagnostic data on partial failure.
type Dispatcher struct {
	registry *Registry
	timeout  time.Duration
	logger   *slog.Logger
	tracer   trace.Tracer
	now      func() time.Time
}

// NewDispatcher creates a dispatcher. timeout bounds each per-platform
// adapter call; a hanging adapter is recorded as that platform's
// failure instead of starving the rest of the queue.
func NewDispatcher(registry *Registry, timeout time.Duration, logger *slog.Logger) *Dispatcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		registry: registry,
		timeout:  timeout,
		logger:   logger,
		tracer:   otel.Tracer("postflow-dispatcher"),
		now:      time.Now,
	}
}

// Dispatch publishes content to every platform of the post concurrently
// and returns the full per-platform result map plus the aggregate
// outcome: ok is true only if every platform succeeded.
func (d *Dispatcher) Dispatch(ctx context.Context, post *store.ScheduledPost, content *store.Content) (map[string]store.PlatformResult, bool) {
	ctx, span := d.tracer.Start(ctx, "dispatch",
		trace.WithAttributes(
			attribute.String("post.id", post.ID.String()),
			attribute.String("tenant.id", post.TenantID.String()),
			attribute.Int("platform.count", len(post.Platforms)),
		),
	)
	defer span.End()

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results = make(map[string]store.PlatformResult, len(post.Platforms))
	)

	for _, platform := range post.Platforms {
		wg.Add(1)
		go func(platform string) {
			defer wg.Done()
			result := d.publishOne(ctx, platform, post, content)
			mu.Lock()
			results[platform] = result
			mu.Unlock()
		}(platform)
	}

	// Join: the post never leaves publishing before every platform
	// attempt has finished.
	wg.Wait()

	ok := Aggregate(results)
	span.SetAttributes(attribute.Bool("dispatch.success", ok))
	return results, ok
}

func (d *Dispatcher) publishOne(ctx context.Context, platform string, post *store.ScheduledPost, content *store.Content) store.PlatformResult {
	adapter, err := d.registry.Resolve(platform)
	if err != nil {
		return store.PlatformResult{Error: err.Error(), Timestamp: d.now()}
	}

	callCtx, cancel := context.WithTimeout(ctx, d.timeout)
	defer cancel()

	postID, err := adapter.Publish(callCtx, content, post.PlatformConfigs[platform])
	if err != nil {
		d.logger.Warn("platform publish failed",
			"post_id", post.ID, "tenant_id", post.TenantID,
			"platform", platform, "error", err)
		msg := err.Error()
		if callCtx.Err() == context.DeadlineExceeded {
			msg = "timeout"
		}
		return store.PlatformResult{Error: msg, Timestamp: d.now()}
	}

	return store.PlatformResult{Success: true, PlatformPostID: postID, Timestamp: d.now()}
}

// Aggregate applies the attempt-all, aggregate-AND policy: the overall
// outcome is success only if every per-platform result succeeded.
func Aggregate(results map[string]store.PlatformResult) bool {
	if len(results) == 0 {
		return false
	}
	for _, r := range results {
		if !r.Success {
			return false
		}
	}
	return true
}
