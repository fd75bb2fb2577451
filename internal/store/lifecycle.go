package store

import (
	"errors"
	"fmt"
	"time"
)

// Sentinel errors shared across the store layer.
var (
	ErrNotFound          = errors.New("not found")
	ErrIllegalTransition = errors.New("illegal state transition")
	ErrRetryExhausted    = errors.New("retry limit exhausted")
)

// AggregateFailureMessage is recorded on the entity when at least one
// platform failed; the per-platform detail stays queryable alongside it.
const AggregateFailureMessage = "one or more platforms failed to publish"

// The transition functions below are the state machine of a scheduled
// post. They mutate the in-memory entity only; the postgres layer
// enforces the same guards with conditional updates so the two can
// never disagree about a transition's legality.

// MarkPublishing claims the post for dispatch. Legal only from scheduled.
func (p *ScheduledPost) MarkPublishing(now time.Time) error {
	if p.Status != PostStatusScheduled {
		return fmt.Errorf("mark publishing from %q: %w", p.Status, ErrIllegalTransition)
	}
	p.Status = PostStatusPublishing
	p.UpdatedAt = now
	return nil
}

// MarkPublished records an all-platforms-succeeded outcome.
// Legal only from publishing.
func (p *ScheduledPost) MarkPublished(results map[string]PlatformResult, now time.Time) error {
	if p.Status != PostStatusPublishing {
		return fmt.Errorf("mark published from %q: %w", p.Status, ErrIllegalTransition)
	}
	p.Status = PostStatusPublished
	p.Results = results
	p.PublishedAt = &now
	p.NextRetryAt = nil
	p.ErrorMessage = nil
	p.UpdatedAt = now
	return nil
}

// MarkFailed records a failed dispatch with whatever per-platform
// results accumulated before the failure. Legal only from publishing.
func (p *ScheduledPost) MarkFailed(results map[string]PlatformResult, message string, now time.Time) error {
	if p.Status != PostStatusPublishing {
		return fmt.Errorf("mark failed from %q: %w", p.Status, ErrIllegalTransition)
	}
	p.Status = PostStatusFailed
	p.Results = results
	p.ErrorMessage = &message
	p.UpdatedAt = now
	return nil
}

// ScheduleRetry re-enters the schedule after a failure. Legal only from
// failed with retries remaining. nextRetryAt is computed by the retry
// scheduler from the fixed backoff table.
func (p *ScheduledPost) ScheduleRetry(nextRetryAt, now time.Time) error {
	if p.Status != PostStatusFailed {
		return fmt.Errorf("schedule retry from %q: %w", p.Status, ErrIllegalTransition)
	}
	if p.RetryCount >= MaxRetries {
		return ErrRetryExhausted
	}
	p.RetryCount++
	p.NextRetryAt = &nextRetryAt
	p.Status = PostStatusScheduled
	p.UpdatedAt = now
	return nil
}

// Cancel is the manual cancellation path. Legal only from scheduled;
// a publishing post runs to completion.
func (p *ScheduledPost) Cancel(now time.Time) error {
	if p.Status != PostStatusScheduled {
		return fmt.Errorf("cancel from %q: %w", p.Status, ErrIllegalTransition)
	}
	p.Status = PostStatusCancelled
	p.UpdatedAt = now
	return nil
}

// Reschedule is the manual override of the retry scheduler. Legal from
// scheduled and from failed (including retry-exhausted failed, which is
// the operator's recovery path); retry bookkeeping is reset.
func (p *ScheduledPost) Reschedule(newTime, now time.Time) error {
	switch p.Status {
	case PostStatusScheduled, PostStatusFailed:
	default:
		return fmt.Errorf("reschedule from %q: %w", p.Status, ErrIllegalTransition)
	}
	p.Status = PostStatusScheduled
	p.ScheduledAt = newTime
	p.RetryCount = 0
	p.NextRetryAt = nil
	p.UpdatedAt = now
	return nil
}

// Approve records the preview approval gate.
func (p *ScheduledPost) Approve(approvedBy, notes string, now time.Time) {
	p.PreviewApproved = true
	p.ApprovedBy = &approvedBy
	p.ApprovedAt = &now
	if notes != "" {
		p.ApprovalNotes = &notes
	}
	p.UpdatedAt = now
}
