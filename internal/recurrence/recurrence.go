// Package recurrence materializes concrete future occurrences from a
// repeat rule at creation time.
package recurrence

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"postflow/internal/store"
)

// Occurrences returns the timestamps that follow start under the given
// pattern, advancing one unit at a time until the advanced timestamp
// would exceed end. The start timestamp itself is not included.
// A zero end yields no occurrences: recurrence requires an explicit
// bound so generation is never unbounded.
func Occurrences(start time.Time, pattern store.RecurrencePattern, end time.Time) ([]time.Time, error) {
	if end.IsZero() {
		return nil, nil
	}

	var advance func(time.Time) time.Time
	switch pattern {
	case store.RecurrenceDaily:
		advance = func(t time.Time) time.Time { return t.AddDate(0, 0, 1) }
	case store.RecurrenceWeekly:
		advance = func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
	case store.RecurrenceMonthly:
		advance = func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	default:
		return nil, fmt.Errorf("unknown recurrence pattern %q", pattern)
	}

	var out []time.Time
	for t := advance(start); !t.After(end); t = advance(t) {
		out = append(out, t)
	}
	return out, nil
}

// Expand materializes the sibling posts of a recurring anchor. Each
// sibling copies the anchor's targeting and content reference but is
// never itself recurring and back-references the anchor, which prevents
// runaway fan-out. The anchor's own timestamp gets no sibling; the
// anchor is already persisted.
func Expand(anchor *store.ScheduledPost, now time.Time) ([]*store.ScheduledPost, error) {
	if !anchor.Recurring || anchor.RecurrencePattern == nil {
		return nil, nil
	}

	var end time.Time
	if anchor.RecurrenceEndDate != nil {
		end = *anchor.RecurrenceEndDate
	}

	times, err := Occurrences(anchor.ScheduledAt, *anchor.RecurrencePattern, end)
	if err != nil {
		return nil, err
	}

	siblings := make([]*store.ScheduledPost, 0, len(times))
	for _, at := range times {
		parentID := anchor.ID
		siblings = append(siblings, &store.ScheduledPost{
			ID:              uuid.New(),
			TenantID:        anchor.TenantID,
			ContentID:       anchor.ContentID,
			CreatedBy:       anchor.CreatedBy,
			Platforms:       append([]string(nil), anchor.Platforms...),
			PlatformConfigs: anchor.PlatformConfigs,
			ScheduledAt:     at,
			Recurring:       false,
			ParentID:        &parentID,
			Status:          store.PostStatusScheduled,
			CreatedAt:       now,
			UpdatedAt:       now,
		})
	}
	return siblings, nil
}
