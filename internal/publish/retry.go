package publish

import (
	"time"

	"postflow/internal/store"
)

// retryDelays is the fixed backoff table, indexed by the retry count
// before the increment: first retry after 5 minutes, second after 15,
// third after 60. Not configurable per tenant.
var retryDelays = []time.Duration{
	5 * time.Minute,
	15 * time.Minute,
	60 * time.Minute,
}

// RetryEligible is the pure retry decision: a post may retry iff it is
// failed with retries remaining. Transient and permanent per-platform
// failures are treated alike; the ceiling is the only stop condition.
func RetryEligible(status store.PostStatus, retryCount int) bool {
	return status == store.PostStatusFailed && retryCount < store.MaxRetries
}

// RetryDelay returns the backoff for the given pre-increment retry
// count. The last table value repeats if the table is exhausted.
func RetryDelay(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	if retryCount >= len(retryDelays) {
		return retryDelays[len(retryDelays)-1]
	}
	return retryDelays[retryCount]
}

// NextRetryAt computes when a failed post becomes due again.
func NextRetryAt(now time.Time, retryCount int) time.Time {
	return now.Add(RetryDelay(retryCount))
}
