package port

import (
	"context"
	"time"
)

// RateLimitStore records login and recovery attempts in a sliding window
// keyed by identifier. Counting and trimming are relative to a caller
// supplied reference time so the window is testable.
type RateLimitStore interface {
	// RecordAttempt appends an attempt at the given instant.
	RecordAttempt(ctx context.Context, identifier string, at time.Time) error
	// CountAttempts returns how many attempts fall inside the window.
	CountAttempts(ctx context.Context, identifier string, window time.Duration, reference time.Time) (int, error)
	// TrimWindow drops attempts older than the window.
	TrimWindow(ctx context.Context, identifier string, window time.Duration, reference time.Time) error
	// OldestAttempt returns the earliest attempt still inside the window.
	OldestAttempt(ctx context.Context, identifier string, window time.Duration, reference time.Time) (time.Time, bool, error)
}
