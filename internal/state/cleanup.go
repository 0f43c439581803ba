package state

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/api/internal/enum"
)

// ResetDay wipes the active service state: orders, discounts, kitchen
// timestamps, completion flags and comments. Payment history is preserved.
// Unpaid lines are discarded with no recovery; the log line is the only
// trace of the wipe.
func (c *Container) ResetDay() {
	c.mu.Lock()
	dropped := len(c.orders)
	c.orders = make(map[int][]Line)
	c.discounts = make(map[int]decimal.Decimal)
	c.sentAt = make(map[int][]int64)
	c.completed = make(map[int]map[int64]bool)
	c.comments = make(map[int]map[int64]string)
	c.mu.Unlock()

	c.dirty(
		enum.SectionTableOrders,
		enum.SectionTableDiscounts,
		enum.SectionKitchenTimestamps,
		enum.SectionKitchenCompleted,
		enum.SectionKitchenComments,
	)
	log.Printf("daily cleanup: wiped active state for %d tables, history preserved", dropped)
}

// CleanupLoop drives the date-rollover wipe. Two states: Idle while the
// cached date matches the wall clock, CleanupPending when a YYYY-MM-DD
// mismatch is detected; the transition back to Idle runs ResetDay and
// re-caches the date.
type CleanupLoop struct {
	container *Container
	interval  time.Duration
	now       func() time.Time
	onCleanup func() // optional, metrics and persistence hook

	mu       sync.Mutex
	lastDate string
}

// NewCleanupLoop creates a loop polling at interval. now defaults to
// time.Now.
func NewCleanupLoop(c *Container, interval time.Duration, now func() time.Time) *CleanupLoop {
	if now == nil {
		now = time.Now
	}
	return &CleanupLoop{
		container: c,
		interval:  interval,
		lastDate:  now().Format("2006-01-02"),
		now:       now,
	}
}

// OnCleanup registers a callback invoked after each wipe.
func (l *CleanupLoop) OnCleanup(fn func()) { l.onCleanup = fn }

// LastDate returns the cached YYYY-MM-DD service date.
func (l *CleanupLoop) LastDate() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.lastDate
}

// Restore replaces the cached date with a persisted one, so a restart
// across midnight still triggers the wipe on the next tick. Empty input
// keeps the wall-clock default.
func (l *CleanupLoop) Restore(date string) {
	if date == "" {
		return
	}
	l.mu.Lock()
	l.lastDate = date
	l.mu.Unlock()
}

// Run polls until ctx is cancelled.
func (l *CleanupLoop) Run(ctx context.Context) {
	ticker := time.NewTicker(l.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			l.Tick()
		}
	}
}

// Tick performs one poll. Returns true when a rollover wipe ran.
func (l *CleanupLoop) Tick() bool {
	today := l.now().Format("2006-01-02")
	l.mu.Lock()
	if today == l.lastDate {
		l.mu.Unlock()
		return false
	}
	// CleanupPending: cached date no longer matches the wall clock.
	l.lastDate = today
	l.mu.Unlock()

	l.container.ResetDay()
	if l.onCleanup != nil {
		l.onCleanup()
	}
	return true
}
