package state

import (
	"github.com/google/uuid"

	"github.com/comanda-pos/api/internal/enum"
)

// MarkSent records a send-to-kitchen event for the table: the timestamp is
// appended (never overwritten, so successive sends stack their own timers)
// and lines not yet dispatched get their SentAt stamped. Returns the new
// timestamp in unix milliseconds for correlation with comments and
// completion flags.
func (c *Container) MarkSent(table int) (int64, error) {
	if table <= 0 {
		return 0, ErrInvalidTable
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	ts := now.UnixMilli()
	c.sentAt[table] = append(c.sentAt[table], ts)

	lines := c.orders[table]
	for i := range lines {
		if lines[i].SentAt == nil {
			t := now
			lines[i].SentAt = &t
		}
	}
	if len(lines) > 0 {
		c.orders[table] = lines
	}

	c.dirty(enum.SectionKitchenTimestamps, enum.SectionTableOrders)
	return ts, nil
}

// LastSent returns the most recent send timestamp for the table.
func (c *Container) LastSent(table int) (int64, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	stamps := c.sentAt[table]
	if len(stamps) == 0 {
		return 0, false
	}
	return stamps[len(stamps)-1], true
}

// SentTimestamps returns all send timestamps for the table, oldest first.
func (c *Container) SentTimestamps(table int) []int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int64(nil), c.sentAt[table]...)
}

// ToggleReady flips the line's kitchen-ready flag, setting or clearing
// ReadyAt to match. Toggling twice restores the original state.
func (c *Container) ToggleReady(table int, lineID uuid.UUID) (Line, error) {
	if table <= 0 {
		return Line{}, ErrInvalidTable
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.orders[table]
	for i := range lines {
		if lines[i].ID != lineID {
			continue
		}
		lines[i].Ready = !lines[i].Ready
		if lines[i].Ready {
			t := c.now()
			lines[i].ReadyAt = &t
		} else {
			lines[i].ReadyAt = nil
		}
		c.orders[table] = lines
		c.dirty(enum.SectionTableOrders)
		return lines[i], nil
	}
	return Line{}, ErrLineNotFound
}

// SetCompleted flags a send-to-kitchen event as done.
func (c *Container) SetCompleted(table int, ts int64, done bool) error {
	if table <= 0 {
		return ErrInvalidTable
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.completed[table] == nil {
		c.completed[table] = make(map[int64]bool)
	}
	c.completed[table][ts] = done
	c.dirty(enum.SectionKitchenCompleted)
	return nil
}

// IsCompleted reports whether the send event has been flagged done.
func (c *Container) IsCompleted(table int, ts int64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.completed[table][ts]
}

// SetComment associates a free-text comment with a send event.
func (c *Container) SetComment(table int, ts int64, comment string) error {
	if table <= 0 {
		return ErrInvalidTable
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.comments[table] == nil {
		c.comments[table] = make(map[int64]string)
	}
	c.comments[table][ts] = comment
	c.dirty(enum.SectionKitchenComments)
	return nil
}

// Comment returns the comment attached to a send event, if any.
func (c *Container) Comment(table int, ts int64) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	comment, ok := c.comments[table][ts]
	return comment, ok
}
