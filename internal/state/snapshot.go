package state

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/comanda-pos/api/internal/enum"
)

// Section marshals one persistence section as a JSON blob. Table numbers
// are map keys; Go encodes int-keyed maps as string object keys and decodes
// them back to ints, which keeps the stored form canonical.
func (c *Container) Section(section string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch section {
	case enum.SectionTableOrders:
		return json.Marshal(c.orders)
	case enum.SectionTableDiscounts:
		return json.Marshal(c.discounts)
	case enum.SectionTableHistory:
		return json.Marshal(c.history)
	case enum.SectionKitchenTimestamps:
		return json.Marshal(c.sentAt)
	case enum.SectionKitchenCompleted:
		return json.Marshal(c.completed)
	case enum.SectionKitchenComments:
		return json.Marshal(c.comments)
	}
	return nil, fmt.Errorf("unknown state section %q", section)
}

// LoadSection replaces one section's contents from a persisted JSON blob.
// Empty blobs leave the section empty.
func (c *Container) LoadSection(section string, data []byte) error {
	if len(data) == 0 {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	switch section {
	case enum.SectionTableOrders:
		orders := make(map[int][]Line)
		if err := json.Unmarshal(data, &orders); err != nil {
			return fmt.Errorf("load %s: %w", section, err)
		}
		c.orders = orders
	case enum.SectionTableDiscounts:
		discounts := make(map[int]decimal.Decimal)
		if err := json.Unmarshal(data, &discounts); err != nil {
			return fmt.Errorf("load %s: %w", section, err)
		}
		c.discounts = discounts
	case enum.SectionTableHistory:
		history := make(map[int][]PaymentRecord)
		if err := json.Unmarshal(data, &history); err != nil {
			return fmt.Errorf("load %s: %w", section, err)
		}
		c.history = history
	case enum.SectionKitchenTimestamps:
		sentAt := make(map[int][]int64)
		if err := json.Unmarshal(data, &sentAt); err != nil {
			return fmt.Errorf("load %s: %w", section, err)
		}
		c.sentAt = sentAt
	case enum.SectionKitchenCompleted:
		completed := make(map[int]map[int64]bool)
		if err := json.Unmarshal(data, &completed); err != nil {
			return fmt.Errorf("load %s: %w", section, err)
		}
		c.completed = completed
	case enum.SectionKitchenComments:
		comments := make(map[int]map[int64]string)
		if err := json.Unmarshal(data, &comments); err != nil {
			return fmt.Errorf("load %s: %w", section, err)
		}
		c.comments = comments
	default:
		return fmt.Errorf("unknown state section %q", section)
	}
	return nil
}

// Sections lists the persistence sections owned by the container.
func Sections() []string {
	return []string{
		enum.SectionTableOrders,
		enum.SectionTableDiscounts,
		enum.SectionTableHistory,
		enum.SectionKitchenTimestamps,
		enum.SectionKitchenCompleted,
		enum.SectionKitchenComments,
	}
}
