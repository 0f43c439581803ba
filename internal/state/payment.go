package state

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/api/internal/enum"
)

// Subtotal is the sum of line.UnitPrice * line.Quantity over the table's
// active lines.
func (c *Container) Subtotal(table int) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return subtotalOf(c.orders[table])
}

// TotalWithDiscount is max(0, subtotal - discount). A discount never
// produces a negative total.
func (c *Container) TotalWithDiscount(table int) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := subtotalOf(c.orders[table]).Sub(c.discounts[table])
	if total.IsNegative() {
		return decimal.Zero
	}
	return total
}

// Discount returns the table's active absolute discount (zero when unset).
func (c *Container) Discount(table int) decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.discounts[table]
}

// SetDiscount stores an absolute currency discount against the table's
// current subtotal. The rationale (employee vs client) is not persisted;
// only the resulting amount survives.
func (c *Container) SetDiscount(table int, amount decimal.Decimal) error {
	if table <= 0 {
		return ErrInvalidTable
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if amount.IsZero() {
		delete(c.discounts, table)
	} else {
		c.discounts[table] = amount
	}
	c.dirty(enum.SectionTableDiscounts)
	return nil
}

// ClearDiscount removes the table's discount.
func (c *Container) ClearDiscount(table int) error {
	return c.SetDiscount(table, decimal.Zero)
}

// PayItems settles lines on a table and appends a PaymentRecord to its
// history.
//
// ids == nil pays the full table: the whole stored discount is used and
// the table plus its discount are cleared. A non-nil ids slice pays only
// the named lines; the discount is allocated proportionally as
// discount * (partialSubtotal / tableSubtotal), the remaining lines stay
// active, and the discount is cleared only when nothing remains.
//
// An empty selection (no ids matching an active line) is a no-op and
// returns a nil record: zero-value history entries are never created.
func (c *Container) PayItems(table int, ids []uuid.UUID) (*PaymentRecord, error) {
	if table <= 0 {
		return nil, ErrInvalidTable
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.orders[table]
	if len(lines) == 0 {
		return nil, nil
	}

	tableSubtotal := subtotalOf(lines)
	tableDiscount := c.discounts[table]

	var paid, remaining []Line
	if ids == nil {
		paid = lines
	} else {
		selected := make(map[uuid.UUID]bool, len(ids))
		for _, id := range ids {
			selected[id] = true
		}
		for _, l := range lines {
			if selected[l.ID] {
				paid = append(paid, l)
			} else {
				remaining = append(remaining, l)
			}
		}
	}
	if len(paid) == 0 {
		return nil, nil
	}

	subtotal := subtotalOf(paid)

	var discount decimal.Decimal
	if ids == nil {
		discount = tableDiscount
	} else if !tableSubtotal.IsZero() {
		discount = tableDiscount.Mul(subtotal).Div(tableSubtotal)
	}

	total := subtotal.Sub(discount)
	if total.IsNegative() {
		total = decimal.Zero
	}

	record := PaymentRecord{
		ID:       uuid.New(),
		Table:    table,
		Items:    copyLines(paid),
		Subtotal: subtotal,
		Discount: discount,
		Total:    total,
		PaidAt:   c.now().UTC(),
	}
	c.history[table] = append(c.history[table], record)

	if len(remaining) == 0 {
		delete(c.orders, table)
		delete(c.discounts, table)
	} else {
		c.orders[table] = remaining
	}

	c.dirty(enum.SectionTableOrders, enum.SectionTableDiscounts, enum.SectionTableHistory)
	return &record, nil
}

// History returns a copy of the table's payment records in append order.
func (c *Container) History(table int) []PaymentRecord {
	c.mu.Lock()
	defer c.mu.Unlock()
	records := c.history[table]
	if len(records) == 0 {
		return nil
	}
	out := make([]PaymentRecord, len(records))
	copy(out, records)
	return out
}

func subtotalOf(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity))))
	}
	return sum
}
