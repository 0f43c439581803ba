// Package state owns all live table state: active orders, discounts,
// payment history and kitchen tracking. A single Container instance is
// constructed at process start and shared by reference; persistence is a
// side effect signalled through the Journal hook, never a second owner.
package state

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/menu"
)

// Errors returned by container operations.
var (
	ErrInvalidTable = errors.New("table number must be a positive integer")
	ErrLineNotFound = errors.New("order line not found")
	ErrSameTable    = errors.New("source and destination table are the same")
	ErrEmptySource  = errors.New("source table has no orders")
)

// Line is one line within a table's active order. Extras are an unordered
// set; two lines with the same item, extras multiset and drink coalesce.
type Line struct {
	ID        uuid.UUID       `json:"id"`
	ItemID    string          `json:"item_id"`
	Name      string          `json:"name"`
	Category  string          `json:"category"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Quantity  int             `json:"quantity"`
	Extras    []string        `json:"extras,omitempty"`
	Drink     string          `json:"drink,omitempty"`
	SentAt    *time.Time      `json:"kitchen_sent_at,omitempty"`
	Ready     bool            `json:"kitchen_ready"`
	ReadyAt   *time.Time      `json:"kitchen_ready_at,omitempty"`
}

// PaymentRecord is an immutable snapshot appended to a table's history at
// payment time. History is never truncated by the daily cleanup.
type PaymentRecord struct {
	ID       uuid.UUID       `json:"id"`
	Table    int             `json:"table"`
	Items    []Line          `json:"items"`
	Subtotal decimal.Decimal `json:"subtotal"`
	Discount decimal.Decimal `json:"discount"`
	Total    decimal.Decimal `json:"total"`
	PaidAt   time.Time       `json:"paid_at"`
}

// Journal receives dirty-section notifications after each mutation. The
// outbox implements it; a nil journal is valid (tests, seed tool).
type Journal interface {
	MarkDirty(section string)
}

// Container is the single owner of all table state.
type Container struct {
	mu         sync.Mutex
	orders     map[int][]Line
	discounts  map[int]decimal.Decimal
	history    map[int][]PaymentRecord
	sentAt     map[int][]int64 // unix millis, one per send-to-kitchen event
	completed  map[int]map[int64]bool
	comments   map[int]map[int64]string
	extraPrice decimal.Decimal
	journal    Journal
	now        func() time.Time
}

// Option configures a Container.
type Option func(*Container)

// WithJournal attaches a persistence journal.
func WithJournal(j Journal) Option {
	return func(c *Container) { c.journal = j }
}

// WithExtraPrice overrides the per-extra surcharge (default 1.00).
func WithExtraPrice(p decimal.Decimal) Option {
	return func(c *Container) { c.extraPrice = p }
}

// WithClock overrides the wall clock (tests).
func WithClock(now func() time.Time) Option {
	return func(c *Container) { c.now = now }
}

// NewContainer creates an empty container.
func NewContainer(opts ...Option) *Container {
	c := &Container{
		orders:     make(map[int][]Line),
		discounts:  make(map[int]decimal.Decimal),
		history:    make(map[int][]PaymentRecord),
		sentAt:     make(map[int][]int64),
		completed:  make(map[int]map[int64]bool),
		comments:   make(map[int]map[int64]string),
		extraPrice: decimal.New(1, 0),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Container) dirty(sections ...string) {
	if c.journal == nil {
		return
	}
	for _, s := range sections {
		c.journal.MarkDirty(s)
	}
}

// AddItem adds one unit of item to the table's order. Unit price is the
// item price plus len(extras)*extraPrice, extras surcharge applying to
// MAIN_DISHES only. A line matching on (item, extras multiset, drink) gets
// its quantity incremented instead of a duplicate line.
func (c *Container) AddItem(table int, item menu.Item, extras []string, drink string) (Line, error) {
	if table <= 0 {
		return Line{}, ErrInvalidTable
	}

	unitPrice := item.Price
	if item.Category == enum.CategoryMainDishes && len(extras) > 0 {
		surcharge := c.extraPrice.Mul(decimal.NewFromInt(int64(len(extras))))
		unitPrice = unitPrice.Add(surcharge)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	lines := c.orders[table]
	for i := range lines {
		if lines[i].ItemID == item.ID && lines[i].Drink == drink && sameExtras(lines[i].Extras, extras) {
			lines[i].Quantity++
			c.orders[table] = lines
			c.dirty(enum.SectionTableOrders)
			return lines[i], nil
		}
	}

	line := Line{
		ID:        uuid.New(),
		ItemID:    item.ID,
		Name:      item.Name.ES,
		Category:  item.Category,
		UnitPrice: unitPrice,
		Quantity:  1,
		Extras:    append([]string(nil), extras...),
		Drink:     drink,
	}
	c.orders[table] = append(lines, line)
	c.dirty(enum.SectionTableOrders)
	return line, nil
}

// RemoveItem deletes the line from the table's order. Removing a line that
// does not exist is a no-op.
func (c *Container) RemoveItem(table int, lineID uuid.UUID) error {
	if table <= 0 {
		return ErrInvalidTable
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.removeLocked(table, lineID)
	return nil
}

func (c *Container) removeLocked(table int, lineID uuid.UUID) {
	lines := c.orders[table]
	kept := lines[:0]
	for _, l := range lines {
		if l.ID != lineID {
			kept = append(kept, l)
		}
	}
	if len(kept) == 0 {
		delete(c.orders, table)
	} else {
		c.orders[table] = kept
	}
	c.dirty(enum.SectionTableOrders)
}

// SetQuantity replaces a line's quantity. A quantity of zero or less
// removes the line.
func (c *Container) SetQuantity(table int, lineID uuid.UUID, qty int) error {
	if table <= 0 {
		return ErrInvalidTable
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if qty <= 0 {
		c.removeLocked(table, lineID)
		return nil
	}

	lines := c.orders[table]
	for i := range lines {
		if lines[i].ID == lineID {
			lines[i].Quantity = qty
			c.orders[table] = lines
			c.dirty(enum.SectionTableOrders)
			return nil
		}
	}
	return ErrLineNotFound
}

// ClearTable drops the table's active order and discount. History and
// kitchen tracking are untouched.
func (c *Container) ClearTable(table int) error {
	if table <= 0 {
		return ErrInvalidTable
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.orders, table)
	delete(c.discounts, table)
	c.dirty(enum.SectionTableOrders, enum.SectionTableDiscounts)
	return nil
}

// MoveTable concatenates the source table's lines onto the destination
// (call order preserved across repeated merges) and removes the source.
// The source discount is added to, not overwritten over, the destination's.
func (c *Container) MoveTable(from, to int) error {
	if from <= 0 || to <= 0 {
		return ErrInvalidTable
	}
	if from == to {
		return ErrSameTable
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	src := c.orders[from]
	if len(src) == 0 {
		return ErrEmptySource
	}

	c.orders[to] = append(c.orders[to], src...)
	delete(c.orders, from)

	if d, ok := c.discounts[from]; ok {
		c.discounts[to] = c.discounts[to].Add(d)
		delete(c.discounts, from)
	}

	c.dirty(enum.SectionTableOrders, enum.SectionTableDiscounts)
	return nil
}

// Orders returns a copy of the table's active lines.
func (c *Container) Orders(table int) []Line {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyLines(c.orders[table])
}

// Occupied reports whether the table has at least one active line.
func (c *Container) Occupied(table int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.orders[table]) > 0
}

// OccupiedTables returns the sorted list of tables with active orders.
func (c *Container) OccupiedTables() []int {
	c.mu.Lock()
	defer c.mu.Unlock()
	tables := make([]int, 0, len(c.orders))
	for t, lines := range c.orders {
		if len(lines) > 0 {
			tables = append(tables, t)
		}
	}
	sort.Ints(tables)
	return tables
}

// sameExtras compares extras as unordered multisets, so
// ["gambas","pollo"] matches ["pollo","gambas"].
func sameExtras(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	if len(a) == 0 {
		return true
	}
	as := append([]string(nil), a...)
	bs := append([]string(nil), b...)
	sort.Strings(as)
	sort.Strings(bs)
	for i := range as {
		if as[i] != bs[i] {
			return false
		}
	}
	return true
}

func copyLines(lines []Line) []Line {
	if len(lines) == 0 {
		return nil
	}
	out := make([]Line, len(lines))
	copy(out, lines)
	for i := range out {
		out[i].Extras = append([]string(nil), out[i].Extras...)
	}
	return out
}
