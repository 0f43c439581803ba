package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/menu"
	"github.com/comanda-pos/api/internal/state"
)

// TableStore defines the container methods needed by table handlers.
// Satisfied by *state.Container; narrow interface for testability.
type TableStore interface {
	AddItem(table int, item menu.Item, extras []string, drink string) (state.Line, error)
	RemoveItem(table int, lineID uuid.UUID) error
	SetQuantity(table int, lineID uuid.UUID, qty int) error
	ClearTable(table int) error
	MoveTable(from, to int) error
	Orders(table int) []state.Line
	Occupied(table int) bool
	OccupiedTables() []int
	Subtotal(table int) decimal.Decimal
	TotalWithDiscount(table int) decimal.Decimal
	Discount(table int) decimal.Decimal
	SetDiscount(table int, amount decimal.Decimal) error
	ClearDiscount(table int) error
}

// ItemGetter resolves menu items for order lines.
type ItemGetter interface {
	Get(id string) (menu.Item, error)
}

// TableHandler handles table order endpoints.
type TableHandler struct {
	store   TableStore
	catalog ItemGetter
	obs     Observer
}

// Observer receives mutation notifications (metrics). May be nil.
type Observer interface {
	LineAdded()
	LineRemoved()
	TablesOccupied(n int)
}

// NewTableHandler creates a new TableHandler. obs may be nil.
func NewTableHandler(store TableStore, catalog ItemGetter, obs Observer) *TableHandler {
	return &TableHandler{store: store, catalog: catalog, obs: obs}
}

// RegisterRoutes registers table endpoints. Expected to be mounted inside
// a table-scoped subrouter: /tables/{table}
func (h *TableHandler) RegisterRoutes(r chi.Router) {
	r.Get("/", h.Get)
	r.Delete("/", h.Clear)
	r.Post("/items", h.AddItem)
	r.Delete("/items/{lineID}", h.RemoveItem)
	r.Patch("/items/{lineID}", h.UpdateQuantity)
	r.Post("/move", h.Move)
	r.Put("/discount", h.SetDiscount)
	r.Delete("/discount", h.ClearDiscount)
}

// --- Request / Response types ---

type addItemRequest struct {
	ItemID string   `json:"item_id"`
	Extras []string `json:"extras"`
	Drink  string   `json:"drink"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

type moveRequest struct {
	To int `json:"to"`
}

type discountRequest struct {
	Amount  string `json:"amount"`
	Percent string `json:"percent"`
}

type tableResponse struct {
	Table    int            `json:"table"`
	Zone     string         `json:"zone"`
	Occupied bool           `json:"occupied"`
	Lines    []lineResponse `json:"lines"`
	Subtotal string         `json:"subtotal"`
	Discount string         `json:"discount"`
	Total    string         `json:"total"`
}

type occupancyResponse struct {
	Occupied []int `json:"occupied"`
}

// --- Handlers ---

// ListOccupied handles GET /tables.
func (h *TableHandler) ListOccupied(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, occupancyResponse{Occupied: h.store.OccupiedTables()})
}

// Get handles GET /tables/{table}.
func (h *TableHandler) Get(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}
	writeJSON(w, http.StatusOK, h.tableResponse(table))
}

// AddItem handles POST /tables/{table}/items.
func (h *TableHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}
	if req.ItemID == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "item_id is required"})
		return
	}

	item, err := h.catalog.Get(req.ItemID)
	if err != nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "menu item not found"})
		return
	}
	if !item.Enabled {
		writeJSON(w, http.StatusConflict, map[string]string{"error": "menu item is disabled"})
		return
	}

	line, err := h.store.AddItem(table, item, req.Extras, req.Drink)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if h.obs != nil {
		h.obs.LineAdded()
		h.obs.TablesOccupied(len(h.store.OccupiedTables()))
	}
	writeJSON(w, http.StatusCreated, toLineResponse(line))
}

// RemoveItem handles DELETE /tables/{table}/items/{lineID}.
// Removing a line that does not exist is a no-op.
func (h *TableHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}

	lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid line ID"})
		return
	}

	if err := h.store.RemoveItem(table, lineID); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if h.obs != nil {
		h.obs.LineRemoved()
		h.obs.TablesOccupied(len(h.store.OccupiedTables()))
	}
	w.WriteHeader(http.StatusNoContent)
}

// UpdateQuantity handles PATCH /tables/{table}/items/{lineID}. A quantity
// of zero or less removes the line.
func (h *TableHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}

	lineID, err := uuid.Parse(chi.URLParam(r, "lineID"))
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid line ID"})
		return
	}

	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.store.SetQuantity(table, lineID, req.Quantity); err != nil {
		if errors.Is(err, state.ErrLineNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order line not found"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, h.tableResponse(table))
}

// Clear handles DELETE /tables/{table}.
func (h *TableHandler) Clear(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}

	if err := h.store.ClearTable(table); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if h.obs != nil {
		h.obs.TablesOccupied(len(h.store.OccupiedTables()))
	}
	w.WriteHeader(http.StatusNoContent)
}

// Move handles POST /tables/{table}/move. Lines are appended onto the
// destination and the source discount is summed into the destination's.
func (h *TableHandler) Move(w http.ResponseWriter, r *http.Request) {
	from, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.store.MoveTable(from, req.To); err != nil {
		switch {
		case errors.Is(err, state.ErrSameTable):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "source and destination table are the same"})
		case errors.Is(err, state.ErrEmptySource):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "source table has no orders"})
		default:
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		}
		return
	}

	writeJSON(w, http.StatusOK, h.tableResponse(req.To))
}

// SetDiscount handles PUT /tables/{table}/discount. Accepts either an
// absolute amount or a percent of the current subtotal; the percent form
// is converted here and only the resulting amount reaches the store.
func (h *TableHandler) SetDiscount(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}

	var req discountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var amount decimal.Decimal
	switch {
	case req.Amount != "":
		d, err := decimal.NewFromString(req.Amount)
		if err != nil || d.IsNegative() {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid amount"})
			return
		}
		amount = d
	case req.Percent != "":
		p, err := decimal.NewFromString(req.Percent)
		if err != nil || p.IsNegative() || p.GreaterThan(decimal.NewFromInt(100)) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid percent"})
			return
		}
		amount = h.store.Subtotal(table).Mul(p).Div(decimal.NewFromInt(100))
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "amount or percent is required"})
		return
	}

	if err := h.store.SetDiscount(table, amount); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, h.tableResponse(table))
}

// ClearDiscount handles DELETE /tables/{table}/discount.
func (h *TableHandler) ClearDiscount(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}

	if err := h.store.ClearDiscount(table); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *TableHandler) tableResponse(table int) tableResponse {
	lines := h.store.Orders(table)
	return tableResponse{
		Table:    table,
		Zone:     enum.TableZone(table),
		Occupied: len(lines) > 0,
		Lines:    toLineResponses(lines),
		Subtotal: money(h.store.Subtotal(table)),
		Discount: money(h.store.Discount(table)),
		Total:    money(h.store.TotalWithDiscount(table)),
	}
}
