package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/state"
	"github.com/comanda-pos/api/internal/ws"
)

// PaymentStore defines the container methods needed by payment handlers.
type PaymentStore interface {
	PayItems(table int, ids []uuid.UUID) (*state.PaymentRecord, error)
	History(table int) []state.PaymentRecord
}

// Broadcaster pushes events to websocket subscribers. May be nil.
type Broadcaster interface {
	BroadcastJSON(topic, eventType string, payload any) error
}

// PaymentObserver counts settled payments (metrics). May be nil.
type PaymentObserver interface {
	PaymentRecorded()
}

// PaymentHandler handles payment and history endpoints.
type PaymentHandler struct {
	store PaymentStore
	hub   Broadcaster
	obs   PaymentObserver
}

// NewPaymentHandler creates a new PaymentHandler. hub and obs may be nil.
func NewPaymentHandler(store PaymentStore, hub Broadcaster, obs PaymentObserver) *PaymentHandler {
	return &PaymentHandler{store: store, hub: hub, obs: obs}
}

// RegisterRoutes registers payment endpoints. Expected to be mounted
// inside a table-scoped subrouter: /tables/{table}
func (h *PaymentHandler) RegisterRoutes(r chi.Router) {
	r.Post("/payments", h.Pay)
	r.Get("/history", h.History)
}

// --- Request / Response types ---

// payRequest: order_ids null (or absent) pays the full table; an explicit
// list pays only the named lines.
type payRequest struct {
	OrderIDs []string `json:"order_ids"`
}

type paymentRecordResponse struct {
	ID       string         `json:"id"`
	Table    int            `json:"table"`
	Items    []lineResponse `json:"items"`
	Subtotal string         `json:"subtotal"`
	Discount string         `json:"discount"`
	Total    string         `json:"total"`
	PaidAt   time.Time      `json:"paid_at"`
}

func toPaymentRecordResponse(rec state.PaymentRecord) paymentRecordResponse {
	return paymentRecordResponse{
		ID:       rec.ID.String(),
		Table:    rec.Table,
		Items:    toLineResponses(rec.Items),
		Subtotal: money(rec.Subtotal),
		Discount: money(rec.Discount),
		Total:    money(rec.Total),
		PaidAt:   rec.PaidAt,
	}
}

// --- Handlers ---

// Pay handles POST /tables/{table}/payments. An empty selection is a
// silent no-op: no record is created and 204 is returned.
func (h *PaymentHandler) Pay(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}

	var req payRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	var ids []uuid.UUID
	if req.OrderIDs != nil {
		ids = make([]uuid.UUID, 0, len(req.OrderIDs))
		for _, s := range req.OrderIDs {
			id, err := uuid.Parse(s)
			if err != nil {
				writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order line ID"})
				return
			}
			ids = append(ids, id)
		}
	}

	record, err := h.store.PayItems(table, ids)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	if record == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if h.obs != nil {
		h.obs.PaymentRecorded()
	}
	if h.hub != nil {
		h.hub.BroadcastJSON(ws.TopicTables, enum.EventTablePaid, map[string]any{
			"table": table,
			"total": money(record.Total),
		})
	}

	writeJSON(w, http.StatusCreated, toPaymentRecordResponse(*record))
}

// History handles GET /tables/{table}/history.
func (h *PaymentHandler) History(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}

	records := h.store.History(table)
	resp := make([]paymentRecordResponse, len(records))
	for i, rec := range records {
		resp[i] = toPaymentRecordResponse(rec)
	}
	writeJSON(w, http.StatusOK, resp)
}
