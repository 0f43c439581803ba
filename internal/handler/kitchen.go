package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/state"
	"github.com/comanda-pos/api/internal/ws"
)

// KitchenStore defines the container methods needed by kitchen handlers.
type KitchenStore interface {
	MarkSent(table int) (int64, error)
	LastSent(table int) (int64, bool)
	SentTimestamps(table int) []int64
	ToggleReady(table int, lineID uuid.UUID) (state.Line, error)
	SetCompleted(table int, ts int64, done bool) error
	IsCompleted(table int, ts int64) bool
	SetComment(table int, ts int64, comment string) error
	Comment(table int, ts int64) (string, bool)
}

// KitchenObserver counts send-to-kitchen events (metrics). May be nil.
type KitchenObserver interface {
	KitchenSent()
}

// KitchenHandler handles kitchen tracking endpoints.
type KitchenHandler struct {
	store KitchenStore
	hub   Broadcaster
	obs   KitchenObserver
}

// NewKitchenHandler creates a new KitchenHandler. hub and obs may be nil.
func NewKitchenHandler(store KitchenStore, hub Broadcaster, obs KitchenObserver) *KitchenHandler {
	return &KitchenHandler{store: store, hub: hub, obs: obs}
}

// RegisterRoutes registers kitchen endpoints. Expected to be mounted
// inside a table-scoped subrouter: /tables/{table}/kitchen
func (h *KitchenHandler) RegisterRoutes(r chi.Router) {
	r.Post("/send", h.Send)
	r.Get("/send", h.Timestamps)
	r.Post("/items/{lineID}/ready", h.ToggleReady)
	r.Put("/events/{ts}/comment", h.SetComment)
	r.Get("/events/{ts}/comment", h.GetComment)
	r.Put("/events/{ts}/completed", h.SetCompleted)
	r.Get("/events/{ts}/completed", h.GetCompleted)
}

// --- Request / Response types ---

type sendResponse struct {
	Timestamp int64 `json:"timestamp"`
}

type timestampsResponse struct {
	Timestamps []int64 `json:"timestamps"`
	Last       *int64  `json:"last"`
}

type commentRequest struct {
	Comment string `json:"comment"`
}

type completedRequest struct {
	Completed bool `json:"completed"`
}

// tsParam parses the {ts} path segment. Timestamps are canonical int64
// unix milliseconds; string forms from older clients parse the same way.
func tsParam(r *http.Request) (int64, bool) {
	ts, err := strconv.ParseInt(chi.URLParam(r, "ts"), 10, 64)
	if err != nil || ts <= 0 {
		return 0, false
	}
	return ts, true
}

// --- Handlers ---

// Send handles POST /tables/{table}/kitchen/send. Each call appends a new
// timestamp; earlier send events keep their own timers.
func (h *KitchenHandler) Send(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}

	ts, err := h.store.MarkSent(table)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if h.obs != nil {
		h.obs.KitchenSent()
	}
	if h.hub != nil {
		h.hub.BroadcastJSON(ws.TopicKitchen, enum.EventKitchenSent, map[string]any{
			"table":     table,
			"timestamp": ts,
		})
	}

	writeJSON(w, http.StatusCreated, sendResponse{Timestamp: ts})
}

// Timestamps handles GET /tables/{table}/kitchen/send.
func (h *KitchenHandler) Timestamps(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}

	resp := timestampsResponse{Timestamps: h.store.SentTimestamps(table)}
	if last, ok := h.store.LastSent(table); ok {
		resp.Last = &last
	}
	writeJSON(w, http.StatusOK, resp)
}

// ToggleReady handles POST /tables/{table}/kitchen/items/{lineID}/ready.
// The ready flag is a toggle, not one-directional.
func (h *KitchenHandler) ToggleReady(w http.ResponseWriter, r *http.Request) {
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

	line, err := h.store.ToggleReady(table, lineID)
	if err != nil {
		if errors.Is(err, state.ErrLineNotFound) {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order line not found"})
			return
		}
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}

	if h.hub != nil {
		h.hub.BroadcastJSON(ws.TopicTables, enum.EventKitchenReady, map[string]any{
			"table": table,
			"line":  line.ID.String(),
			"ready": line.Ready,
		})
	}

	writeJSON(w, http.StatusOK, toLineResponse(line))
}

// SetComment handles PUT /tables/{table}/kitchen/events/{ts}/comment.
func (h *KitchenHandler) SetComment(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}
	ts, ok := tsParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid timestamp"})
		return
	}

	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.store.SetComment(table, ts, req.Comment); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetComment handles GET /tables/{table}/kitchen/events/{ts}/comment.
func (h *KitchenHandler) GetComment(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}
	ts, ok := tsParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid timestamp"})
		return
	}

	comment, found := h.store.Comment(table, ts)
	if !found {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "no comment for this event"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"comment": comment})
}

// SetCompleted handles PUT /tables/{table}/kitchen/events/{ts}/completed.
func (h *KitchenHandler) SetCompleted(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}
	ts, ok := tsParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid timestamp"})
		return
	}

	var req completedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	if err := h.store.SetCompleted(table, ts, req.Completed); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetCompleted handles GET /tables/{table}/kitchen/events/{ts}/completed.
func (h *KitchenHandler) GetCompleted(w http.ResponseWriter, r *http.Request) {
	table, ok := tableParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid table number"})
		return
	}
	ts, ok := tsParam(r)
	if !ok {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid timestamp"})
		return
	}

	writeJSON(w, http.StatusOK, map[string]bool{"completed": h.store.IsCompleted(table, ts)})
}
