package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-pos/api/internal/store"
)

// SyncStatus exposes the outbox's observable state. Satisfied by
// *store.Outbox.
type SyncStatus interface {
	Pending() []string
	Status(section string) store.Status
}

// SyncHandler reports pending vs flushed persistence state so operators
// (and tests) can tell whether the debounce window holds unsaved deltas.
type SyncHandler struct {
	outbox   SyncStatus
	sections []string
}

// NewSyncHandler creates a new SyncHandler over the given sections.
func NewSyncHandler(outbox SyncStatus, sections []string) *SyncHandler {
	return &SyncHandler{outbox: outbox, sections: sections}
}

// RegisterRoutes registers the sync endpoints.
func (h *SyncHandler) RegisterRoutes(r chi.Router) {
	r.Get("/sync/status", h.Status)
}

type syncStatusResponse struct {
	Pending  []string          `json:"pending"`
	Sections map[string]string `json:"sections"`
}

// Status handles GET /sync/status.
func (h *SyncHandler) Status(w http.ResponseWriter, r *http.Request) {
	sections := make(map[string]string, len(h.sections))
	for _, s := range h.sections {
		sections[s] = string(h.outbox.Status(s))
	}
	writeJSON(w, http.StatusOK, syncStatusResponse{
		Pending:  h.outbox.Pending(),
		Sections: sections,
	})
}
