package handler

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/api/internal/state"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("ERROR: failed to encode JSON response: %v", err)
	}
}

// tableParam parses the {table} path segment. Invalid table numbers are
// rejected before any mutation runs.
func tableParam(r *http.Request) (int, bool) {
	table, err := strconv.Atoi(chi.URLParam(r, "table"))
	if err != nil || table <= 0 {
		return 0, false
	}
	return table, true
}

func money(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// --- Shared response types ---

type lineResponse struct {
	ID        string     `json:"id"`
	ItemID    string     `json:"item_id"`
	Name      string     `json:"name"`
	Category  string     `json:"category"`
	UnitPrice string     `json:"unit_price"`
	Quantity  int        `json:"quantity"`
	Extras    []string   `json:"extras,omitempty"`
	Drink     string     `json:"drink,omitempty"`
	SentAt    *time.Time `json:"kitchen_sent_at,omitempty"`
	Ready     bool       `json:"kitchen_ready"`
	ReadyAt   *time.Time `json:"kitchen_ready_at,omitempty"`
}

func toLineResponse(l state.Line) lineResponse {
	return lineResponse{
		ID:        l.ID.String(),
		ItemID:    l.ItemID,
		Name:      l.Name,
		Category:  l.Category,
		UnitPrice: money(l.UnitPrice),
		Quantity:  l.Quantity,
		Extras:    l.Extras,
		Drink:     l.Drink,
		SentAt:    l.SentAt,
		Ready:     l.Ready,
		ReadyAt:   l.ReadyAt,
	}
}

func toLineResponses(lines []state.Line) []lineResponse {
	out := make([]lineResponse, len(lines))
	for i, l := range lines {
		out[i] = toLineResponse(l)
	}
	return out
}
