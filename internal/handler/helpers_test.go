package handler_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/comanda-pos/api/internal/enum"
	"github.com/comanda-pos/api/internal/handler"
	"github.com/comanda-pos/api/internal/menu"
	"github.com/comanda-pos/api/internal/state"
)

// --- Shared helpers ---

func doRequest(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		req = httptest.NewRequest(method, path, bytes.NewReader(b))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decodeMap(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func decodeList(t *testing.T, rr *httptest.ResponseRecorder) []map[string]interface{} {
	t.Helper()
	var resp []map[string]interface{}
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func testCatalog() *menu.Catalog {
	c := menu.NewCatalog(nil, enum.SectionMenuItems, enum.SectionDrinkOptions)
	c.Upsert(menu.Item{
		ID:       "arroz",
		Name:     menu.LocalizedName{ES: "Arroz tres delicias"},
		Category: enum.CategoryMainDishes,
		Price:    decimal.RequireFromString("8.50"),
		Enabled:  true,
	})
	c.Upsert(menu.Item{
		ID:       "ensalada",
		Name:     menu.LocalizedName{ES: "Ensalada mixta"},
		Category: enum.CategoryStarters,
		Price:    decimal.RequireFromString("6.50"),
		Enabled:  true,
	})
	c.Upsert(menu.Item{
		ID:       "retirado",
		Name:     menu.LocalizedName{ES: "Plato retirado"},
		Category: enum.CategoryMainDishes,
		Price:    decimal.RequireFromString("5.00"),
		Enabled:  false,
	})
	return c
}

// mockBroadcaster records broadcast events.
type mockBroadcaster struct {
	topics []string
	types  []string
}

func (m *mockBroadcaster) BroadcastJSON(topic, eventType string, payload any) error {
	m.topics = append(m.topics, topic)
	m.types = append(m.types, eventType)
	return nil
}

// mockObserver counts metric callbacks.
type mockObserver struct {
	added, removed, payments, sends int
	occupied                        int
}

func (m *mockObserver) LineAdded() { m.added++ }

func (m *mockObserver) LineRemoved() { m.removed++ }

func (m *mockObserver) TablesOccupied(n int) { m.occupied = n }

func (m *mockObserver) PaymentRecorded() { m.payments++ }

func (m *mockObserver) KitchenSent() { m.sends++ }

// setupTableRouter mounts the table, payment and kitchen handlers the way
// the real router does.
func setupTableRouter(container *state.Container, hub *mockBroadcaster, obs *mockObserver) *chi.Mux {
	catalog := testCatalog()
	tables := handler.NewTableHandler(container, catalog, obs)
	payments := handler.NewPaymentHandler(container, hub, obs)
	kitchen := handler.NewKitchenHandler(container, hub, obs)

	r := chi.NewRouter()
	r.Get("/tables", tables.ListOccupied)
	r.Route("/tables/{table}", func(r chi.Router) {
		tables.RegisterRoutes(r)
		payments.RegisterRoutes(r)
		r.Route("/kitchen", kitchen.RegisterRoutes)
	})
	return r
}

func addLine(t *testing.T, router http.Handler, table string, itemID string) string {
	t.Helper()
	rr := doRequest(t, router, "POST", "/tables/"+table+"/items", map[string]interface{}{"item_id": itemID})
	if rr.Code != http.StatusCreated {
		t.Fatalf("add line: status %d, body %s", rr.Code, rr.Body.String())
	}
	return decodeMap(t, rr)["id"].(string)
}
