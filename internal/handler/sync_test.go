package handler_test

import (
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/comanda-pos/api/internal/handler"
	"github.com/comanda-pos/api/internal/store"
)

type memSink struct{}

func (memSink) Put(string, []byte) error { return nil }

func setupSyncRouter(outbox *store.Outbox, sections []string) *chi.Mux {
	r := chi.NewRouter()
	handler.NewSyncHandler(outbox, sections).RegisterRoutes(r)
	return r
}

func TestSyncStatusLifecycle(t *testing.T) {
	outbox := store.NewOutbox(memSink{}, 0)
	outbox.Register("table_orders", func() ([]byte, error) { return []byte(`{}`), nil })
	outbox.Register("users", func() ([]byte, error) { return []byte(`{}`), nil })
	router := setupSyncRouter(outbox, []string{"table_orders", "users"})

	clean := decodeMap(t, doRequest(t, router, "GET", "/sync/status", nil))
	if got := clean["sections"].(map[string]interface{})["table_orders"]; got != "clean" {
		t.Errorf("initial status: got %v, want clean", got)
	}
	if got := len(clean["pending"].([]interface{})); got != 0 {
		t.Errorf("initial pending: got %d entries", got)
	}

	outbox.MarkDirty("table_orders")

	pending := decodeMap(t, doRequest(t, router, "GET", "/sync/status", nil))
	if got := pending["sections"].(map[string]interface{})["table_orders"]; got != "pending" {
		t.Errorf("dirty status: got %v, want pending", got)
	}
	list := pending["pending"].([]interface{})
	if len(list) != 1 || list[0] != "table_orders" {
		t.Errorf("pending list: got %v", list)
	}
	if got := pending["sections"].(map[string]interface{})["users"]; got != "clean" {
		t.Errorf("untouched section: got %v, want clean", got)
	}

	if err := outbox.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	flushed := decodeMap(t, doRequest(t, router, "GET", "/sync/status", nil))
	if got := flushed["sections"].(map[string]interface{})["table_orders"]; got != "flushed" {
		t.Errorf("flushed status: got %v, want flushed", got)
	}
	if got := len(flushed["pending"].([]interface{})); got != 0 {
		t.Errorf("pending after flush: got %d entries", got)
	}
}

func TestSyncStatusCode(t *testing.T) {
	outbox := store.NewOutbox(memSink{}, 0)
	router := setupSyncRouter(outbox, nil)

	rr := doRequest(t, router, "GET", "/sync/status", nil)
	if rr.Code != http.StatusOK {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
}
