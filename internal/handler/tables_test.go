package handler_test

import (
	"net/http"
	"testing"

	"github.com/google/uuid"

	"github.com/comanda-pos/api/internal/state"
)

func TestTableGetEmpty(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})

	rr := doRequest(t, router, "GET", "/tables/3", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeMap(t, rr)
	if resp["occupied"] != false {
		t.Error("empty table should not be occupied")
	}
	if resp["subtotal"] != "0.00" {
		t.Errorf("subtotal: got %v, want 0.00", resp["subtotal"])
	}
	if resp["zone"] != "dining" {
		t.Errorf("zone: got %v, want dining", resp["zone"])
	}
}

func TestTableZoneBands(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})

	cases := map[string]string{
		"12":  "dining",
		"35":  "terrace",
		"104": "takeaway",
	}
	for table, zone := range cases {
		rr := doRequest(t, router, "GET", "/tables/"+table, nil)
		if got := decodeMap(t, rr)["zone"]; got != zone {
			t.Errorf("table %s: zone got %v, want %s", table, got, zone)
		}
	}
}

func TestTableGetInvalidNumber(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})

	rr := doRequest(t, router, "GET", "/tables/0", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestAddItemCreatesLine(t *testing.T) {
	obs := &mockObserver{}
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, obs)

	rr := doRequest(t, router, "POST", "/tables/3/items", map[string]interface{}{
		"item_id": "arroz",
		"extras":  []string{"gambas"},
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	resp := decodeMap(t, rr)
	if resp["item_id"] != "arroz" {
		t.Errorf("item_id: got %v", resp["item_id"])
	}
	// 8.50 + 1 extra on a main dish
	if resp["unit_price"] != "9.50" {
		t.Errorf("unit_price: got %v, want 9.50", resp["unit_price"])
	}
	if obs.added != 1 {
		t.Errorf("observer added: got %d, want 1", obs.added)
	}
	if obs.occupied != 1 {
		t.Errorf("observer occupied: got %d, want 1", obs.occupied)
	}
}

func TestAddItemUnknownItem(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})

	rr := doRequest(t, router, "POST", "/tables/3/items", map[string]interface{}{"item_id": "nada"})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestAddItemDisabledItem(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})

	rr := doRequest(t, router, "POST", "/tables/3/items", map[string]interface{}{"item_id": "retirado"})

	if rr.Code != http.StatusConflict {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
}

func TestAddItemMissingID(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})

	rr := doRequest(t, router, "POST", "/tables/3/items", map[string]interface{}{})

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestRemoveItem(t *testing.T) {
	obs := &mockObserver{}
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, obs)
	lineID := addLine(t, router, "3", "arroz")

	rr := doRequest(t, router, "DELETE", "/tables/3/items/"+lineID, nil)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}
	if obs.removed != 1 {
		t.Errorf("observer removed: got %d, want 1", obs.removed)
	}

	get := doRequest(t, router, "GET", "/tables/3", nil)
	if decodeMap(t, get)["occupied"] != false {
		t.Error("table should be free after removing its only line")
	}
}

func TestRemoveItemBadLineID(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})

	rr := doRequest(t, router, "DELETE", "/tables/3/items/not-a-uuid", nil)

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestUpdateQuantity(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})
	lineID := addLine(t, router, "3", "arroz")

	rr := doRequest(t, router, "PATCH", "/tables/3/items/"+lineID, map[string]interface{}{"quantity": 4})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if got := decodeMap(t, rr)["subtotal"]; got != "34.00" {
		t.Errorf("subtotal: got %v, want 34.00", got)
	}
}

func TestUpdateQuantityZeroRemoves(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})
	lineID := addLine(t, router, "3", "arroz")

	rr := doRequest(t, router, "PATCH", "/tables/3/items/"+lineID, map[string]interface{}{"quantity": 0})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if decodeMap(t, rr)["occupied"] != false {
		t.Error("table should be free after quantity dropped to zero")
	}
}

func TestUpdateQuantityMissingLine(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})
	addLine(t, router, "3", "arroz")

	rr := doRequest(t, router, "PATCH", "/tables/3/items/"+uuid.NewString(), map[string]interface{}{"quantity": 2})

	if rr.Code != http.StatusNotFound {
		t.Errorf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestClearTable(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})
	addLine(t, router, "3", "arroz")

	rr := doRequest(t, router, "DELETE", "/tables/3", nil)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}
}

func TestMoveTable(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})
	addLine(t, router, "3", "arroz")

	rr := doRequest(t, router, "POST", "/tables/3/move", map[string]interface{}{"to": 8})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := decodeMap(t, rr)
	if resp["table"] != float64(8) {
		t.Errorf("table: got %v, want 8", resp["table"])
	}
	if resp["occupied"] != true {
		t.Error("destination should be occupied")
	}
}

func TestMoveTableConflicts(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})
	addLine(t, router, "3", "arroz")

	same := doRequest(t, router, "POST", "/tables/3/move", map[string]interface{}{"to": 3})
	if same.Code != http.StatusConflict {
		t.Errorf("same table: got %d, want %d", same.Code, http.StatusConflict)
	}

	empty := doRequest(t, router, "POST", "/tables/9/move", map[string]interface{}{"to": 4})
	if empty.Code != http.StatusConflict {
		t.Errorf("empty source: got %d, want %d", empty.Code, http.StatusConflict)
	}
}

func TestSetDiscountAmount(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})
	addLine(t, router, "3", "arroz")

	rr := doRequest(t, router, "PUT", "/tables/3/discount", map[string]interface{}{"amount": "2.50"})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeMap(t, rr)
	if resp["discount"] != "2.50" {
		t.Errorf("discount: got %v, want 2.50", resp["discount"])
	}
	if resp["total"] != "6.00" {
		t.Errorf("total: got %v, want 6.00", resp["total"])
	}
}

func TestSetDiscountPercent(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})
	addLine(t, router, "3", "arroz") // subtotal 8.50

	rr := doRequest(t, router, "PUT", "/tables/3/discount", map[string]interface{}{"percent": "10"})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	if got := decodeMap(t, rr)["discount"]; got != "0.85" {
		t.Errorf("discount: got %v, want 0.85", got)
	}
}

func TestSetDiscountValidation(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})
	addLine(t, router, "3", "arroz")

	cases := []map[string]interface{}{
		{},
		{"amount": "-1"},
		{"amount": "abc"},
		{"percent": "101"},
		{"percent": "-5"},
	}
	for _, body := range cases {
		rr := doRequest(t, router, "PUT", "/tables/3/discount", body)
		if rr.Code != http.StatusBadRequest {
			t.Errorf("%v: status: got %d, want %d", body, rr.Code, http.StatusBadRequest)
		}
	}
}

func TestClearDiscount(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})
	addLine(t, router, "3", "arroz")
	doRequest(t, router, "PUT", "/tables/3/discount", map[string]interface{}{"amount": "2.00"})

	rr := doRequest(t, router, "DELETE", "/tables/3/discount", nil)
	if rr.Code != http.StatusNoContent {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNoContent)
	}

	get := doRequest(t, router, "GET", "/tables/3", nil)
	if got := decodeMap(t, get)["discount"]; got != "0.00" {
		t.Errorf("discount: got %v, want 0.00", got)
	}
}

func TestListOccupied(t *testing.T) {
	router := setupTableRouter(state.NewContainer(), &mockBroadcaster{}, &mockObserver{})
	addLine(t, router, "7", "arroz")
	addLine(t, router, "2", "ensalada")

	rr := doRequest(t, router, "GET", "/tables", nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusOK)
	}
	resp := decodeMap(t, rr)
	occupied, ok := resp["occupied"].([]interface{})
	if !ok || len(occupied) != 2 {
		t.Fatalf("occupied: got %v", resp["occupied"])
	}
	if occupied[0] != float64(2) || occupied[1] != float64(7) {
		t.Errorf("occupied must be sorted: got %v", occupied)
	}
}
