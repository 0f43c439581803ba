package store

import (
	"testing"
)

func TestPebblePutGetRoundTrip(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.Put("table_orders", []byte(`{"4":[]}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}

	got, err := db.Get("table_orders")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"4":[]}` {
		t.Errorf("blob: got %s", got)
	}
}

func TestPebbleGetMissingKey(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	got, err := db.Get("never_written")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != nil {
		t.Errorf("missing key: got %v, want nil", got)
	}
}

func TestPebbleOverwrite(t *testing.T) {
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer db.Close()

	if err := db.Put("users", []byte(`{"a":1}`)); err != nil {
		t.Fatalf("first Put: %v", err)
	}
	if err := db.Put("users", []byte(`{"a":2}`)); err != nil {
		t.Fatalf("second Put: %v", err)
	}

	got, err := db.Get("users")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(got) != `{"a":2}` {
		t.Errorf("blob: got %s", got)
	}
}
