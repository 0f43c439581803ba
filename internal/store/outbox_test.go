package store

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// --- Mock sinks ---

type mockSink struct {
	mu     sync.Mutex
	writes map[string][]byte
	err    error
}

func newMockSink() *mockSink {
	return &mockSink{writes: make(map[string][]byte)}
}

func (m *mockSink) Put(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.writes[key] = append([]byte(nil), data...)
	return nil
}

func (m *mockSink) get(key string) []byte {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes[key]
}

func staticBlob(data string) func() ([]byte, error) {
	return func() ([]byte, error) { return []byte(data), nil }
}

// --- Tests ---

func TestMarkDirtySetsPending(t *testing.T) {
	o := NewOutbox(newMockSink(), 0)
	o.Register("orders", staticBlob(`{}`))

	if got := o.Status("orders"); got != StatusClean {
		t.Errorf("initial status: got %s, want %s", got, StatusClean)
	}

	o.MarkDirty("orders")

	if got := o.Status("orders"); got != StatusPending {
		t.Errorf("status: got %s, want %s", got, StatusPending)
	}
	pending := o.Pending()
	if len(pending) != 1 || pending[0] != "orders" {
		t.Errorf("pending: got %v, want [orders]", pending)
	}
}

func TestMarkDirtyUnregisteredSectionIgnored(t *testing.T) {
	o := NewOutbox(newMockSink(), 0)

	o.MarkDirty("bogus")

	if len(o.Pending()) != 0 {
		t.Errorf("pending: got %v, want none", o.Pending())
	}
}

func TestFlushWritesAndMarksFlushed(t *testing.T) {
	primary := newMockSink()
	o := NewOutbox(primary, 0)
	o.Register("orders", staticBlob(`{"1":[]}`))
	o.Register("discounts", staticBlob(`{}`))

	o.MarkDirty("orders")

	if err := o.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if got := string(primary.get("orders")); got != `{"1":[]}` {
		t.Errorf("primary write: got %s", got)
	}
	if primary.get("discounts") != nil {
		t.Error("clean section must not be written")
	}
	if got := o.Status("orders"); got != StatusFlushed {
		t.Errorf("status: got %s, want %s", got, StatusFlushed)
	}
	if len(o.Pending()) != 0 {
		t.Errorf("pending after flush: got %v", o.Pending())
	}
}

func TestFlushPrimaryFailureRequeues(t *testing.T) {
	primary := newMockSink()
	primary.err = errors.New("disk full")
	o := NewOutbox(primary, 0)
	o.Register("orders", staticBlob(`{}`))

	o.MarkDirty("orders")

	if err := o.Flush(); err == nil {
		t.Fatal("expected flush error")
	}
	if got := o.Status("orders"); got != StatusFailed {
		t.Errorf("status: got %s, want %s", got, StatusFailed)
	}
	pending := o.Pending()
	if len(pending) != 1 || pending[0] != "orders" {
		t.Errorf("failed section must be requeued, pending: %v", pending)
	}

	// The next flush retries and succeeds.
	primary.mu.Lock()
	primary.err = nil
	primary.mu.Unlock()
	if err := o.Flush(); err != nil {
		t.Fatalf("retry flush: %v", err)
	}
	if got := o.Status("orders"); got != StatusFlushed {
		t.Errorf("status after retry: got %s, want %s", got, StatusFlushed)
	}
}

func TestFlushBestEffortFailureDoesNotChangeStatus(t *testing.T) {
	primary := newMockSink()
	remote := newMockSink()
	remote.err = errors.New("network down")
	o := NewOutbox(primary, 0, remote)
	o.Register("orders", staticBlob(`{}`))

	o.MarkDirty("orders")

	if err := o.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := o.Status("orders"); got != StatusFlushed {
		t.Errorf("status: got %s, want %s", got, StatusFlushed)
	}
}

func TestFlushFansOutToBestEffortSinks(t *testing.T) {
	primary := newMockSink()
	remote := newMockSink()
	o := NewOutbox(primary, 0, remote)
	o.Register("orders", staticBlob(`{"2":[]}`))

	o.MarkDirty("orders")

	if err := o.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if got := string(remote.get("orders")); got != `{"2":[]}` {
		t.Errorf("mirror write: got %s", got)
	}
}

func TestDebounceFlushesAfterQuietPeriod(t *testing.T) {
	primary := newMockSink()
	o := NewOutbox(primary, 20*time.Millisecond)
	defer o.Stop()
	o.Register("orders", staticBlob(`{}`))

	o.MarkDirty("orders")

	if primary.get("orders") != nil {
		t.Error("flush must wait out the debounce window")
	}

	deadline := time.After(time.Second)
	for primary.get("orders") == nil {
		select {
		case <-deadline:
			t.Fatal("debounced flush never ran")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestOnFlushCallback(t *testing.T) {
	primary := newMockSink()
	o := NewOutbox(primary, 0)
	o.Register("orders", staticBlob(`{}`))

	var mu sync.Mutex
	var outcomes []bool
	o.OnFlush(func(failed bool) {
		mu.Lock()
		outcomes = append(outcomes, failed)
		mu.Unlock()
	})

	o.MarkDirty("orders")
	if err := o.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(outcomes) != 1 || outcomes[0] {
		t.Errorf("callback outcomes: got %v, want [false]", outcomes)
	}
}

func TestMutationDuringFlushKeepsPending(t *testing.T) {
	primary := newMockSink()
	o := NewOutbox(primary, 0)

	// The loader re-dirties its own section, modelling a mutation that lands
	// while the flush is rendering.
	o.Register("orders", func() ([]byte, error) {
		o.MarkDirty("orders")
		return []byte(`{}`), nil
	})

	o.MarkDirty("orders")
	if err := o.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}

	if got := o.Status("orders"); got != StatusPending {
		t.Errorf("status: got %s, want %s", got, StatusPending)
	}
}
