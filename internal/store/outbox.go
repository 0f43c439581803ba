package store

import (
	"fmt"
	"log"
	"sort"
	"sync"
	"time"
)

// Status is the observable flush state of a section.
type Status string

const (
	StatusClean   Status = "clean"
	StatusPending Status = "pending"
	StatusFlushed Status = "flushed"
	StatusFailed  Status = "failed"
)

// Sink receives rendered section blobs. The pebble store is the primary
// sink; the remote mirror is a best-effort sink.
type Sink interface {
	Put(key string, data []byte) error
}

// Outbox is a debounced queue of pending section writes with visible
// per-section state. State owners register a loader per section and mark
// sections dirty on mutation; the outbox renders and fans out on flush.
// In-memory state stays the source of truth whether or not a flush lands.
type Outbox struct {
	mu         sync.Mutex
	sources    map[string]func() ([]byte, error)
	dirty      map[string]bool
	status     map[string]Status
	primary    Sink
	bestEffort []Sink
	debounce   time.Duration
	timer      *time.Timer
	onFlush    func(failed bool)
}

// NewOutbox creates an outbox flushing to primary after debounce of
// inactivity. bestEffort sinks get the same blobs; their failures are
// logged but never change section status.
func NewOutbox(primary Sink, debounce time.Duration, bestEffort ...Sink) *Outbox {
	return &Outbox{
		sources:    make(map[string]func() ([]byte, error)),
		dirty:      make(map[string]bool),
		status:     make(map[string]Status),
		primary:    primary,
		bestEffort: bestEffort,
		debounce:   debounce,
	}
}

// OnFlush registers a callback invoked once per flushed section (metrics).
func (o *Outbox) OnFlush(fn func(failed bool)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.onFlush = fn
}

// Register attaches the loader that renders a section's current blob.
func (o *Outbox) Register(section string, load func() ([]byte, error)) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.sources[section] = load
	o.status[section] = StatusClean
}

// MarkDirty queues a section for the next flush and (re)arms the debounce
// timer. Safe to call from inside state-container critical sections: it
// never blocks on a flush in progress.
func (o *Outbox) MarkDirty(section string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if _, ok := o.sources[section]; !ok {
		return
	}
	o.dirty[section] = true
	o.status[section] = StatusPending
	if o.debounce <= 0 {
		return // manual flush mode (tests, seed tool)
	}
	if o.timer == nil {
		o.timer = time.AfterFunc(o.debounce, func() {
			if err := o.Flush(); err != nil {
				log.Printf("ERROR: outbox flush: %v", err)
			}
		})
	} else {
		o.timer.Reset(o.debounce)
	}
}

// Flush synchronously drains the dirty set. Returns the first primary-sink
// error; sections whose write failed stay failed and are re-queued so the
// next flush retries them.
func (o *Outbox) Flush() error {
	o.mu.Lock()
	sections := make([]string, 0, len(o.dirty))
	for s := range o.dirty {
		sections = append(sections, s)
	}
	o.dirty = make(map[string]bool)
	loaders := make(map[string]func() ([]byte, error), len(sections))
	for _, s := range sections {
		loaders[s] = o.sources[s]
	}
	onFlush := o.onFlush
	o.mu.Unlock()

	sort.Strings(sections)

	var firstErr error
	for _, section := range sections {
		data, err := loaders[section]()
		if err != nil {
			o.setStatus(section, StatusFailed, true)
			if firstErr == nil {
				firstErr = fmt.Errorf("render %s: %w", section, err)
			}
			continue
		}

		if err := o.primary.Put(section, data); err != nil {
			o.setStatus(section, StatusFailed, true)
			if onFlush != nil {
				onFlush(true)
			}
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		o.setStatus(section, StatusFlushed, false)
		if onFlush != nil {
			onFlush(false)
		}

		for _, sink := range o.bestEffort {
			if err := sink.Put(section, data); err != nil {
				log.Printf("WARN: mirror write %s: %v", section, err)
			}
		}
	}
	return firstErr
}

// setStatus updates a section's status, optionally re-queueing it. A
// mutation that ran during the flush has already flipped the section back
// to pending; that takes precedence.
func (o *Outbox) setStatus(section string, status Status, requeue bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.dirty[section] {
		return
	}
	o.status[section] = status
	if requeue {
		o.dirty[section] = true
	}
}

// Status returns the observable flush state of a section.
func (o *Outbox) Status(section string) Status {
	o.mu.Lock()
	defer o.mu.Unlock()
	if s, ok := o.status[section]; ok {
		return s
	}
	return StatusClean
}

// Pending returns the sections queued for the next flush, sorted.
func (o *Outbox) Pending() []string {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]string, 0, len(o.dirty))
	for s := range o.dirty {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}

// Stop disarms the debounce timer. Call before the final shutdown Flush.
func (o *Outbox) Stop() {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.timer != nil {
		o.timer.Stop()
	}
}
