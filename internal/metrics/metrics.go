package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry bundles the service metrics on a private prometheus registry.
type Registry struct {
	reg *prometheus.Registry

	LinesAdded     prometheus.Counter
	LinesRemoved   prometheus.Counter
	Payments       prometheus.Counter
	KitchenSends   prometheus.Counter
	OutboxFlushed  prometheus.Counter
	OutboxFailed   prometheus.Counter
	CleanupRuns    prometheus.Counter
	OccupiedTables prometheus.Gauge
}

func NewRegistry() *Registry {
	r := prometheus.NewRegistry()

	linesAdded := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_order_lines_added_total"})
	linesRemoved := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_order_lines_removed_total"})
	payments := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_payments_total"})
	kitchenSends := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_kitchen_sends_total"})
	outboxFlushed := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_outbox_flushed_total"})
	outboxFailed := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_outbox_failed_total"})
	cleanupRuns := prometheus.NewCounter(prometheus.CounterOpts{Name: "pos_cleanup_runs_total"})
	occupied := prometheus.NewGauge(prometheus.GaugeOpts{Name: "pos_occupied_tables"})

	r.MustRegister(linesAdded, linesRemoved, payments, kitchenSends, outboxFlushed, outboxFailed, cleanupRuns, occupied)

	return &Registry{
		reg:            r,
		LinesAdded:     linesAdded,
		LinesRemoved:   linesRemoved,
		Payments:       payments,
		KitchenSends:   kitchenSends,
		OutboxFlushed:  outboxFlushed,
		OutboxFailed:   outboxFailed,
		CleanupRuns:    cleanupRuns,
		OccupiedTables: occupied,
	}
}

func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{})
}
