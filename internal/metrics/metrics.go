// Package metrics exposes Prometheus collectors for report intake and push delivery.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Push delivery outcomes
const (
	PushSent    = "sent"
	PushFailed  = "failed"
	PushExpired = "expired"
	PushSkipped = "skipped"
)

// Metrics holds the application collectors. The zero value and a nil
// pointer are usable and record nothing until Register is called.
type Metrics struct {
	reportsSubmitted prometheus.Counter
	reportMutations  *prometheus.CounterVec
	pushDeliveries   *prometheus.CounterVec
	broadcastRuns    prometheus.Counter
	realtimeClients  prometheus.Gauge

	registerOnce sync.Once
}

// Register creates the collectors on registry. Subsequent calls are no-ops.
func (m *Metrics) Register(registry prometheus.Registerer) {
	if m == nil || registry == nil {
		return
	}

	m.registerOnce.Do(func() {
		factory := promauto.With(registry)

		m.reportsSubmitted = factory.NewCounter(prometheus.CounterOpts{
			Name: "reporthub_reports_submitted_total",
			Help: "Total number of service reports submitted",
		})

		m.reportMutations = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reporthub_report_mutations_total",
			Help: "Total number of administrator changes to service reports",
		}, []string{"event"})

		m.pushDeliveries = factory.NewCounterVec(prometheus.CounterOpts{
			Name: "reporthub_push_deliveries_total",
			Help: "Total number of push notification attempts by outcome",
		}, []string{"result"})

		m.broadcastRuns = factory.NewCounter(prometheus.CounterOpts{
			Name: "reporthub_broadcast_runs_total",
			Help: "Total number of reminder broadcasts started",
		})

		m.realtimeClients = factory.NewGauge(prometheus.GaugeOpts{
			Name: "reporthub_realtime_clients",
			Help: "Number of connected realtime websocket clients",
		})
	})
}

// IncReportSubmitted counts one accepted report
func (m *Metrics) IncReportSubmitted() {
	if m != nil && m.reportsSubmitted != nil {
		m.reportsSubmitted.Inc()
	}
}

// IncReportMutation counts an update, review or delete
func (m *Metrics) IncReportMutation(event string) {
	if m != nil && m.reportMutations != nil {
		m.reportMutations.WithLabelValues(event).Inc()
	}
}

// ObservePushDelivery counts one push attempt with its outcome
func (m *Metrics) ObservePushDelivery(result string) {
	if m != nil && m.pushDeliveries != nil {
		m.pushDeliveries.WithLabelValues(result).Inc()
	}
}

// IncBroadcastRun counts one broadcast request
func (m *Metrics) IncBroadcastRun() {
	if m != nil && m.broadcastRuns != nil {
		m.broadcastRuns.Inc()
	}
}

// SetRealtimeClients records the current websocket client count
func (m *Metrics) SetRealtimeClients(n int) {
	if m != nil && m.realtimeClients != nil {
		m.realtimeClients.Set(float64(n))
	}
}

// NewRegistry returns a registry with the Go runtime and process collectors
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// Handler serves the registry in the Prometheus exposition format
func Handler(reg *prometheus.Registry) http.Handler {
	return promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
}
