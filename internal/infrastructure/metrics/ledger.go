// Package metrics métricas Prometheus de la bitácora y de la API HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/jhoicas/Agromercado-api/internal/application/ports"
)

var _ ports.LedgerMetrics = (*LedgerMetrics)(nil)

// LedgerMetrics contadores de escritura y validación de la bitácora.
type LedgerMetrics struct {
	written    *prometheus.CounterVec
	failures   *prometheus.CounterVec
	validation *prometheus.CounterVec
	duplicates prometheus.Counter
}

// NewLedgerMetrics registra las métricas en reg. Con reg nil devuelve un recolector inerte.
func NewLedgerMetrics(reg prometheus.Registerer) *LedgerMetrics {
	if reg == nil {
		return &LedgerMetrics{}
	}
	m := &LedgerMetrics{
		written: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_trail_entries_written_total",
			Help: "Registros de bitácora escritos, por modo de escritura.",
		}, []string{"mode"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_trail_write_failures_total",
			Help: "Escrituras de bitácora rechazadas, por motivo.",
		}, []string{"reason"}),
		validation: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "audit_trail_validations_total",
			Help: "Validaciones de bitácora ejecutadas, por resultado.",
		}, []string{"complete"}),
		duplicates: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "audit_trail_duplicates_detected_total",
			Help: "Pares (orden, lote) duplicados detectados al validar.",
		}),
	}
	reg.MustRegister(m.written, m.failures, m.validation, m.duplicates)
	return m
}

func (m *LedgerMetrics) EntriesWritten(mode string, n int) {
	if m == nil || m.written == nil || n <= 0 {
		return
	}
	m.written.WithLabelValues(normalizeLabel(mode)).Add(float64(n))
}

func (m *LedgerMetrics) WriteFailed(reason string) {
	if m == nil || m.failures == nil {
		return
	}
	m.failures.WithLabelValues(normalizeLabel(reason)).Inc()
}

func (m *LedgerMetrics) ValidationRun(complete bool, duplicates int) {
	if m == nil || m.validation == nil {
		return
	}
	m.validation.WithLabelValues(strconv.FormatBool(complete)).Inc()
	if duplicates > 0 {
		m.duplicates.Add(float64(duplicates))
	}
}

// HTTPMetrics latencia de requests por ruta.
type HTTPMetrics struct {
	duration *prometheus.HistogramVec
}

// NewHTTPMetrics registra el histograma de requests en reg.
func NewHTTPMetrics(reg prometheus.Registerer) *HTTPMetrics {
	if reg == nil {
		return &HTTPMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "Duración de requests HTTP en segundos.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(duration)
	return &HTTPMetrics{duration: duration}
}

// Observe registra un request terminado.
func (h *HTTPMetrics) Observe(method, route string, status int, d time.Duration) {
	if h == nil || h.duration == nil {
		return
	}
	h.duration.WithLabelValues(method, normalizeLabel(route), strconv.Itoa(status)).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
