package sheets

import (
	"errors"
	"time"

	"complaint_map/internal/domain/complaint"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics records complaint store operations.
type Metrics struct {
	OperationsTotal  *prometheus.CounterVec
	OperationLatency *prometheus.HistogramVec
	RowsUpdatedTotal prometheus.Counter
	MalformedRows    prometheus.Counter
}

// NewMetrics creates the store metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		OperationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{Name: "complaint_store_operations_total", Help: "Complaint store operations by result."},
			[]string{"operation", "result"},
		),
		OperationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "complaint_store_operation_duration_seconds",
				Help:    "Complaint store operation latency in seconds.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
		RowsUpdatedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "complaint_store_rows_updated_total", Help: "Rows whose status was set by batch updates."},
		),
		MalformedRows: prometheus.NewCounter(
			prometheus.CounterOpts{Name: "complaint_store_malformed_locations_total", Help: "Scanned rows with an unparsable location."},
		),
	}
	reg.MustRegister(m.OperationsTotal, m.OperationLatency, m.RowsUpdatedTotal, m.MalformedRows)
	return m
}

func (m *Metrics) observe(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.OperationsTotal.WithLabelValues(operation, resultLabel(err)).Inc()
	m.OperationLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

func (m *Metrics) rowsUpdated(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.RowsUpdatedTotal.Add(float64(n))
}

func (m *Metrics) malformedRow() {
	if m == nil {
		return
	}
	m.MalformedRows.Inc()
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrAuthFailure):
		return "auth_failure"
	case errors.Is(err, ErrTransportFailure):
		return "transport_failure"
	case errors.Is(err, complaint.ErrInvalidStatus):
		return "invalid_status"
	default:
		return "error"
	}
}
