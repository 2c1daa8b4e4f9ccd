// Package metrics instruments a sharing.Backend with Prometheus collectors.
package metrics

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/cyp0633/caldora-share/sharing"
)

// Operation status label values.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

const (
	labelOperation = "operation"
	labelStatus    = "status"
	labelErrorType = "error_type"
)

// Metrics holds the backend collectors.
type Metrics struct {
	operationsTotal   *prometheus.CounterVec
	operationDuration *prometheus.HistogramVec
	errorsTotal       *prometheus.CounterVec
	notifications     *prometheus.CounterVec
}

// New creates the collectors and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		operationsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caldora_share",
			Name:      "backend_operations_total",
			Help:      "Total number of sharing backend operations.",
		}, []string{labelOperation, labelStatus}),
		operationDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "caldora_share",
			Name:      "backend_operation_duration_seconds",
			Help:      "Sharing backend operation duration in seconds.",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{labelOperation}),
		errorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caldora_share",
			Name:      "backend_errors_total",
			Help:      "Sharing backend errors by error type.",
		}, []string{labelOperation, labelErrorType}),
		notifications: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "caldora_share",
			Name:      "notifications_enqueued_total",
			Help:      "Notifications enqueued directly through the queue by kind.",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{m.operationsTotal, m.operationDuration, m.errorsTotal, m.notifications} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// RecordOperation records one backend call.
func (m *Metrics) RecordOperation(operation string, err error, duration time.Duration) {
	status := StatusSuccess
	if err != nil {
		status = StatusError
		m.errorsTotal.WithLabelValues(operation, errorType(err)).Inc()
	}
	m.operationsTotal.WithLabelValues(operation, status).Inc()
	m.operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
}

// RecordEnqueued counts a notification accepted by the queue.
func (m *Metrics) RecordEnqueued(kind sharing.Kind) {
	m.notifications.WithLabelValues(string(kind)).Inc()
}

// WriteTextfile writes everything g gathers to path in the text exposition
// format, for pickup by the node exporter textfile collector.
func WriteTextfile(path string, g prometheus.Gatherer) error {
	return prometheus.WriteToTextfile(path, g)
}

func errorType(err error) string {
	for _, s := range []*sharing.Error{
		sharing.ErrUnknownPrincipal,
		sharing.ErrNotFound,
		sharing.ErrInvalidInput,
		sharing.ErrConflict,
		sharing.ErrStoreUnavailable,
	} {
		if errors.Is(err, s) {
			return string(s.Type)
		}
	}
	return "other"
}
