// internal/common/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	StoreOperationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of application store operations",
		},
		[]string{"operation", "outcome"},
	)

	StoreOperationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "store_operation_duration_seconds",
			Help: "Duration of application store operations in seconds",
		},
		[]string{"operation"},
	)

	ApplicationsByStatus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "applications_status_transitions_total",
			Help: "Total number of application status transitions recorded",
		},
		[]string{"status"},
	)
)

// ObserveStoreOperation records the outcome and duration of one store call.
func ObserveStoreOperation(operation string, start time.Time, err error) {
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	StoreOperationsTotal.WithLabelValues(operation, outcome).Inc()
	StoreOperationDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
