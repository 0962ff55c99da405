// Package metrics records Prometheus metrics for error reporting.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Report kinds used as label values.
const (
	KindError     = "error"
	KindException = "exception"
	KindShutdown  = "shutdown"
)

var (
	// reportsTotal tracks reports handed to a hub
	reportsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errhandler_reports_total",
			Help: "Total number of error reports submitted to the hub",
		},
		[]string{"kind"},
	)

	// reportFailures tracks reports the hub failed to accept
	reportFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errhandler_report_failures_total",
			Help: "Total number of error reports the hub failed to capture",
		},
		[]string{"kind"},
	)
)

// RecordReport records a report submitted to the hub.
func RecordReport(kind string) {
	reportsTotal.WithLabelValues(kind).Inc()
}

// RecordReportFailure records a report the hub returned an error for.
func RecordReportFailure(kind string) {
	reportFailures.WithLabelValues(kind).Inc()
}
