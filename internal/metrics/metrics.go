// Package metrics exposes prometheus instruments for provisioning runs.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

const namespace = "switchyard"

// Result label values.
const (
	ResultSuccess = "success"
	ResultWarning = "warning"
	ResultFailure = "failure"
	ResultSkipped = "skipped"
)

// Registry holds every switchyard collector plus the Go runtime collectors.
var Registry = prometheus.NewRegistry()

var (
	devicesCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "devices_created_total",
			Help:      "Devices created by site",
		},
		[]string{"site"},
	)

	serialsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "serials_skipped_total",
			Help:      "Serial numbers not provisioned by reason",
		},
		[]string{"reason"},
	)

	addressesAssigned = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "addresses_assigned_total",
			Help:      "Management address assignments by result",
		},
		[]string{"result"},
	)

	promotions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "promotions_total",
			Help:      "Promotion decisions by result",
		},
		[]string{"result"},
	)

	pipelineTriggers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pipeline_triggers_total",
			Help:      "Pipeline trigger calls by variable and result",
		},
		[]string{"variable", "result"},
	)

	externalCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "external_call_duration_seconds",
			Help:      "Latency of calls to external services",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		},
		[]string{"service"},
	)

	runs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "runs_total",
			Help:      "Provisioning runs by operation and result",
		},
		[]string{"operation", "result"},
	)
)

func init() {
	Registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		devicesCreated,
		serialsSkipped,
		addressesAssigned,
		promotions,
		pipelineTriggers,
		externalCallDuration,
		runs,
	)
}

// DeviceCreated counts a device created at site.
func DeviceCreated(site string) {
	devicesCreated.WithLabelValues(site).Inc()
}

// SerialSkipped counts a serial that was not provisioned.
func SerialSkipped(reason string) {
	serialsSkipped.WithLabelValues(reason).Inc()
}

// AddressAssigned counts one device handled by the address orchestrator.
func AddressAssigned(result string) {
	addressesAssigned.WithLabelValues(result).Inc()
}

// Promotion counts one promotion decision.
func Promotion(result string) {
	promotions.WithLabelValues(result).Inc()
}

// PipelineTrigger counts one pipeline trigger call.
func PipelineTrigger(variable, result string) {
	pipelineTriggers.WithLabelValues(variable, result).Inc()
}

// ObserveCall records the latency of an external call started at start.
func ObserveCall(service string, start time.Time) {
	externalCallDuration.WithLabelValues(service).Observe(time.Since(start).Seconds())
}

// Run counts a finished run.
func Run(operation, result string) {
	runs.WithLabelValues(operation, result).Inc()
}
