// Package metrics holds the Prometheus instrumentation for gymgate.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	heartbeatsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymgate",
		Name:      "heartbeats_total",
		Help:      "Device heartbeats received, by outcome.",
	}, []string{"outcome"}) // ok | unknown_device

	accessEventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymgate",
		Name:      "access_events_total",
		Help:      "Access events appended to the audit log.",
	}, []string{"event_type", "granted"})

	commandsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymgate",
		Name:      "device_commands_total",
		Help:      "Device command status transitions.",
	}, []string{"status"})

	syncResolutionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "gymgate",
		Name:      "biometric_sync_resolutions_total",
		Help:      "Biometric sync attempts resolved, by result.",
	}, []string{"result"}) // completed | failed

	wsClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "gymgate",
		Name:      "websocket_clients",
		Help:      "Currently connected realtime subscribers.",
	})

	devicesOffline = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "gymgate",
		Name:      "devices_marked_offline_total",
		Help:      "Devices marked offline by the liveness sweeper.",
	})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "gymgate",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)

func RecordHeartbeat(outcome string) {
	heartbeatsTotal.WithLabelValues(outcome).Inc()
}

func RecordAccessEvent(eventType string, granted bool) {
	g := "false"
	if granted {
		g = "true"
	}
	accessEventsTotal.WithLabelValues(eventType, g).Inc()
}

func RecordCommandStatus(status string) {
	commandsTotal.WithLabelValues(status).Inc()
}

func RecordSyncResolution(result string) {
	syncResolutionsTotal.WithLabelValues(result).Inc()
}

func TrackWSClient(connected bool) {
	if connected {
		wsClients.Inc()
	} else {
		wsClients.Dec()
	}
}

func RecordDevicesMarkedOffline(n int64) {
	devicesOffline.Add(float64(n))
}

func RecordHTTPRequest(method, path, status string, d time.Duration) {
	httpDuration.WithLabelValues(method, path, status).Observe(d.Seconds())
}
