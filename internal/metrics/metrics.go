// Package metrics holds the Prometheus collectors of the API and consumers.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "hunt_tickets"

// Registry is the registry served on /metrics
var Registry = prometheus.NewRegistry()

var (
	AppInfo = promauto.With(Registry).NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "app_info",
			Help:      "Application information (always 1, details in labels)",
		},
		[]string{"version", "environment"},
	)

	// ActivityPublished counts activity events by subject and outcome (ok|error).
	ActivityPublished = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "activity_events_published_total",
			Help:      "Activity events handed to the message broker",
		},
		[]string{"subject", "result"},
	)

	// StatsCacheLookups counts stats cache lookups by resource and result (hit|miss|error).
	StatsCacheLookups = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_cache_lookups_total",
			Help:      "Stats cache lookups",
		},
		[]string{"resource", "result"},
	)

	ConsumedMessages = promauto.With(Registry).NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "consumed_messages_total",
			Help:      "Messages processed by the consumers",
		},
		[]string{"subject", "result"},
	)

	DBOpenConnections = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "db_open_connections",
		Help:      "Open database connections",
	})

	DBInUseConnections = promauto.With(Registry).NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "db_in_use_connections",
		Help:      "Database connections in use",
	})
)

// Init registers the runtime collectors and sets the info gauge.
func Init(version, environment string) {
	Registry.MustRegister(collectors.NewGoCollector())
	Registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	AppInfo.WithLabelValues(version, environment).Set(1)
}

// Result maps an error to the "ok"/"error" label value.
func Result(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// SetPoolStats records the current database pool usage.
func SetPoolStats(open, inUse int) {
	DBOpenConnections.Set(float64(open))
	DBInUseConnections.Set(float64(inUse))
}
