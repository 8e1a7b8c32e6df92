package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() {
	register(
		statusFetchesTotal,
		statusFetchLatencyMs,
		changeDecisionsTotal,
		notificationsTotal,
	)
}

var (
	statusFetchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pnr_status_fetches_total",
			Help: "PNR status fetches labeled by result (ok or the fetch error kind).",
		},
		[]string{"result"},
	)

	statusFetchLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pnr_status_fetch_latency_ms",
			Help:    "Status fetch latency distribution in milliseconds.",
			Buckets: []float64{50, 100, 250, 500, 1000, 2000, 4000, 8000, 15000},
		},
		[]string{"success"},
	)

	changeDecisionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pnr_change_decisions_total",
			Help: "Change detector decisions per policy.",
		},
		[]string{"policy", "decision"},
	)

	notificationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pnr_notifications_total",
			Help: "Notifications sent to chats, labeled by kind and delivery outcome.",
		},
		[]string{"kind", "delivered"},
	)
)

func ObserveFetch(result string, latencyMs int64, success bool) {
	statusFetchesTotal.WithLabelValues(norm(result)).Inc()
	statusFetchLatencyMs.WithLabelValues(strconv.FormatBool(success)).Observe(float64(latencyMs))
}

func IncChangeDecision(policy, decision string) {
	changeDecisionsTotal.WithLabelValues(norm(policy), norm(decision)).Inc()
}

func IncNotification(kind string, delivered bool) {
	notificationsTotal.WithLabelValues(norm(kind), strconv.FormatBool(delivered)).Inc()
}
