package metrics

import "github.com/prometheus/client_golang/prometheus"

func init() { register(pollRunsTotal, pollChecksTotal) }

var (
	pollRunsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "pnr_poll_runs_total",
			Help: "Total number of scheduled poll sweeps over tracked sessions.",
		},
	)

	pollChecksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pnr_poll_checks_total",
			Help: "Scheduled auto-checks, labeled by outcome.",
		},
		[]string{"outcome"}, // 'submitted', 'skipped_locked', 'dropped'
	)
)

func IncPollRun() {
	pollRunsTotal.Inc()
}

func IncPollCheck(outcome string) {
	pollChecksTotal.WithLabelValues(norm(outcome)).Inc()
}
