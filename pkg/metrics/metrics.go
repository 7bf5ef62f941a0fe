package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// SubmissionsTotal counts configuration submissions by variant and outcome
	SubmissionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamsim_submissions_total",
			Help: "Total number of simulation configurations submitted to the proxy",
		},
		[]string{"variant", "outcome"},
	)

	// SubmissionDuration tracks round-trip time of the configuration endpoint
	SubmissionDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "streamsim_submission_duration_seconds",
			Help:    "Latency of configuration submissions",
			Buckets: prometheus.DefBuckets,
		},
	)

	// LogFramesTotal counts frames appended to log feeds
	LogFramesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "streamsim_log_frames_total",
			Help: "Total number of log frames appended to session feeds",
		},
	)

	// LogSessionsTotal counts closed log sessions by how they ended
	LogSessionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamsim_log_sessions_total",
			Help: "Total number of log sessions closed, by end reason",
		},
		[]string{"reason"},
	)

	// LogSessionsOpen is 1 while a log view holds a connection
	LogSessionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "streamsim_log_sessions_open",
			Help: "Number of log sessions currently holding a connection",
		},
	)

	// ClipboardCopiesTotal counts copy attempts by outcome
	ClipboardCopiesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "streamsim_clipboard_copies_total",
			Help: "Total number of clipboard copy attempts",
		},
		[]string{"outcome"},
	)
)

func init() {
	// Register metrics with the default registry
	prometheus.MustRegister(SubmissionsTotal)
	prometheus.MustRegister(SubmissionDuration)
	prometheus.MustRegister(LogFramesTotal)
	prometheus.MustRegister(LogSessionsTotal)
	prometheus.MustRegister(LogSessionsOpen)
	prometheus.MustRegister(ClipboardCopiesTotal)
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
