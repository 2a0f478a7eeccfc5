// internal/metrics/metrics.go
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Upstream names used as label values.
const (
	UpstreamRegistry      = "registry"
	UpstreamDownloads     = "downloads"
	UpstreamGithubRepo    = "github_repo"
	UpstreamGithubCommits = "github_commits"
)

// Outcomes of a single upstream call.
const (
	OutcomeOK       = "ok"
	OutcomeNotFound = "not_found"
	OutcomeError    = "error"
)

// Check results that are not a health status.
const (
	CheckInvalid  = "invalid"
	CheckNotFound = "not_found"
	CheckError    = "error"
)

// Recorder holds the service's Prometheus collectors.
type Recorder struct {
	upstreamRequests *prometheus.CounterVec
	upstreamDuration *prometheus.HistogramVec
	checks           *prometheus.CounterVec
}

// NewRecorder creates the collectors and registers them with reg.
func NewRecorder(reg prometheus.Registerer) *Recorder {
	r := &Recorder{
		upstreamRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "upstream_requests_total",
			Help: "The count of outbound requests by upstream and outcome",
		}, []string{"upstream", "outcome"}),
		upstreamDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "upstream_request_duration_seconds",
			Help:    "The durations of outbound requests",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"upstream"}),
		checks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "package_checks_total",
			Help: "The count of package checks by resulting status",
		}, []string{"status"}),
	}
	reg.MustRegister(r.upstreamRequests, r.upstreamDuration, r.checks)
	return r
}

// ObserveUpstream records one outbound call that started at start.
func (r *Recorder) ObserveUpstream(upstream, outcome string, start time.Time) {
	if r == nil {
		return
	}
	r.upstreamRequests.WithLabelValues(upstream, outcome).Inc()
	r.upstreamDuration.WithLabelValues(upstream).Observe(time.Since(start).Seconds())
}

// ObserveCheck records the result of one package check.
func (r *Recorder) ObserveCheck(status string) {
	if r == nil {
		return
	}
	r.checks.WithLabelValues(status).Inc()
}
