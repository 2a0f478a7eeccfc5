// internal/metrics/metrics_test.go
package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := NewRecorder(reg)

	r.ObserveUpstream(UpstreamRegistry, OutcomeOK, time.Now())
	r.ObserveUpstream(UpstreamRegistry, OutcomeOK, time.Now())
	r.ObserveUpstream(UpstreamDownloads, OutcomeError, time.Now())
	r.ObserveCheck("alive")

	assert.Equal(t, 2.0, testutil.ToFloat64(r.upstreamRequests.WithLabelValues(UpstreamRegistry, OutcomeOK)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.upstreamRequests.WithLabelValues(UpstreamDownloads, OutcomeError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.checks.WithLabelValues("alive")))
	assert.Equal(t, 2, testutil.CollectAndCount(r.upstreamDuration))
}

func TestRecorder_Nil(t *testing.T) {
	var r *Recorder
	assert.NotPanics(t, func() {
		r.ObserveUpstream(UpstreamGithubRepo, OutcomeOK, time.Now())
		r.ObserveCheck(CheckError)
	})
}
