package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectorRecordsOutcomes(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveEvaluation("ok", 2*time.Second)
	c.ObserveEvaluation("ok", time.Second)
	c.ObserveEvaluation("model_call_failure", 30*time.Second)
	c.ObserveModelCall("timeout", 30*time.Second)
	c.AddUntaggedFeedback(3)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.evaluations.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.evaluations.WithLabelValues("model_call_failure")))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.untaggedFeedback))
	assert.Equal(t, 1, testutil.CollectAndCount(c.modelCallDuration))
	assert.Equal(t, 1, testutil.CollectAndCount(c.evaluationDuration))
}

func TestNewRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	New(reg)

	assert.Panics(t, func() { New(reg) })
	assert.NotPanics(t, func() { New(prometheus.NewRegistry()) })
}
