// Package metrics provides Prometheus metrics for the evaluation pipeline.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"ArticleEvaluator/internal/ports"
)

const namespace = "articleevaluator"

// Collector implements ports.EvaluationMetrics on a Prometheus registry.
type Collector struct {
	evaluations        *prometheus.CounterVec
	evaluationDuration prometheus.Histogram
	modelCallDuration  *prometheus.HistogramVec
	untaggedFeedback   prometheus.Counter
}

var _ ports.EvaluationMetrics = (*Collector)(nil)

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Collector {
	factory := promauto.With(reg)

	return &Collector{
		evaluations: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "evaluations_total",
				Help:      "Total number of evaluations by outcome",
			},
			[]string{"outcome"},
		),
		evaluationDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "evaluation_duration_seconds",
				Help:      "Duration of evaluations in seconds",
				Buckets:   []float64{0.01, 0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
		),
		modelCallDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "model_call_duration_seconds",
				Help:      "Duration of chat completion calls in seconds",
				Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 20, 30, 60},
			},
			[]string{"status"},
		),
		untaggedFeedback: factory.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "feedback_untagged_total",
				Help:      "Feedback entries without a CRITICAL, IMPROVE or MINOR prefix",
			},
		),
	}
}

// ObserveEvaluation records a finished evaluation.
func (c *Collector) ObserveEvaluation(outcome string, elapsed time.Duration) {
	c.evaluations.WithLabelValues(outcome).Inc()
	c.evaluationDuration.Observe(elapsed.Seconds())
}

// ObserveModelCall records a chat completion call.
func (c *Collector) ObserveModelCall(status string, elapsed time.Duration) {
	c.modelCallDuration.WithLabelValues(status).Observe(elapsed.Seconds())
}

// AddUntaggedFeedback counts feedback entries missing a severity prefix.
func (c *Collector) AddUntaggedFeedback(count int) {
	c.untaggedFeedback.Add(float64(count))
}
