package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// UserOpMetrics instruments the user operation pipeline. It satisfies
// provider.Metrics.
type UserOpMetrics struct {
	stageDuration *prometheus.HistogramVec
	numUserOps    *prometheus.CounterVec
}

const apNamespace = "ap"

func NewUserOpMetrics(reg prometheus.Registerer) *UserOpMetrics {
	return &UserOpMetrics{
		stageDuration: promauto.With(reg).NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: apNamespace,
				Name:      "userop_stage_duration_seconds",
				Help:      "Time spent in each stage of user operation construction",
				Buckets:   prometheus.DefBuckets,
			}, []string{"stage"}),

		numUserOps: promauto.With(reg).NewCounterVec(
			prometheus.CounterOpts{
				Namespace: apNamespace,
				Name:      "num_userops_total",
				Help:      "The number of user operations handled by the provider, by final status",
			}, []string{"status"}),
	}
}

func (m *UserOpMetrics) ObserveStage(stage string, d time.Duration) {
	m.stageDuration.WithLabelValues(stage).Observe(d.Seconds())
}

func (m *UserOpMetrics) IncUserOp(status string) {
	m.numUserOps.WithLabelValues(status).Inc()
}
