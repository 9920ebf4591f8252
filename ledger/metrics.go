package ledger

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	namespace = "custody"
	subsystem = "ledger"

	resultHalt  = "halt"
	resultFault = "fault"
)

type metrics struct {
	invocations *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

func newMetrics() *metrics {
	return &metrics{
		invocations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "invocations_total",
			Help:      "Number of ledger invocations by method and result",
		}, []string{"method", "result"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "invocation_duration_seconds",
			Help:      "Duration of ledger invocations",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 4, 8),
		}, []string{"method"}),
	}
}

func (m *metrics) register(r prometheus.Registerer) error {
	for _, c := range []prometheus.Collector{m.invocations, m.duration} {
		if err := r.Register(c); err != nil {
			return err
		}
	}
	return nil
}

func (m *metrics) observe(method string, err error, d time.Duration) {
	res := resultHalt
	if err != nil {
		res = resultFault
	}
	m.invocations.WithLabelValues(method, res).Inc()
	m.duration.WithLabelValues(method).Observe(d.Seconds())
}
