package kafka

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProducerMetrics holds the publish collectors for one service. A nil
// *ProducerMetrics records nothing.
type ProducerMetrics struct {
	published *prometheus.CounterVec
	failures  *prometheus.CounterVec
	duration  *prometheus.HistogramVec
}

// NewProducerMetrics creates the producer collectors and registers them
// with reg.
func NewProducerMetrics(reg prometheus.Registerer, service string) (*ProducerMetrics, error) {
	labels := prometheus.Labels{"service": service}
	m := &ProducerMetrics{
		published: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "kafka_producer_messages_published_total",
			Help:        "Messages accepted by the Kafka writer",
			ConstLabels: labels,
		}, []string{"topic"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name:        "kafka_producer_publish_errors_total",
			Help:        "Messages the Kafka writer rejected",
			ConstLabels: labels,
		}, []string{"topic"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:        "kafka_producer_publish_duration_seconds",
			Help:        "Time spent handing one message to the Kafka writer",
			Buckets:     prometheus.DefBuckets,
			ConstLabels: labels,
		}, []string{"topic"}),
	}

	for _, c := range []prometheus.Collector{m.published, m.failures, m.duration} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *ProducerMetrics) observe(topic string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.duration.WithLabelValues(topic).Observe(time.Since(start).Seconds())
	if err != nil {
		m.failures.WithLabelValues(topic).Inc()
		return
	}
	m.published.WithLabelValues(topic).Inc()
}
