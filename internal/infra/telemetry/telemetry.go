package telemetry

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the Prometheus collectors owned by the infra layer. HTTP
// request collectors live in the transport middleware; these cover the
// asynchronous paths that never cross the router.
type Metrics struct {
	EventsPublished *prometheus.CounterVec
	EventsFailed    *prometheus.CounterVec
}

// NewMetrics constructs and registers the infra collectors.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	published := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agro",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Total number of domain events handed to the message bus, by topic.",
	}, []string{"topic"})

	if err := register(reg, &published); err != nil {
		return nil, err
	}

	failed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "agro",
		Subsystem: "events",
		Name:      "publish_failures_total",
		Help:      "Total number of domain events that could not be published, by topic.",
	}, []string{"topic"})

	if err := register(reg, &failed); err != nil {
		return nil, err
	}

	return &Metrics{EventsPublished: published, EventsFailed: failed}, nil
}

func register(reg prometheus.Registerer, vec **prometheus.CounterVec) error {
	if err := reg.Register(*vec); err != nil {
		already, ok := err.(prometheus.AlreadyRegisteredError)
		if !ok {
			return fmt.Errorf("register collector: %w", err)
		}
		existing, ok := already.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return fmt.Errorf("existing collector has unexpected type %T", already.ExistingCollector)
		}
		*vec = existing
	}
	return nil
}

// RecordPublished increments the published counter for a topic.
func (m *Metrics) RecordPublished(topic string) {
	if m == nil || m.EventsPublished == nil {
		return
	}
	m.EventsPublished.WithLabelValues(topic).Inc()
}

// RecordPublishFailure increments the failure counter for a topic.
func (m *Metrics) RecordPublishFailure(topic string) {
	if m == nil || m.EventsFailed == nil {
		return
	}
	m.EventsFailed.WithLabelValues(topic).Inc()
}
