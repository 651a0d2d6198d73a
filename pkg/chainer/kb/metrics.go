package kb

import (
	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds Prometheus collectors for one knowledge base.
// A nil *metrics is valid and records nothing.
type metrics struct {
	asserts     *prometheus.CounterVec
	derivations *prometheus.CounterVec
	retractions *prometheus.CounterVec
	removals    *prometheus.CounterVec
	demotions   *prometheus.CounterVec
	asks        prometheus.Counter
	invalidAsks prometheus.Counter
	items       *prometheus.GaugeVec
}

func newMetrics(reg prometheus.Registerer) (*metrics, error) {
	if reg == nil {
		return nil, nil
	}

	m := &metrics{
		asserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chainer",
			Subsystem: "kb",
			Name:      "asserts_total",
			Help:      "External assertions, by item kind",
		}, []string{"kind"}),

		derivations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chainer",
			Subsystem: "kb",
			Name:      "derivations_total",
			Help:      "Successful forward-chaining steps, by derived item kind",
		}, []string{"kind"}),

		retractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chainer",
			Subsystem: "kb",
			Name:      "retractions_total",
			Help:      "External retractions of stored items, by item kind",
		}, []string{"kind"}),

		removals: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chainer",
			Subsystem: "kb",
			Name:      "removals_total",
			Help:      "Items physically removed, cascades included",
		}, []string{"kind"}),

		demotions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "chainer",
			Subsystem: "kb",
			Name:      "demotions_total",
			Help:      "Asserted items kept as derived because other support remains",
		}, []string{"kind"}),

		asks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chainer",
			Subsystem: "kb",
			Name:      "asks_total",
			Help:      "Ask calls",
		}),

		invalidAsks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "chainer",
			Subsystem: "kb",
			Name:      "invalid_asks_total",
			Help:      "Ask calls rejected as invalid queries",
		}),

		items: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "chainer",
			Subsystem: "kb",
			Name:      "items",
			Help:      "Stored items, by kind",
		}, []string{"kind"}),
	}

	for _, c := range []prometheus.Collector{
		m.asserts, m.derivations, m.retractions, m.removals,
		m.demotions, m.asks, m.invalidAsks, m.items,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

func (m *metrics) asserted(k Kind) {
	if m != nil {
		m.asserts.WithLabelValues(k.String()).Inc()
	}
}

func (m *metrics) derived(k Kind) {
	if m != nil {
		m.derivations.WithLabelValues(k.String()).Inc()
	}
}

func (m *metrics) retracted(k Kind) {
	if m != nil {
		m.retractions.WithLabelValues(k.String()).Inc()
	}
}

func (m *metrics) stored(k Kind) {
	if m != nil {
		m.items.WithLabelValues(k.String()).Inc()
	}
}

func (m *metrics) removed(k Kind) {
	if m != nil {
		m.removals.WithLabelValues(k.String()).Inc()
		m.items.WithLabelValues(k.String()).Dec()
	}
}

func (m *metrics) demoted(k Kind) {
	if m != nil {
		m.demotions.WithLabelValues(k.String()).Inc()
	}
}

func (m *metrics) asked(valid bool) {
	if m == nil {
		return
	}
	m.asks.Inc()
	if !valid {
		m.invalidAsks.Inc()
	}
}
