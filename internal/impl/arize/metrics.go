package arize

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

const metricsNamespace = "arize_exporter"

// Metrics holds the prometheus counters updated by an Exporter. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	exports             prometheus.Counter
	exportFailures      prometheus.Counter
	exportedSpans       prometheus.Counter
	translatedSpans     prometheus.Counter
	translationFallback prometheus.Counter
}

// NewMetrics creates exporter metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		exports: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "exports_total",
			Help:      "Number of span batches handed to the underlying exporter.",
		}),
		exportFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "export_failures_total",
			Help:      "Number of span batches the underlying exporter failed to send.",
		}),
		exportedSpans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "spans_total",
			Help:      "Number of spans handed to the underlying exporter.",
		}),
		translatedSpans: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "translated_spans_total",
			Help:      "Number of spans whose message payloads were converted to the GenAI schema.",
		}),
		translationFallback: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Name:      "translation_fallbacks_total",
			Help:      "Number of message payloads left unchanged because they could not be converted.",
		}),
	}

	for _, c := range []prometheus.Collector{
		m.exports, m.exportFailures, m.exportedSpans, m.translatedSpans, m.translationFallback,
	} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register exporter metric: %w", err)
		}
	}
	return m, nil
}

func (m *Metrics) export(spans int) {
	if m == nil {
		return
	}
	m.exports.Inc()
	m.exportedSpans.Add(float64(spans))
}

func (m *Metrics) exportFailed() {
	if m == nil {
		return
	}
	m.exportFailures.Inc()
}

func (m *Metrics) translated(spans, fallbacks int) {
	if m == nil {
		return
	}
	m.translatedSpans.Add(float64(spans))
	m.translationFallback.Add(float64(fallbacks))
}
