package instrumentation

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains the Prometheus metrics for the parse pipeline.
type Metrics struct {
	MessagesTotal  *prometheus.CounterVec
	BytesTotal     prometheus.Counter
	TradesTotal    prometheus.Counter
	ExcludedTotal  *prometheus.CounterVec
	SecuritiesSeen prometheus.Gauge
}

// NewMetrics creates and registers all Prometheus metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		MessagesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "itchvwap_messages_total",
			Help: "Total number of ITCH messages decoded, by message type",
		}, []string{"type"}),

		BytesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "itchvwap_bytes_total",
			Help: "Total number of uncompressed feed bytes consumed",
		}),

		TradesTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "itchvwap_trades_total",
			Help: "Total number of trades collected onto the tape",
		}),

		ExcludedTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "itchvwap_trades_excluded_total",
			Help: "Executions excluded from volume, by reason",
		}, []string{"reason"}),

		SecuritiesSeen: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "itchvwap_securities_seen",
			Help: "Number of securities registered from the stock directory",
		}),
	}
}

// RecordMessage counts one decoded message of the given type tag.
func (m *Metrics) RecordMessage(tag byte) {
	m.MessagesTotal.WithLabelValues(string(tag)).Inc()
}

// RecordBytes adds consumed feed bytes.
func (m *Metrics) RecordBytes(n int64) {
	m.BytesTotal.Add(float64(n))
}

// RecordTrade counts one collected trade.
func (m *Metrics) RecordTrade() {
	m.TradesTotal.Inc()
}

// RecordExcluded counts an execution excluded from volume
// (reason: "non_printable" or "pre_open").
func (m *Metrics) RecordExcluded(reason string) {
	m.ExcludedTotal.WithLabelValues(reason).Inc()
}

// SetSecurities records the directory size.
func (m *Metrics) SetSecurities(n int) {
	m.SecuritiesSeen.Set(float64(n))
}
