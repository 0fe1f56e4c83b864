// Package metric provides Prometheus metrics for sessgate.
package metric

import "github.com/prometheus/client_golang/prometheus"

// Counter reports a current count at scrape time.
type Counter interface {
	Count() int
}

// SessionCollector exposes the size of a session registry as a gauge.
// The value is read on every scrape, so no bookkeeping is needed on insert.
type SessionCollector struct {
	source Counter
	desc   *prometheus.Desc
}

// NewSessionCollector creates a collector reading from source.
func NewSessionCollector(source Counter) *SessionCollector {
	return &SessionCollector{
		source: source,
		desc: prometheus.NewDesc(
			prometheus.BuildFQName(namespace, "", "sessions_active"),
			"Number of session tokens currently registered.",
			nil, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *SessionCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.desc
}

// Collect implements prometheus.Collector.
func (c *SessionCollector) Collect(ch chan<- prometheus.Metric) {
	ch <- prometheus.MustNewConstMetric(c.desc, prometheus.GaugeValue, float64(c.source.Count()))
}
