// Package metric provides Prometheus metrics for sessgate.
//
// This package implements metrics collection and exposition:
//
//   - prometheus.go: metric registry, recording helpers and HTTP handler
//   - collector.go: scrape-time collector for registry size
//
// Metrics include:
//
//   - Session creation counter and active session gauge
//   - Request counters and latency histograms by request class
//   - WebSocket upgrade outcomes
//   - Backend forwarding errors
//
// Metrics are exposed at /metrics on a dedicated listener when configured.
package metric
