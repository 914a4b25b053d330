// Package metrics provides Prometheus instrumentation for the assistant
// server: channel connections, message throughput, feedback votes and reply
// latency.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the server collectors on their own registry.
type Metrics struct {
	registry *prometheus.Registry

	// Connections tracks open client channels, labeled by transport:
	// "websocket", "nats" or "pipe".
	Connections *prometheus.GaugeVec

	// Messages counts processed events, labeled by type: "received",
	// "replied" or "rejected".
	Messages *prometheus.CounterVec

	// Feedback counts send_feedback votes by value.
	Feedback *prometheus.CounterVec

	// Replies counts assistant replies by kind: "structured" or "text".
	Replies *prometheus.CounterVec

	ReplyLatency prometheus.Histogram
}

// New registers every collector, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Connections: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "cureverse_connections",
			Help: "Current number of open client channels",
		}, []string{"transport"}),
		Messages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cureverse_messages_total",
			Help: "Total number of channel events processed",
		}, []string{"type"}),
		Feedback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cureverse_feedback_total",
			Help: "Total number of feedback votes",
		}, []string{"value"}),
		Replies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "cureverse_replies_total",
			Help: "Total number of assistant replies",
		}, []string{"kind"}),
		ReplyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "cureverse_reply_latency_seconds",
			Help:    "Time from send_message to receive_message",
			Buckets: []float64{.005, .025, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.Connections,
		m.Messages,
		m.Feedback,
		m.Replies,
		m.ReplyLatency,
	)
	return m
}

// ObserveReply records one reply of the given kind that took d.
func (m *Metrics) ObserveReply(kind string, d time.Duration) {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues("replied").Inc()
	m.Replies.WithLabelValues(kind).Inc()
	m.ReplyLatency.Observe(d.Seconds())
}

// Received counts an inbound event.
func (m *Metrics) Received() {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues("received").Inc()
}

// Rejected counts an inbound event that could not be handled.
func (m *Metrics) Rejected() {
	if m == nil {
		return
	}
	m.Messages.WithLabelValues("rejected").Inc()
}

// Vote counts a feedback vote.
func (m *Metrics) Vote(value string) {
	if m == nil {
		return
	}
	m.Feedback.WithLabelValues(value).Inc()
}

// Connected adjusts the open-channel gauge for transport by delta.
func (m *Metrics) Connected(transport string, delta float64) {
	if m == nil {
		return
	}
	m.Connections.WithLabelValues(transport).Add(delta)
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the Prometheus metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
