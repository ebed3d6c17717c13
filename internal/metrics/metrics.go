// Package metrics exposes Prometheus counters for the risk engine.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// DefaultNamespace prefixes every metric name.
const DefaultNamespace = "wellwatch"

// Collector wraps the engine's Prometheus metrics in its own registry.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	Assessments             *prometheus.CounterVec
	Interventions           *prometheus.CounterVec
	ConversationAssessments *prometheus.CounterVec
	AuditFailures           *prometheus.CounterVec
	AlertsDispatched        *prometheus.CounterVec
	LexiconReloads          *prometheus.CounterVec
	Scores                  prometheus.Histogram
	ActiveSessions          prometheus.Gauge
}

// New creates a Collector. An empty namespace selects DefaultNamespace.
func New(namespace string) *Collector {
	if namespace == "" {
		namespace = DefaultNamespace
	}
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		Assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assessments_total",
			Help:      "Total number of per-message assessments by tier",
		}, []string{"tier"}),
		Interventions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interventions_total",
			Help:      "Total number of messages held or tagged",
		}, []string{"action"}),
		ConversationAssessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "conversation_assessments_total",
			Help:      "Total number of conversation assessments by risk level",
		}, []string{"risk_level"}),
		AuditFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audit_failures_total",
			Help:      "Audit entries that fell back to the console log",
		}, []string{"sink"}),
		AlertsDispatched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "alerts_dispatched_total",
			Help:      "Alert events handed to the webhook dispatcher",
		}, []string{"type"}),
		LexiconReloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "lexicon_reloads_total",
			Help:      "Lexicon hot reload attempts by status",
		}, []string{"status"}),
		Scores: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "wbc_score",
			Help:      "Distribution of per-message Well-Being Coefficient scores",
			Buckets:   []float64{0, 10, 20, 30, 50, 70, 100},
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently tracked in memory",
		}),
	}

	reg.MustRegister(
		c.Assessments,
		c.Interventions,
		c.ConversationAssessments,
		c.AuditFailures,
		c.AlertsDispatched,
		c.LexiconReloads,
		c.Scores,
		c.ActiveSessions,
	)
	return c
}

// Registry returns the collector's registry.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

// Handler returns an HTTP handler that serves the collector's metrics.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordAssessment counts a per-message assessment and observes its score.
func (c *Collector) RecordAssessment(tier string, score int) {
	if c == nil {
		return
	}
	c.Assessments.WithLabelValues(tier).Inc()
	c.Scores.Observe(float64(score))
}

// RecordIntervention counts a held or tagged message.
func (c *Collector) RecordIntervention(action string) {
	if c == nil {
		return
	}
	c.Interventions.WithLabelValues(action).Inc()
}

// RecordConversation counts a conversation assessment.
func (c *Collector) RecordConversation(riskLevel string) {
	if c == nil {
		return
	}
	c.ConversationAssessments.WithLabelValues(riskLevel).Inc()
}

// RecordAuditFailure counts an entry that could not be persisted.
func (c *Collector) RecordAuditFailure(sink string) {
	if c == nil {
		return
	}
	c.AuditFailures.WithLabelValues(sink).Inc()
}

// RecordAlert counts a dispatched alert event.
func (c *Collector) RecordAlert(eventType string) {
	if c == nil {
		return
	}
	c.AlertsDispatched.WithLabelValues(eventType).Inc()
}

// RecordReload counts a lexicon reload with status "ok" or "error".
func (c *Collector) RecordReload(status string) {
	if c == nil {
		return
	}
	c.LexiconReloads.WithLabelValues(status).Inc()
}

// SetActiveSessions sets the tracked session gauge.
func (c *Collector) SetActiveSessions(n int) {
	if c == nil {
		return
	}
	c.ActiveSessions.Set(float64(n))
}
