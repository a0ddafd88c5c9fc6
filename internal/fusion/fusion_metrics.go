package fusion

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds Prometheus metrics for the fusion pipeline.
type Metrics struct {
	EvidenceIngested *prometheus.CounterVec
	EvidenceRejected *prometheus.CounterVec
	SnapshotSize     prometheus.Histogram
	IncidentsBuilt   prometheus.Histogram
	BuildDuration    prometheus.Histogram
	RulesFired       *prometheus.CounterVec
	MirrorOps        *prometheus.CounterVec
	QueriesServed    *prometheus.CounterVec
	NotifyTotal      *prometheus.CounterVec
}

// NewMetrics registers and returns fusion metrics on the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EvidenceIngested: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridwatch_evidence_ingested_total",
			Help: "Evidence records accepted at ingest, by source type.",
		}, []string{"source_type"}),
		EvidenceRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridwatch_evidence_rejected_total",
			Help: "Evidence records rejected at ingest, by reason.",
		}, []string{"reason"}),
		SnapshotSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridwatch_snapshot_size",
			Help:    "Evidence items per store snapshot.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12), // 1 .. ~2048
		}),
		IncidentsBuilt: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridwatch_incidents_built",
			Help:    "Incidents assembled per fusion run.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 10), // 1 .. ~512
		}),
		BuildDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "gridwatch_build_duration_seconds",
			Help:    "Duration of one snapshot-to-incidents fusion run.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8), // 100µs .. ~1.6s
		}),
		RulesFired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridwatch_rules_fired_total",
			Help: "Scoring rule firings by rule name.",
		}, []string{"rule"}),
		MirrorOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridwatch_mirror_ops_total",
			Help: "Durable mirror operations by op and outcome.",
		}, []string{"op", "outcome"}),
		QueriesServed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridwatch_queries_total",
			Help: "Incident queries by the path that served the response.",
		}, []string{"served_from"}),
		NotifyTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gridwatch_notifications_total",
			Help: "Incident notifications by outcome.",
		}, []string{"outcome"}),
	}

	reg.MustRegister(
		m.EvidenceIngested,
		m.EvidenceRejected,
		m.SnapshotSize,
		m.IncidentsBuilt,
		m.BuildDuration,
		m.RulesFired,
		m.MirrorOps,
		m.QueriesServed,
		m.NotifyTotal,
	)

	return m
}
