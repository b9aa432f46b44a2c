package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// SettlementsProcessed counts bridge requests by terminal state.
	SettlementsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isobridge_settlements_processed_total",
			Help: "Total number of settlement confirmations processed, by terminal state",
		},
		[]string{"state"},
	)

	// DuplicateSubmissions counts submissions rejected by the at-most-once guard.
	DuplicateSubmissions = promauto.NewCounter(prometheus.CounterOpts{
		Name: "isobridge_duplicate_submissions_total",
		Help: "Total number of settlement confirmations rejected as duplicates",
	})

	// MessagesGenerated counts persisted financial messages by type.
	MessagesGenerated = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isobridge_messages_generated_total",
			Help: "Total number of financial messages generated, by message type",
		},
		[]string{"type"},
	)

	// SynthesisDuration observes time spent building message bodies.
	SynthesisDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "isobridge_synthesis_duration_seconds",
		Help:    "Duration of message synthesis",
		Buckets: prometheus.DefBuckets,
	})

	// CommitDuration observes time spent in the consolidation commit.
	CommitDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "isobridge_commit_duration_seconds",
		Help:    "Duration of consolidation ledger commits",
		Buckets: prometheus.DefBuckets,
	})

	// StatementsGenerated counts generated account statements.
	StatementsGenerated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "isobridge_statements_generated_total",
		Help: "Total number of account statements generated",
	})

	// AuditEntriesWritten counts audit trail writes by status.
	AuditEntriesWritten = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "isobridge_audit_entries_total",
			Help: "Total number of audit entries written, by status",
		},
		[]string{"status"},
	)
)
