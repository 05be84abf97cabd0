// Package metrics registers the prometheus collectors shared by the sync
// pipeline. Everything lands in the default registry and is served from
// the /metrics endpoint.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ProviderCalls counts provider API calls by scope and outcome
	// (success, error, rate_limited)
	ProviderCalls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "banksync_provider_calls_total",
		Help: "Provider API calls by scope and outcome.",
	}, []string{"scope", "outcome"})

	// QuotaDenials counts scope syncs skipped because the local quota
	// ledger had no remaining calls
	QuotaDenials = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "banksync_quota_denials_total",
		Help: "Scope syncs skipped due to exhausted local quota.",
	}, []string{"scope"})

	// SyncRuns counts orchestration passes by type (manual, scheduled)
	// and outcome (success, partial, failed)
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "banksync_sync_runs_total",
		Help: "Sync runs by type and outcome.",
	}, []string{"type", "outcome"})

	// LastSlotRun records when each scheduler slot last completed
	LastSlotRun = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "banksync_last_slot_run_timestamp_seconds",
		Help: "Unix time of the last completed run per scheduler slot.",
	}, []string{"slot"})
)
