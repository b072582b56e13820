// Package metrics defines the Prometheus metrics for the VPN access manager.
// It is the single source of truth for metric names, labels, and help
// strings. Metrics register themselves with the default registry via
// promauto; expose them by mounting promhttp on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "vpnaccess"

// SyncRunsTotal counts completed reconciliation runs.
// Labels:
//   - trigger: "scheduled" or "manual"
//   - result: "ok", "partial" (per-user errors), or "aborted" (external store
//     unreachable mid-run)
var SyncRunsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_runs_total",
		Help:      "Total number of reconciliation runs, by trigger and result.",
	},
	[]string{"trigger", "result"},
)

// SyncRunDuration measures how long a full reconciliation run takes.
var SyncRunDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "sync_run_duration_seconds",
		Help:      "Duration of reconciliation runs from snapshot to freeze.",
		Buckets:   prometheus.DefBuckets,
	},
)

// UsersProvisionedTotal counts individual external-store mutations applied.
// Label:
//   - action: "create", "update", or "delete"
var UsersProvisionedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "users_provisioned_total",
		Help:      "Total number of external store mutations applied, by action.",
	},
	[]string{"action"},
)

// SyncErrorsTotal counts failures observed during reconciliation.
// Label:
//   - kind: "logical" (per-username, run continued) or "infrastructure"
//     (run aborted)
var SyncErrorsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "sync_errors_total",
		Help:      "Total number of reconciliation failures, by kind.",
	},
	[]string{"kind"},
)

// DirectoryUsers reports the directory row count from the most recent
// snapshot (sync run or status query).
var DirectoryUsers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "directory_users",
		Help:      "Directory user count at the last reconciliation snapshot.",
	},
)

// ExternalUsers reports the external store username count from the most
// recent snapshot.
var ExternalUsers = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "external_users",
		Help:      "External store username count at the last reconciliation snapshot.",
	},
)

// SchedulerArmed reports whether the periodic sync timer is armed (1) or
// stopped (0).
var SchedulerArmed = promauto.NewGauge(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "scheduler_armed",
		Help:      "Whether the periodic sync timer is currently armed.",
	},
)
