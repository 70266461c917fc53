package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var initOnce sync.Once

// Uninstall run metrics
var (
	// RunDuration tracks how long uninstall runs take
	RunDuration prometheus.Histogram

	// FilesRemovedTotal tracks total files removed
	FilesRemovedTotal prometheus.Counter

	// FilesSkippedMissingTotal tracks entries already absent at removal time
	FilesSkippedMissingTotal prometheus.Counter

	// RemovalErrorsTotal tracks removal failures, labeled by kind
	RemovalErrorsTotal *prometheus.CounterVec

	// BytesFreedTotal tracks total bytes freed across runs
	BytesFreedTotal prometheus.Counter

	// ManifestEntries records the entry count of the last loaded manifest
	ManifestEntries prometheus.Gauge

	// LastRunTimestamp records Unix timestamp of the last uninstall run
	LastRunTimestamp prometheus.Gauge
)

// Init initializes all metrics and registers them with Prometheus.
// Safe to call multiple times (uses sync.Once).
func Init() {
	initOnce.Do(func() {
		RunDuration = NewDurationHistogram(
			"manifestsweep_run_duration_seconds",
			"Duration of uninstall runs in seconds.",
		)
		FilesRemovedTotal = NewCounter(
			"manifestsweep_files_removed_total",
			"Total number of files removed.",
		)
		FilesSkippedMissingTotal = NewCounter(
			"manifestsweep_files_skipped_missing_total",
			"Total number of manifest entries already absent at removal time.",
		)
		RemovalErrorsTotal = NewCounterVec(
			"manifestsweep_removal_errors_total",
			"Total number of removal failures by kind.",
			[]string{"kind"},
		)
		BytesFreedTotal = NewCounter(
			"manifestsweep_bytes_freed_total",
			"Total bytes freed by removals.",
		)
		ManifestEntries = NewGauge(
			"manifestsweep_manifest_entries",
			"Number of entries in the last loaded manifest.",
		)
		LastRunTimestamp = NewGauge(
			"manifestsweep_last_run_timestamp",
			"Timestamp of the last uninstall run (Unix epoch seconds).",
		)

		prometheus.MustRegister(
			RunDuration,
			FilesRemovedTotal,
			FilesSkippedMissingTotal,
			RemovalErrorsTotal,
			BytesFreedTotal,
			ManifestEntries,
			LastRunTimestamp,
		)

		// Seed gauges so they appear in /metrics before the first run
		ManifestEntries.Set(0)
		LastRunTimestamp.Set(0)
	})
}

// ObserveRun records the summary metrics of one uninstall run
func ObserveRun(start time.Time, manifestEntries int) {
	RunDuration.Observe(time.Since(start).Seconds())
	ManifestEntries.Set(float64(manifestEntries))
	LastRunTimestamp.Set(float64(time.Now().Unix()))
}
