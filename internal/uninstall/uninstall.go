package uninstall

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"

	"manifest-sweep/internal/database"
	"manifest-sweep/internal/fsops"
	"manifest-sweep/internal/manifest"
	"manifest-sweep/internal/metrics"
	"manifest-sweep/internal/safety"

	"github.com/prometheus/client_golang/prometheus"
)

// ErrRemovalFailed indicates a removal failed and the run was aborted at
// that entry. Entries after it were not attempted.
var ErrRemovalFailed = errors.New("removal failed")

// Logger interface for structured logging in uninstall
type Logger interface {
	Info(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}

// stdLogger wraps standard log.Logger to implement Logger interface
type stdLogger struct {
	*log.Logger
}

func (l *stdLogger) Info(msg string, args ...interface{}) {
	l.logWithLevel("INFO", msg, args...)
}

func (l *stdLogger) Error(msg string, args ...interface{}) {
	l.logWithLevel("ERROR", msg, args...)
}

func (l *stdLogger) logWithLevel(level, msg string, args ...interface{}) {
	var parts []interface{}
	parts = append(parts, fmt.Sprintf("[%s]", level), msg)
	parts = append(parts, args...)
	l.Logger.Println(parts...)
}

// Metrics interface for uninstall metrics
type Metrics interface {
	FilesRemovedTotal() prometheus.Counter
	FilesSkippedMissingTotal() prometheus.Counter
	BytesFreedTotal() prometheus.Counter
	RemovalErrorsTotal(kind string) prometheus.Counter
}

// globalMetrics wraps the package-level metrics to implement Metrics
type globalMetrics struct{}

func (globalMetrics) FilesRemovedTotal() prometheus.Counter { return metrics.FilesRemovedTotal }

func (globalMetrics) FilesSkippedMissingTotal() prometheus.Counter {
	return metrics.FilesSkippedMissingTotal
}

func (globalMetrics) BytesFreedTotal() prometheus.Counter { return metrics.BytesFreedTotal }
func (globalMetrics) RemovalErrorsTotal(kind string) prometheus.Counter {
	return metrics.RemovalErrorsTotal.WithLabelValues(kind)
}

// Options configures an Uninstaller
type Options struct {
	DryRun        bool
	DestDir       string // Prefix joined to every manifest path before removal
	IgnoreMissing bool   // Already-absent entries count as removed
	ManifestPath  string // Recorded with each history row
}

// Report summarizes one uninstall run. On abort it reflects the entries
// processed before the failure.
type Report struct {
	Total          int
	Removed        int
	SkippedMissing int
	BytesFreed     int64
}

// Uninstaller removes the files listed in an install manifest, in order,
// aborting on the first unrecoverable failure
type Uninstaller struct {
	logger    Logger
	deleter   fsops.Deleter
	validator *safety.Validator
	metrics   Metrics
	db        *database.RemovalDB // Removal history, nil disables
	opts      Options
}

// New creates an Uninstaller with the real OS deleter and default validator
func New(logger *log.Logger, db *database.RemovalDB, opts Options) *Uninstaller {
	if logger == nil {
		logger = log.Default()
	}
	return &Uninstaller{
		logger:    &stdLogger{Logger: logger},
		deleter:   fsops.OSDeleter{},
		validator: safety.NewValidator(nil, nil),
		metrics:   globalMetrics{},
		db:        db,
		opts:      opts,
	}
}

// SetDeleter replaces the delete backend (tests use fsops.FakeDeleter)
func (u *Uninstaller) SetDeleter(d fsops.Deleter) {
	u.deleter = d
}

// SetValidator replaces the safety validator
func (u *Uninstaller) SetValidator(v *safety.Validator) {
	u.validator = v
}

// Run removes every manifest entry in order. The first failure aborts the
// run: the returned error names the offending path and entries after it are
// left untouched. An empty manifest is a successful no-op.
func (u *Uninstaller) Run(entries []manifest.Entry) (Report, error) {
	report := Report{Total: len(entries)}

	if u.opts.DryRun {
		u.logger.Info("DRY RUN: no files will be removed")
	}
	u.logger.Info("Starting uninstall", "entries", len(entries), "dest_dir", u.opts.DestDir)

	for i, entry := range entries {
		// Traversal must be caught on the raw entry: joining cleans ".."
		// segments away before the validator could see them
		if safety.DetectTraversal(string(entry)) {
			u.logger.Error("Removal blocked", "path", string(entry), "error", safety.ErrTraversal)
			u.record(database.ActionError, string(entry), 0, safety.ErrTraversal.Error())
			u.metrics.RemovalErrorsTotal("safety").Inc()
			return report, fmt.Errorf("removing %s (entry %d of %d): %w", entry, i+1, len(entries), safety.ErrTraversal)
		}

		target := u.target(string(entry))

		// Progress notice before any action on the entry
		u.logger.Info(fmt.Sprintf("Uninstalling %s", target))

		if err := u.validator.ValidateRemoveTarget(target); err != nil {
			u.logger.Error("Removal blocked", "path", target, "error", err)
			u.record(database.ActionError, target, 0, err.Error())
			u.metrics.RemovalErrorsTotal("safety").Inc()
			return report, fmt.Errorf("removing %s (entry %d of %d): %w", target, i+1, len(entries), err)
		}

		// Size is recorded best effort, before the file disappears
		var size int64
		if info, err := os.Lstat(target); err == nil && !info.IsDir() {
			size = info.Size()
		}

		if u.opts.DryRun {
			u.logger.Info("[DRY RUN] Would remove", "path", target, "size", size)
			u.record(database.ActionDryRun, target, size, "")
			continue
		}

		if err := u.deleter.Remove(target); err != nil {
			if errors.Is(err, os.ErrNotExist) && u.opts.IgnoreMissing {
				u.logger.Info("Already absent, skipping", "path", target)
				u.record(database.ActionSkipMissing, target, 0, "")
				u.metrics.FilesSkippedMissingTotal().Inc()
				report.SkippedMissing++
				continue
			}

			u.logger.Error("Failed to remove", "path", target, "error", err)
			u.record(database.ActionError, target, size, err.Error())
			u.metrics.RemovalErrorsTotal("remove").Inc()
			return report, fmt.Errorf("%w: %s (entry %d of %d): %v", ErrRemovalFailed, target, i+1, len(entries), err)
		}

		u.record(database.ActionRemove, target, size, "")
		u.metrics.FilesRemovedTotal().Inc()
		u.metrics.BytesFreedTotal().Add(float64(size))
		report.Removed++
		report.BytesFreed += size
	}

	u.logger.Info("Uninstall complete",
		"removed", report.Removed,
		"skipped_missing", report.SkippedMissing,
		"bytes_freed", report.BytesFreed,
	)

	return report, nil
}

// target joins the destination-directory prefix with a manifest path.
// Joining an absolute manifest path under the prefix follows the DESTDIR
// convention of staged installs.
func (u *Uninstaller) target(path string) string {
	if u.opts.DestDir == "" {
		return filepath.Clean(path)
	}
	return filepath.Join(u.opts.DestDir, path)
}

// record writes one history row; a DB write failure never fails the run
func (u *Uninstaller) record(action, path string, size int64, errMsg string) {
	if u.db == nil {
		return
	}
	if err := u.db.RecordRemoval(action, path, size, u.opts.ManifestPath, u.opts.DestDir, errMsg); err != nil {
		u.logger.Error("Failed to record history", "error", err)
	}
}
