package main

import (
	"errors"
	"flag"
	"os"
	"time"

	"manifest-sweep/internal/config"
	"manifest-sweep/internal/console"
	"manifest-sweep/internal/database"
	"manifest-sweep/internal/exitcodes"
	"manifest-sweep/internal/logging"
	"manifest-sweep/internal/manifest"
	"manifest-sweep/internal/metrics"
	"manifest-sweep/internal/safety"
	"manifest-sweep/internal/uninstall"
)

const defaultConfigPath = "/etc/manifest-sweep/config.yaml"

func main() {
	configPath := flag.String("config", "", "Path to configuration file (default "+defaultConfigPath+" if present)")
	manifestPath := flag.String("manifest", "", "Path to the install manifest to uninstall")
	destDir := flag.String("destdir", "", "Destination-directory prefix joined to every manifest path (overrides DESTDIR)")
	dryRun := flag.Bool("dry-run", false, "Log what would be removed without removing anything")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		console.ErrorF("Failed to load config: %v", err)
		os.Exit(exitcodes.InvalidConfig)
	}

	logger := logging.NewWithConfig(cfg)

	// Precedence: flag > DESTDIR environment > config file
	prefix := cfg.DestDir
	if env := os.Getenv("DESTDIR"); env != "" {
		prefix = env
	}
	if *destDir != "" {
		prefix = *destDir
	}

	mpath := cfg.ManifestPath
	if *manifestPath != "" {
		mpath = *manifestPath
	}
	if mpath == "" {
		console.ErrorF("No manifest given: set -manifest or manifest_path in the config")
		os.Exit(exitcodes.InvalidConfig)
	}

	logger.Printf("manifest-sweep starting, manifest: %s", mpath)
	if prefix != "" {
		logger.Printf("Destination prefix: %s", prefix)
	}
	if *dryRun {
		logger.Println("DRY RUN MODE: No files will be removed")
	}

	metrics.Init()
	if cfg.Prometheus.Port > 0 {
		addr := cfg.PrometheusAddress()
		logger.Printf("Starting Prometheus metrics on %s", addr)
		metrics.StartServer(addr, logger)
	}

	var db *database.RemovalDB
	if cfg.DatabasePath != "" {
		logger.Printf("Opening removal history database: %s", cfg.DatabasePath)
		db, err = database.NewRemovalDB(cfg.DatabasePath)
		if err != nil {
			console.ErrorF("Failed to open database: %v", err)
			os.Exit(exitcodes.RemovalError)
		}
		defer func() {
			if err := db.Close(); err != nil {
				logger.Printf("ERROR: Failed to close database: %v", err)
			}
		}()
	}

	entries, err := manifest.Load(mpath)
	if err != nil {
		console.ErrorF("Cannot read manifest: %v", err)
		if errors.Is(err, manifest.ErrNotFound) {
			os.Exit(exitcodes.ManifestMissing)
		}
		os.Exit(exitcodes.RemovalError)
	}
	logger.Printf("Manifest loaded: %d entries", len(entries))

	u := uninstall.New(logger, db, uninstall.Options{
		DryRun:        *dryRun,
		DestDir:       prefix,
		IgnoreMissing: cfg.IgnoreMissingFiles(),
		ManifestPath:  mpath,
	})
	u.SetValidator(safety.NewValidator(cfg.Safety.AllowedRoots, cfg.Safety.ProtectedPaths))

	start := time.Now()
	report, err := u.Run(entries)
	metrics.ObserveRun(start, len(entries))
	if err != nil {
		console.ErrorF("Uninstall aborted: %v", err)
		if isSafetyViolation(err) {
			os.Exit(exitcodes.SafetyViolation)
		}
		os.Exit(exitcodes.RemovalError)
	}

	if *dryRun {
		console.DoneF("Dry run complete: %d of %d entries would be removed", report.Total-report.SkippedMissing, report.Total)
	} else {
		console.DoneF("Uninstall complete: removed %d of %d entries (%d already absent)",
			report.Removed, report.Total, report.SkippedMissing)
	}
}

// loadConfig resolves the effective configuration. An explicitly given
// config file must load; the default path is optional.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	if _, err := os.Stat(defaultConfigPath); err == nil {
		return config.Load(defaultConfigPath)
	}
	return config.Default(), nil
}

func isSafetyViolation(err error) bool {
	for _, target := range []error{
		safety.ErrInvalidPath,
		safety.ErrProtectedPath,
		safety.ErrOutsideAllowed,
		safety.ErrTraversal,
		safety.ErrRelativePath,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
