package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoadFullConfig verifies a complete config parses with all fields
func TestLoadFullConfig(t *testing.T) {
	path := writeConfig(t, `
manifest_path: /opt/app/install_manifest.txt
dest_dir: /mnt/staging
ignore_missing: false
database_path: /var/lib/manifest-sweep/removals.db
prometheus:
  port: 9311
logging:
  rotation_days: 7
safety:
  allowed_roots:
    - /opt/app
  protected_paths:
    - /opt/app/keep
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ManifestPath != "/opt/app/install_manifest.txt" {
		t.Errorf("unexpected manifest_path: %s", cfg.ManifestPath)
	}
	if cfg.DestDir != "/mnt/staging" {
		t.Errorf("unexpected dest_dir: %s", cfg.DestDir)
	}
	if cfg.IgnoreMissingFiles() {
		t.Error("ignore_missing: false not honored")
	}
	if cfg.DatabasePath != "/var/lib/manifest-sweep/removals.db" {
		t.Errorf("unexpected database_path: %s", cfg.DatabasePath)
	}
	if cfg.Prometheus.Port != 9311 {
		t.Errorf("unexpected prometheus port: %d", cfg.Prometheus.Port)
	}
	if cfg.Logging.RotationDays != 7 {
		t.Errorf("unexpected rotation_days: %d", cfg.Logging.RotationDays)
	}
	if len(cfg.Safety.AllowedRoots) != 1 || cfg.Safety.AllowedRoots[0] != "/opt/app" {
		t.Errorf("unexpected allowed_roots: %v", cfg.Safety.AllowedRoots)
	}
	if cfg.PrometheusAddress() != ":9311" {
		t.Errorf("unexpected prometheus address: %s", cfg.PrometheusAddress())
	}
}

// TestDefaults verifies defaulting of an empty config
func TestDefaults(t *testing.T) {
	path := writeConfig(t, "{}\n")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if !cfg.IgnoreMissingFiles() {
		t.Error("ignore_missing should default to true")
	}
	if cfg.Logging.RotationDays != 30 {
		t.Errorf("rotation_days should default to 30, got %d", cfg.Logging.RotationDays)
	}
	if cfg.Prometheus.Port != 0 {
		t.Errorf("prometheus port should default to 0 (disabled), got %d", cfg.Prometheus.Port)
	}
	if cfg.DatabasePath != "" {
		t.Errorf("database_path should default to empty (disabled), got %s", cfg.DatabasePath)
	}
}

// TestDefaultWithoutFile mirrors the flags-only invocation path
func TestDefaultWithoutFile(t *testing.T) {
	cfg := Default()

	if !cfg.IgnoreMissingFiles() {
		t.Error("ignore_missing should default to true")
	}
	if cfg.Logging.RotationDays != 30 {
		t.Errorf("rotation_days should default to 30, got %d", cfg.Logging.RotationDays)
	}
}

// TestRelativePathsRejected verifies manifest_path and dest_dir must be absolute
func TestRelativePathsRejected(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr error
	}{
		{"relative manifest", "manifest_path: build/manifest.txt\n", errRelativeManifest},
		{"relative destdir", "dest_dir: staging\n", errRelativeDestDir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)
			_, err := Load(path)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestLoadMissingFile verifies a clear error for an absent config file
func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("expected error for missing config file")
	}
	if !strings.Contains(err.Error(), "open config") {
		t.Errorf("unexpected error: %v", err)
	}
}

// TestLoadMalformedYAML verifies decode errors are surfaced
func TestLoadMalformedYAML(t *testing.T) {
	path := writeConfig(t, "manifest_path: [not, a, string\n")
	_, err := Load(path)
	if err == nil {
		t.Fatal("expected error for malformed yaml")
	}
	if !strings.Contains(err.Error(), "decode yaml") {
		t.Errorf("unexpected error: %v", err)
	}
}
