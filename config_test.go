package main

import (
	"os"
	"path/filepath"
	"testing"
)

func env(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig("", env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if cfg != defaultConfig() {
		t.Fatalf("cfg = %+v, want %+v", cfg, defaultConfig())
	}
}

func TestLoadConfigFileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bureaux.yaml")
	yml := "addr: \"127.0.0.1:9000\"\nmax_upload_mb: 500\nsnapshot_db: /tmp/a.db\ndefault_mode: exact\n"
	if err := os.WriteFile(path, []byte(yml), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := loadConfig(path, env(nil))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != "127.0.0.1:9000" || cfg.MaxUploadMB != maxUploadMBCap || cfg.SnapshotDB != "/tmp/a.db" || cfg.DefaultMode != "exact" {
		t.Fatalf("file cfg = %+v", cfg)
	}

	cfg, err = loadConfig(path, env(map[string]string{
		"PORT":                  "3000",
		"BUREAUX_MAX_UPLOAD_MB": "5",
		"BUREAUX_SNAPSHOT_DB":   "/var/snap.db",
	}))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Addr != ":3000" || cfg.MaxUploadMB != 5 || cfg.SnapshotDB != "/var/snap.db" {
		t.Fatalf("env cfg = %+v", cfg)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	if _, err := loadConfig(filepath.Join(t.TempDir(), "missing.yaml"), env(nil)); err == nil {
		t.Error("expected error for a named config file that does not exist")
	}

	bad := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(bad, []byte("max_upload_mb: [1, 2"), 0o644)
	if _, err := loadConfig(bad, env(nil)); err == nil {
		t.Error("expected error for invalid yaml")
	}

	if _, err := loadConfig("", env(map[string]string{"BUREAUX_MAX_UPLOAD_MB": "ten"})); err == nil {
		t.Error("expected error for a non-numeric upload limit")
	}
}

func TestSanitizeConfig(t *testing.T) {
	cfg := sanitizeConfig(Config{Addr: "  ", MaxUploadMB: -3, DefaultMode: "strict"})
	if cfg.Addr != defaultAddr || cfg.MaxUploadMB != defaultMaxUploadMB || cfg.DefaultMode != "avec-autres" {
		t.Fatalf("sanitized = %+v", cfg)
	}
}
