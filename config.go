package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/jalad-shrimali/bureaux-filter/bureau"
)

const (
	defaultAddr        = ":8080"
	defaultMaxUploadMB = 10
	maxUploadMBCap     = 100
)

type Config struct {
	Addr        string `yaml:"addr"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
	SnapshotDB  string `yaml:"snapshot_db"`
	DefaultMode string `yaml:"default_mode"`
}

func defaultConfig() Config {
	return Config{
		Addr:        defaultAddr,
		MaxUploadMB: defaultMaxUploadMB,
		DefaultMode: string(bureau.Subset),
	}
}

func sanitizeConfig(cfg Config) Config {
	cfg.Addr = strings.TrimSpace(cfg.Addr)
	if cfg.Addr == "" {
		cfg.Addr = defaultAddr
	}
	if cfg.MaxUploadMB < 1 {
		cfg.MaxUploadMB = defaultMaxUploadMB
	}
	if cfg.MaxUploadMB > maxUploadMBCap {
		cfg.MaxUploadMB = maxUploadMBCap
	}
	cfg.SnapshotDB = strings.TrimSpace(cfg.SnapshotDB)
	mode, err := bureau.ParseMatchMode(cfg.DefaultMode)
	if err != nil {
		mode = bureau.Subset
	}
	cfg.DefaultMode = string(mode)
	return cfg
}

// loadConfig reads path (when non-empty) over the defaults, then applies the
// PORT, BUREAUX_MAX_UPLOAD_MB and BUREAUX_SNAPSHOT_DB environment variables.
func loadConfig(path string, getenv func(string) string) (Config, error) {
	cfg := defaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if port := strings.TrimSpace(getenv("PORT")); port != "" {
		cfg.Addr = ":" + port
	}
	if v := strings.TrimSpace(getenv("BUREAUX_MAX_UPLOAD_MB")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("BUREAUX_MAX_UPLOAD_MB: %w", err)
		}
		cfg.MaxUploadMB = n
	}
	if v := getenv("BUREAUX_SNAPSHOT_DB"); v != "" {
		cfg.SnapshotDB = v
	}
	return sanitizeConfig(cfg), nil
}
