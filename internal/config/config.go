package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Path is the database path; the driver derives <path>.data and
	// <path>.idx from it.
	Path           string `yaml:"path"`
	BackupDir      string `yaml:"backup_dir"`
	AutoBackup     bool   `yaml:"auto_backup"`
	BackupInterval int    `yaml:"backup_interval_seconds"`
	CacheCapacity  int    `yaml:"cache_capacity"`
	Debug          bool   `yaml:"debug"`
}

func Default() Config {
	return Config{
		Path:           "data/app",
		BackupDir:      "backups",
		AutoBackup:     true,
		BackupInterval: 3600,
		CacheCapacity:  1000,
	}
}

// Load builds the configuration from defaults, then the optional yaml file,
// then SNAPDB_* environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, errors.Wrap(err, "reading config file")
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, errors.Wrap(err, "parsing config file")
		}
	}

	return FromEnv(cfg), nil
}

func FromEnv(cfg Config) Config {
	if v := os.Getenv("SNAPDB_PATH"); v != "" {
		cfg.Path = v
	}
	if v := os.Getenv("SNAPDB_BACKUP_DIR"); v != "" {
		cfg.BackupDir = v
	}
	if v := os.Getenv("SNAPDB_AUTO_BACKUP"); v != "" {
		cfg.AutoBackup = v == "true" || v == "1"
	}
	if v := os.Getenv("SNAPDB_BACKUP_INTERVAL"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.BackupInterval = n
		}
	}
	if v := os.Getenv("SNAPDB_CACHE_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.CacheCapacity = n
		}
	}
	if v := os.Getenv("SNAPDB_DEBUG"); v != "" {
		cfg.Debug = v == "true" || v == "1"
	}
	return cfg
}

// EnsureDirs creates the database and backup directories.
func (cfg Config) EnsureDirs() error {
	if dir := filepath.Dir(cfg.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return errors.Wrap(err, "creating database directory")
		}
	}
	if cfg.BackupDir != "" {
		if err := os.MkdirAll(cfg.BackupDir, 0755); err != nil {
			return errors.Wrap(err, "creating backup directory")
		}
	}
	return nil
}
