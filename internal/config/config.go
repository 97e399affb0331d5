package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	API struct {
		BaseURL         string  `yaml:"base_url"`
		APIKey          string  `yaml:"api_key"`
		CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
		RequestsPerSec  float64 `yaml:"requests_per_sec"`
		RequestBurst    int     `yaml:"request_burst"`
		TimeoutSeconds  int     `yaml:"timeout_seconds"`
	} `yaml:"api"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Watch struct {
		RefreshSeconds int `yaml:"refresh_seconds"`
	} `yaml:"watch"`

	Report struct {
		OutputDir string `yaml:"output_dir"`
	} `yaml:"report"`
}

func Load(path string) (*Config, error) {
	if path == "" {
		path = "configs/config.yaml"
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Support ${ENV_VAR} placeholders in YAML config.
	data = []byte(os.ExpandEnv(string(data)))

	var cfg Config
	if err = yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/ureserve.db"
	}
	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = "reports"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) APITimeout() time.Duration {
	if c.API.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

func (c *Config) CacheTTL() time.Duration {
	if c.API.CacheTTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.API.CacheTTLSeconds) * time.Second
}

func (c *Config) RefreshInterval() time.Duration {
	if c.Watch.RefreshSeconds <= 0 {
		return 60 * time.Second
	}
	return time.Duration(c.Watch.RefreshSeconds) * time.Second
}

func (c *Config) BackupInterval() time.Duration {
	if c.Backup.IntervalHours <= 0 {
		return 24 * time.Hour
	}
	return time.Duration(c.Backup.IntervalHours) * time.Hour
}

func (c *Config) RequestsPerSec() float64 {
	if c.API.RequestsPerSec <= 0 {
		return 5
	}
	return c.API.RequestsPerSec
}

func (c *Config) RequestBurst() int {
	if c.API.RequestBurst <= 0 {
		return 10
	}
	return c.API.RequestBurst
}
