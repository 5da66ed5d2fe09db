package config

import (
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server struct {
		Address       string `yaml:"address"`
		AdminPassword string `yaml:"admin_password"`
	} `yaml:"server"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Availability struct {
		ConfigPath    string `yaml:"config_path"`
		ReloadSeconds int    `yaml:"reload_seconds"`
	} `yaml:"availability"`

	Redis struct {
		Address  string `yaml:"address"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Cache struct {
		TTLSeconds int `yaml:"ttl_seconds"`
	} `yaml:"cache"`

	Booking struct {
		MaxAdvanceDays int `yaml:"max_advance_days"`
	} `yaml:"booking"`

	Notifications struct {
		TelegramBotToken        string `yaml:"telegram_bot_token"`
		TelegramChatID          int64  `yaml:"telegram_chat_id"`
		ReminderIntervalMinutes int    `yaml:"reminder_interval_minutes"`
	} `yaml:"notifications"`

	Monitoring struct {
		HealthCheckPort   int  `yaml:"health_check_port"`
		PrometheusEnabled bool `yaml:"prometheus_enabled"`
		PrometheusPort    int  `yaml:"prometheus_port"`
	} `yaml:"monitoring"`

	Backup struct {
		Enabled       bool   `yaml:"enabled"`
		IntervalHours int    `yaml:"interval_hours"`
		Path          string `yaml:"path"`
		RetentionDays int    `yaml:"retention_days"`
	} `yaml:"backup"`
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

	if cfg.Server.Address == "" {
		cfg.Server.Address = ":8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "data/k2barber.db"
	}
	if cfg.Availability.ConfigPath == "" {
		cfg.Availability.ConfigPath = "configs/availability.yaml"
	}

	if err = os.MkdirAll(filepath.Dir(cfg.Database.Path), 0o755); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) CacheTTL() time.Duration {
	if c.Cache.TTLSeconds <= 0 {
		return 0
	}
	return time.Duration(c.Cache.TTLSeconds) * time.Second
}

func (c *Config) AvailabilityReloadInterval() time.Duration {
	if c.Availability.ReloadSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.Availability.ReloadSeconds) * time.Second
}

func (c *Config) ReminderInterval() time.Duration {
	if c.Notifications.ReminderIntervalMinutes <= 0 {
		return 15 * time.Minute
	}
	return time.Duration(c.Notifications.ReminderIntervalMinutes) * time.Minute
}
