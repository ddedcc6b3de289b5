package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Config holds everything the console needs at startup. YAML file first,
// environment variables win.
type Config struct {
	Backend struct {
		BaseURL string `yaml:"base_url" env:"BACKEND_BASE_URL"`
	} `yaml:"backend"`

	Redis struct {
		Addr     string `yaml:"addr" env:"REDIS_ADDR"`
		Password string `yaml:"password" env:"REDIS_PASSWORD"`
	} `yaml:"redis"`

	HTTP struct {
		ListenAddr string `yaml:"listen_addr" env:"LISTEN_ADDR"`
	} `yaml:"http"`

	Poll struct {
		StatsIntervalMs  int `yaml:"stats_interval_ms" env:"POLL_STATS_MS"`
		FrameIntervalMs  int `yaml:"frame_interval_ms" env:"POLL_FRAME_MS"`
		AlertsIntervalMs int `yaml:"alerts_interval_ms" env:"POLL_ALERTS_MS"`
	} `yaml:"poll"`

	Settings SettingsBaseline `yaml:"settings"`
}

// SettingsBaseline is the fixed base every settings push is merged over.
// Mirrors what the backend expects on POST /live/settings.
type SettingsBaseline struct {
	FPSTarget      int     `yaml:"fps_target" env:"SETTINGS_FPS_TARGET"`
	CrimeThreshold float64 `yaml:"crime_threshold" env:"SETTINGS_CRIME_THRESHOLD"`
	ShowBoxes      bool    `yaml:"show_boxes" env:"SETTINGS_SHOW_BOXES"`
	ShowWeapons    bool    `yaml:"show_weapons" env:"SETTINGS_SHOW_WEAPONS"`
}

func defaults(cfg *Config) {
	if cfg.Backend.BaseURL == "" {
		cfg.Backend.BaseURL = "http://localhost:8000"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.HTTP.ListenAddr == "" {
		cfg.HTTP.ListenAddr = ":8090"
	}
	if cfg.Poll.StatsIntervalMs == 0 {
		cfg.Poll.StatsIntervalMs = 1000
	}
	if cfg.Poll.FrameIntervalMs == 0 {
		cfg.Poll.FrameIntervalMs = 33
	}
	if cfg.Poll.AlertsIntervalMs == 0 {
		cfg.Poll.AlertsIntervalMs = 2000
	}
	if cfg.Settings.FPSTarget == 0 {
		cfg.Settings.FPSTarget = 15
	}
	if cfg.Settings.CrimeThreshold == 0 {
		cfg.Settings.CrimeThreshold = 0.35
	}
}

// Load reads the YAML file (missing file is fine, defaults apply) and then
// overlays environment variables.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	cfg.Settings.ShowBoxes = true
	cfg.Settings.ShowWeapons = true

	if path != "" {
		data, err := os.ReadFile(path)
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	defaults(cfg)
	return cfg, nil
}

// StatsInterval returns the stats poll interval as a duration.
func (c *Config) StatsInterval() time.Duration {
	return time.Duration(c.Poll.StatsIntervalMs) * time.Millisecond
}

// FrameInterval returns the frame poll interval as a duration (~30fps default).
func (c *Config) FrameInterval() time.Duration {
	return time.Duration(c.Poll.FrameIntervalMs) * time.Millisecond
}

// AlertsInterval returns the alert list poll interval as a duration.
func (c *Config) AlertsInterval() time.Duration {
	return time.Duration(c.Poll.AlertsIntervalMs) * time.Millisecond
}
