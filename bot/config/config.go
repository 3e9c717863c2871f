package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	coreconfig "github.com/m3rciful/signalbot/core/config"
	coredatabase "github.com/m3rciful/signalbot/core/database"
)

// Storage backends.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendDatabase = "database"
	BackendRedis    = "redis"
)

// RedisConfig describes the Redis session backend.
type RedisConfig struct {
	Addr      string `yaml:"addr" envconfig:"REDIS_ADDR"`
	Password  string `yaml:"password" envconfig:"REDIS_PASSWORD"`
	DB        int    `yaml:"db" envconfig:"REDIS_DB"`
	KeyPrefix string `yaml:"key_prefix" envconfig:"REDIS_KEY_PREFIX"`
}

// StorageConfig selects where session records live.
type StorageConfig struct {
	Backend  string              `yaml:"backend" envconfig:"STORAGE_BACKEND"`
	Dir      string              `yaml:"dir" envconfig:"SESSIONS_DIR"`
	Database coredatabase.Config `yaml:"database"`
	Redis    RedisConfig         `yaml:"redis"`
}

// AnalysisConfig configures the external analysis webhook.
type AnalysisConfig struct {
	URL         string        `yaml:"url" envconfig:"ANALYSIS_WEBHOOK_URL"`
	Timeout     time.Duration `yaml:"timeout" envconfig:"ANALYSIS_TIMEOUT"`
	StageDelay  time.Duration `yaml:"stage_delay" envconfig:"ANALYSIS_STAGE_DELAY"`
	PlanDetails string        `yaml:"plan_details"`
}

// ScheduleConfig controls the local day and the daily reset time.
type ScheduleConfig struct {
	Timezone string `yaml:"timezone" envconfig:"TIMEZONE"`
	ResetAt  string `yaml:"reset_at" envconfig:"RESET_AT"`

	loc    *time.Location
	hour   int
	minute int
}

// Location returns the resolved zone. Valid after Normalize.
func (s ScheduleConfig) Location() *time.Location {
	if s.loc == nil {
		return time.UTC
	}
	return s.loc
}

// ResetClock returns the hour and minute of the daily reset.
func (s ScheduleConfig) ResetClock() (int, int) {
	return s.hour, s.minute
}

// BroadcastConfig paces admin broadcasts.
type BroadcastConfig struct {
	Interval time.Duration `yaml:"interval" envconfig:"BROADCAST_INTERVAL"`
}

// BillingConfig controls the upgrade menu.
type BillingConfig struct {
	UpgradeURL string `yaml:"upgrade_url" envconfig:"UPGRADE_URL"`
	// SelfUpgrade lets users switch tiers from the upgrade menu without payment.
	SelfUpgrade bool `yaml:"self_upgrade" envconfig:"SELF_UPGRADE"`
}

// OpsConfig configures the optional operations HTTP server.
type OpsConfig struct {
	Listen string `yaml:"listen" envconfig:"OPS_LISTEN"`
	Token  string `yaml:"token" envconfig:"OPS_TOKEN"`
}

// Config is the full bot configuration. The core section is inlined so the
// YAML keeps telegram, webhook, logging and rate_limit at the top level.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Storage   StorageConfig   `yaml:"storage"`
	Analysis  AnalysisConfig  `yaml:"analysis"`
	Schedule  ScheduleConfig  `yaml:"schedule"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Billing   BillingConfig   `yaml:"billing"`
	Ops       OpsConfig       `yaml:"ops"`
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}

const (
	defaultPlanDetails = "Generate a comprehensive trading plan based on the market conditions."
	defaultUpgradeURL  = "https://t.me/cortexsignal_support"
)

// Load reads the YAML file, applies environment overrides and normalizes.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Storage.normalize(); err != nil {
		return err
	}
	if err := c.Analysis.normalize(); err != nil {
		return err
	}
	if err := c.Schedule.normalize(); err != nil {
		return err
	}
	if c.Broadcast.Interval < 0 {
		return fmt.Errorf("broadcast.interval must be >= 0")
	}
	if c.Broadcast.Interval == 0 {
		c.Broadcast.Interval = 50 * time.Millisecond
	}
	if strings.TrimSpace(c.Billing.UpgradeURL) == "" {
		c.Billing.UpgradeURL = defaultUpgradeURL
	}
	if c.Ops.Listen != "" && c.Ops.Token == "" {
		return fmt.Errorf("ops.token is required when ops.listen is set")
	}
	return nil
}

func (s *StorageConfig) normalize() error {
	s.Backend = strings.ToLower(strings.TrimSpace(s.Backend))
	switch s.Backend {
	case "":
		s.Backend = BackendFile
		fallthrough
	case BackendFile:
		if strings.TrimSpace(s.Dir) == "" {
			s.Dir = "./sessions"
		}
	case BackendMemory:
	case BackendDatabase:
		if err := s.Database.Normalize(); err != nil {
			return fmt.Errorf("storage.database: %w", err)
		}
	case BackendRedis:
		if strings.TrimSpace(s.Redis.Addr) == "" {
			s.Redis.Addr = "localhost:6379"
		}
		if s.Redis.KeyPrefix == "" {
			s.Redis.KeyPrefix = "signalbot:session:"
		}
	default:
		return fmt.Errorf("invalid storage.backend %q; allowed: file, memory, database, redis", s.Backend)
	}
	return nil
}

func (a *AnalysisConfig) normalize() error {
	a.URL = strings.TrimSpace(a.URL)
	if a.URL == "" {
		return fmt.Errorf("analysis.url is required")
	}
	u, err := url.Parse(a.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("analysis.url must be an absolute http(s) url")
	}
	if a.Timeout < 0 || a.StageDelay < 0 {
		return fmt.Errorf("analysis.timeout and analysis.stage_delay must be >= 0")
	}
	if a.Timeout == 0 {
		a.Timeout = 90 * time.Second
	}
	if strings.TrimSpace(a.PlanDetails) == "" {
		a.PlanDetails = defaultPlanDetails
	}
	return nil
}

func (s *ScheduleConfig) normalize() error {
	if strings.TrimSpace(s.Timezone) == "" {
		s.Timezone = "Asia/Jakarta"
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return fmt.Errorf("invalid schedule.timezone %q: %w", s.Timezone, err)
	}
	s.loc = loc

	if strings.TrimSpace(s.ResetAt) == "" {
		s.ResetAt = "00:00"
	}
	at, err := time.Parse("15:04", s.ResetAt)
	if err != nil {
		return fmt.Errorf("invalid schedule.reset_at %q; want HH:MM", s.ResetAt)
	}
	s.hour, s.minute = at.Hour(), at.Minute()
	return nil
}
