package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: test-token
  admin_ids: [42]
analysis:
  url: https://hooks.example.com/signal
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Telegram.Token != "test-token" || !cfg.Telegram.IsAdmin(42) {
		t.Fatalf("core section not decoded: %+v", cfg.Telegram)
	}
	if cfg.Storage.Backend != BackendFile || cfg.Storage.Dir != "./sessions" {
		t.Fatalf("storage = %+v", cfg.Storage)
	}
	if cfg.Analysis.Timeout != 90*time.Second || cfg.Analysis.StageDelay != 0 {
		t.Fatalf("analysis = %+v", cfg.Analysis)
	}
	if cfg.Broadcast.Interval != 50*time.Millisecond {
		t.Fatalf("broadcast interval = %v", cfg.Broadcast.Interval)
	}
	if cfg.Schedule.Location().String() != "Asia/Jakarta" {
		t.Fatalf("zone = %v", cfg.Schedule.Location())
	}
	if h, m := cfg.Schedule.ResetClock(); h != 0 || m != 0 {
		t.Fatalf("reset clock = %02d:%02d", h, m)
	}
}

func TestLoadEnvOverridesNested(t *testing.T) {
	path := writeConfig(t, `
telegram:
  token: file-token
analysis:
  url: https://hooks.example.com/signal
  timeout: 30s
storage:
  backend: redis
`)
	t.Setenv("ANALYSIS_STAGE_DELAY", "250ms")
	t.Setenv("REDIS_ADDR", "cache:6380")
	t.Setenv("RESET_AT", "06:30")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Analysis.Timeout != 30*time.Second || cfg.Analysis.StageDelay != 250*time.Millisecond {
		t.Fatalf("analysis = %+v", cfg.Analysis)
	}
	if cfg.Storage.Redis.Addr != "cache:6380" || cfg.Storage.Redis.KeyPrefix == "" {
		t.Fatalf("redis = %+v", cfg.Storage.Redis)
	}
	if h, m := cfg.Schedule.ResetClock(); h != 6 || m != 30 {
		t.Fatalf("reset clock = %02d:%02d", h, m)
	}
}

func TestNormalizeRejects(t *testing.T) {
	base := func() *Config {
		c := &Config{}
		c.Telegram.Token = "x"
		c.Analysis.URL = "https://hooks.example.com"
		return c
	}
	cases := map[string]func(*Config){
		"missing url":  func(c *Config) { c.Analysis.URL = "" },
		"relative url": func(c *Config) { c.Analysis.URL = "/hook" },
		"bad backend":  func(c *Config) { c.Storage.Backend = "s3" },
		"bad zone":     func(c *Config) { c.Schedule.Timezone = "Mars/Base" },
		"bad reset":    func(c *Config) { c.Schedule.ResetAt = "25:00" },
		"ops no token": func(c *Config) { c.Ops.Listen = ":8081" },
	}
	for name, mutate := range cases {
		cfg := base()
		mutate(cfg)
		if err := cfg.Normalize(); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}
}
