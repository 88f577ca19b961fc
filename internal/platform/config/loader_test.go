package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoader_Load(t *testing.T) {
	// 创建临时配置文件
	tempDir := t.TempDir()
	configFile := filepath.Join(tempDir, ".config.yaml")

	configContent := `
api:
  base_url: "https://api.skycanvas.example/api"
  timeout: 10s
platform:
  name: "device"
log:
  log_level: "DEBUG"
  log_dir: "/tmp/logs"
  log_file: "test.log"
keyvalue:
  driver: "memory"
  namespace: "test"
`

	err := os.WriteFile(configFile, []byte(configContent), 0644)
	if err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	loader := NewLoader().WithDotEnv(false).WithPath(configFile)
	res, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}

	cfg := res.Config
	if cfg.API.BaseURL != "https://api.skycanvas.example/api" {
		t.Errorf("expected base URL from file, got %s", cfg.API.BaseURL)
	}
	if cfg.API.Timeout != 10*time.Second {
		t.Errorf("expected timeout 10s, got %s", cfg.API.Timeout)
	}
	if cfg.Platform.Name != "device" {
		t.Errorf("expected platform device, got %s", cfg.Platform.Name)
	}
	if cfg.KeyValue.Driver != "memory" {
		t.Errorf("expected keyvalue driver memory, got %s", cfg.KeyValue.Driver)
	}
	if cfg.Log.Level != "DEBUG" {
		t.Errorf("expected log level DEBUG, got %s", cfg.Log.Level)
	}
}

func TestLoader_MissingFileUsesDefaults(t *testing.T) {
	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "absent.yaml"))
	res, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if res.Config.Platform.Name != "wechat" {
		t.Errorf("expected default platform wechat, got %s", res.Config.Platform.Name)
	}
	if res.Config.KeyValue.Driver != "sqlite" {
		t.Errorf("expected default driver sqlite, got %s", res.Config.KeyValue.Driver)
	}
}

func TestLoader_EnvOverrides(t *testing.T) {
	t.Setenv("SKYCANVAS_API_BASE_URL", "https://override.example/api")
	t.Setenv("SKYCANVAS_KV_DRIVER", "memory")

	loader := NewLoader().WithDotEnv(false).WithPath(filepath.Join(t.TempDir(), "absent.yaml"))
	res, err := loader.Load()
	if err != nil {
		t.Fatalf("failed to load config: %v", err)
	}
	if res.Config.API.BaseURL != "https://override.example/api" {
		t.Errorf("env override not applied, got %s", res.Config.API.BaseURL)
	}
	if res.Config.KeyValue.Driver != "memory" {
		t.Errorf("env override not applied, got %s", res.Config.KeyValue.Driver)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"default config valid", func(*Config) {}, false},
		{"empty base url", func(c *Config) { c.API.BaseURL = "" }, true},
		{"empty platform", func(c *Config) { c.Platform.Name = "" }, true},
		{"bad kv driver", func(c *Config) { c.KeyValue.Driver = "etcd" }, true},
		{"redis driver valid", func(c *Config) { c.KeyValue.Driver = "redis" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := Validate(cfg)
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
