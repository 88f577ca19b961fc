package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	platformerrors "skycanvas-client-go/internal/platform/errors"
)

const (
	defaultConfigPath = ".config.yaml"
	envConfigPath     = "SKYCANVAS_CONFIG"
	envBaseURL        = "SKYCANVAS_API_BASE_URL"
	envPlatform       = "SKYCANVAS_PLATFORM"
	envKVDriver       = "SKYCANVAS_KV_DRIVER"
	envRedisAddr      = "SKYCANVAS_REDIS_ADDR"
)

// Loader reads configuration from a YAML file with optional .env overlay
// and environment variable overrides.
type Loader struct {
	useDotEnv bool
	path      string
}

func NewLoader() *Loader {
	return &Loader{useDotEnv: true}
}

// WithDotEnv toggles loading variables from a .env file before reading config.
func (l *Loader) WithDotEnv(enabled bool) *Loader {
	l.useDotEnv = enabled
	return l
}

// WithPath overrides the configuration file path (useful for tests).
func (l *Loader) WithPath(path string) *Loader {
	if path != "" {
		l.path = path
	}
	return l
}

// Result captures the loaded configuration and its origin path.
type Result struct {
	Config *Config
	Path   string
}

func (l *Loader) Load() (*Result, error) {
	if l.useDotEnv {
		if err := godotenv.Load(); err != nil {
			fmt.Println("未找到 .env 文件，使用系统环境变量")
		}
	}

	path := l.path
	if path == "" {
		path = os.Getenv(envConfigPath)
	}
	if path == "" {
		path = defaultConfigPath
	}

	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindConfig,
				"config.load", "failed to parse config file", err)
		}
	case os.IsNotExist(err):
		// Missing file is fine, defaults plus env overrides apply.
	default:
		return nil, platformerrors.Wrap(platformerrors.KindConfig,
			"config.load", "failed to read config file", err)
	}

	applyEnvOverrides(cfg)

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return &Result{Config: cfg, Path: path}, nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(envBaseURL); v != "" {
		cfg.API.BaseURL = v
	}
	if v := os.Getenv(envPlatform); v != "" {
		cfg.Platform.Name = v
	}
	if v := os.Getenv(envKVDriver); v != "" {
		cfg.KeyValue.Driver = v
	}
	if v := os.Getenv(envRedisAddr); v != "" {
		cfg.KeyValue.Redis.Addr = v
	}
}

// Validate rejects configurations the client cannot start with.
func Validate(cfg *Config) error {
	if cfg.API.BaseURL == "" {
		return platformerrors.New(platformerrors.KindConfig,
			"config.validate", "api.base_url must not be empty")
	}
	if cfg.API.Timeout <= 0 {
		cfg.API.Timeout = 30 * time.Second
	}
	if cfg.Platform.Name == "" {
		return platformerrors.New(platformerrors.KindConfig,
			"config.validate", "platform.name must not be empty")
	}
	switch cfg.KeyValue.Driver {
	case "", "memory", "sqlite", "redis":
	default:
		return platformerrors.New(platformerrors.KindConfig,
			"config.validate", fmt.Sprintf("unsupported keyvalue driver: %s", cfg.KeyValue.Driver))
	}
	return nil
}
