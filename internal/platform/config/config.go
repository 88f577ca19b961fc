package config

import (
	"time"
)

type Config struct {
	API      APIConfig      `yaml:"api"`
	Platform PlatformConfig `yaml:"platform"`
	Log      LogConfig      `yaml:"log"`
	KeyValue KeyValueConfig `yaml:"keyvalue"`
}

type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// PlatformConfig selects the runtime platform the client shell is built for.
// The name decides which login strategies are available at startup.
type PlatformConfig struct {
	Name string `yaml:"name"`
}

type LogConfig struct {
	Level string `yaml:"log_level"`
	Dir   string `yaml:"log_dir"`
	File  string `yaml:"log_file"`
}

type KeyValueConfig struct {
	Driver    string         `yaml:"driver"`
	Namespace string         `yaml:"namespace"`
	SQLite    KVSQLiteConfig `yaml:"sqlite,omitempty"`
	Redis     KVRedisConfig  `yaml:"redis,omitempty"`
}

type KVSQLiteConfig struct {
	Path string `yaml:"path"`
}

type KVRedisConfig struct {
	Addr     string `yaml:"addr"`
	Username string `yaml:"username,omitempty"`
	Password string `yaml:"password,omitempty"`
	DB       int    `yaml:"db,omitempty"`
	Prefix   string `yaml:"prefix,omitempty"`
}
