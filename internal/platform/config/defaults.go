package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "http://localhost:8080/api",
			Timeout: 30 * time.Second,
		},
		Platform: PlatformConfig{
			Name: "wechat",
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "data/logs",
			File:  "client.log",
		},
		KeyValue: KeyValueConfig{
			Driver:    "sqlite",
			Namespace: "skycanvas",
			SQLite: KVSQLiteConfig{
				Path: "data/skycanvas.db",
			},
			Redis: KVRedisConfig{
				Addr:   "127.0.0.1:6379",
				Prefix: "skycanvas:kv:",
			},
		},
	}
}
