// Package keyvalue persists the client's durable session state: the bearer
// token, the cached profile record, and the anonymous device identity.
package keyvalue

import (
	"context"
)

// Logical keys used by the session core.
const (
	KeyToken    = "token"
	KeyUserInfo = "userInfo"
	KeyDeviceID = "deviceId"
)

// Store defines the behaviour required by the session store.
// Get reports absence through the boolean, not an error.
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close(ctx context.Context) error
}

// Config describes the high level store selection parameters.
type Config struct {
	Driver    string
	Namespace string
	SQLite    *SQLiteConfig
	Redis     *RedisConfig
}

// SQLiteConfig provides the database dependency parameters.
type SQLiteConfig struct {
	Path string
}

// RedisConfig captures connection options.
type RedisConfig struct {
	Addr     string
	Username string
	Password string
	DB       int
	Prefix   string
}
