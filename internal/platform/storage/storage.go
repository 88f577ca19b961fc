package storage

import (
	"os"
	"path/filepath"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	platformerrors "skycanvas-client-go/internal/platform/errors"
)

// KeyValueEntry is the GORM model backing the persistent key-value store.
// Values are stored as JSON so structured records (userInfo) and plain
// strings (token, deviceId) share one table.
type KeyValueEntry struct {
	ID        uint           `gorm:"primaryKey"`
	Namespace string         `gorm:"type:varchar(64);uniqueIndex:idx_kv_ns_key;not null"`
	Key       string         `gorm:"type:varchar(128);uniqueIndex:idx_kv_ns_key;not null"`
	Value     datatypes.JSON `gorm:"not null"`
	UpdatedAt time.Time
}

// Open initializes the SQLite database used for local client state.
// The parent directory is created when missing.
func Open(path string) (*gorm.DB, error) {
	if path == "" {
		path = filepath.Join("data", "skycanvas.db")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, platformerrors.Wrap(platformerrors.KindStorage,
				"storage.open", "failed to create data directory", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage,
			"storage.open", "failed to open database", err)
	}

	if err := db.AutoMigrate(&KeyValueEntry{}); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage,
			"storage.open", "failed to migrate database", err)
	}

	return db, nil
}
