package keyvalue

import (
	"fmt"

	"gorm.io/gorm"

	platformerrors "skycanvas-client-go/internal/platform/errors"
)

// Driver identifiers supported by the keyvalue domain.
const (
	DriverMemory = "memory"
	DriverSQLite = "sqlite"
	DriverRedis  = "redis"
)

// Dependencies captures external handles required by certain drivers.
type Dependencies struct {
	SQLiteDB *gorm.DB
}

// New creates a store based on the provided configuration.
func New(cfg Config, deps Dependencies) (Store, error) {
	driver := cfg.Driver
	if driver == "" {
		driver = DriverSQLite
	}

	switch driver {
	case DriverMemory:
		return NewMemory(), nil
	case DriverSQLite:
		if deps.SQLiteDB == nil {
			return nil, platformerrors.New(platformerrors.KindStorage,
				"kv.factory", "sqlite driver requires database handle")
		}
		return NewSQLite(deps.SQLiteDB, cfg)
	case DriverRedis:
		return NewRedis(cfg)
	default:
		return nil, platformerrors.New(platformerrors.KindStorage,
			"kv.factory", fmt.Sprintf("unsupported keyvalue driver: %s", driver))
	}
}
