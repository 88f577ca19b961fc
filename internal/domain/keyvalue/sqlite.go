package keyvalue

import (
	"context"
	"errors"
	"time"

	"github.com/bytedance/sonic"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	platformerrors "skycanvas-client-go/internal/platform/errors"
	"skycanvas-client-go/internal/platform/storage"
)

type sqliteStore struct {
	db        *gorm.DB
	namespace string
}

// NewSQLite builds a SQLite-backed store on top of the shared client database.
func NewSQLite(db *gorm.DB, cfg Config) (Store, error) {
	if db == nil {
		return nil, platformerrors.New(platformerrors.KindStorage,
			"kv.sqlite", "sqlite store requires database handle")
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = "default"
	}
	return &sqliteStore{db: db, namespace: namespace}, nil
}

func (s *sqliteStore) Get(ctx context.Context, key string) (string, bool, error) {
	var entry storage.KeyValueEntry
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", s.namespace, key).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, platformerrors.Wrap(platformerrors.KindStorage,
			"kv.get", "failed to read entry", err)
	}

	var value string
	if err := sonic.Unmarshal(entry.Value, &value); err != nil {
		return "", false, platformerrors.Wrap(platformerrors.KindStorage,
			"kv.get", "failed to decode entry value", err)
	}
	return value, true, nil
}

func (s *sqliteStore) Set(ctx context.Context, key, value string) error {
	encoded, err := sonic.Marshal(value)
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"kv.set", "failed to encode value", err)
	}

	entry := storage.KeyValueEntry{
		Namespace: s.namespace,
		Key:       key,
		Value:     encoded,
		UpdatedAt: time.Now(),
	}
	err = s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "namespace"}, {Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
		}).
		Create(&entry).Error
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"kv.set", "failed to write entry", err)
	}
	return nil
}

func (s *sqliteStore) Remove(ctx context.Context, key string) error {
	err := s.db.WithContext(ctx).
		Where("namespace = ? AND key = ?", s.namespace, key).
		Delete(&storage.KeyValueEntry{}).Error
	if err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"kv.remove", "failed to delete entry", err)
	}
	return nil
}

func (s *sqliteStore) Close(context.Context) error {
	return nil
}
