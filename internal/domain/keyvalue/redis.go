package keyvalue

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"

	platformerrors "skycanvas-client-go/internal/platform/errors"
)

type redisStore struct {
	client *redis.Client
	prefix string
}

// NewRedis constructs a redis-backed store. Entries carry no TTL: the
// session core owns their lifecycle explicitly.
func NewRedis(cfg Config) (Store, error) {
	if cfg.Redis == nil {
		return nil, platformerrors.New(platformerrors.KindStorage,
			"kv.redis", "redis configuration missing")
	}
	if cfg.Redis.Addr == "" {
		return nil, platformerrors.New(platformerrors.KindStorage,
			"kv.redis", "redis address required")
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, platformerrors.Wrap(platformerrors.KindStorage,
			"kv.redis", "redis ping failed", err)
	}

	prefix := cfg.Redis.Prefix
	if prefix == "" {
		prefix = "skycanvas:kv:"
	}
	if cfg.Namespace != "" {
		prefix += cfg.Namespace + ":"
	}

	return &redisStore{client: client, prefix: prefix}, nil
}

func (s *redisStore) key(k string) string {
	return s.prefix + k
}

func (s *redisStore) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, platformerrors.Wrap(platformerrors.KindStorage,
			"kv.get", "redis get failed", err)
	}
	return value, true, nil
}

func (s *redisStore) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"kv.set", "redis set failed", err)
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return platformerrors.Wrap(platformerrors.KindStorage,
			"kv.remove", "redis del failed", err)
	}
	return nil
}

func (s *redisStore) Close(context.Context) error {
	return s.client.Close()
}
