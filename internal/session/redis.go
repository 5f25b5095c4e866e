package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const redisPrefix = "configurator:session:"

// RedisStore — сессии в Redis, TTL продлевается при каждой записи.
type RedisStore struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisStore(ctx context.Context, addr string, ttl time.Duration) (*RedisStore, error) {
	if addr == "" {
		return nil, fmt.Errorf("missing redis addr")
	}
	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return &RedisStore{rdb: rdb, ttl: ttl}, nil
}

func (s *RedisStore) Close() error { return s.rdb.Close() }

func redisKey(sessionID, key string) string {
	return redisPrefix + sessionID + ":" + key
}

func (s *RedisStore) Load(ctx context.Context, sessionID, key string) ([]byte, error) {
	if err := checkID(sessionID); err != nil {
		return nil, err
	}
	raw, err := s.rdb.Get(ctx, redisKey(sessionID, key)).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return raw, nil
}

func (s *RedisStore) Save(ctx context.Context, sessionID, key string, value []byte) error {
	if err := checkID(sessionID); err != nil {
		return err
	}
	if err := checkKey(key); err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, redisKey(sessionID, key), value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sessionID, key string) error {
	if err := checkID(sessionID); err != nil {
		return err
	}
	if err := s.rdb.Del(ctx, redisKey(sessionID, key)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}
