package cache

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "sp:cache:"

// RedisStore keeps entries in Redis for deployments with more than one
// process. Keys expire at the retention horizon, not the entry TTL, so
// stale reads remain possible until retention lapses.
type RedisStore struct {
	client    *redis.Client
	retention time.Duration
}

// NewRedisStore pings the server before returning so a bad address fails
// at startup rather than on the first request.
func NewRedisStore(ctx context.Context, opts *redis.Options, retention time.Duration) (*RedisStore, error) {
	if opts == nil {
		return nil, errors.New("redis options are required")
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, err
	}
	return &RedisStore{client: client, retention: retention}, nil
}

func (s *RedisStore) Read(ctx context.Context, key string) (*Entry, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *RedisStore) Write(ctx context.Context, key string, entry Entry) error {
	raw, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	expiry := s.retention
	if entry.TTL > expiry {
		expiry = entry.TTL
	}
	return s.client.Set(ctx, redisKeyPrefix+key, raw, expiry).Err()
}

func (s *RedisStore) Clear(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := s.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}
