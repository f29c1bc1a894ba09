package session

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

var _ Store = (*RedisStore)(nil)

type RedisStore struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
}

func NewRedisStore(client *redis.Client, prefix string, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: prefix,
		ttl:    ttl,
	}
}

func (r *RedisStore) setPrefixKey(key string) string {
	var builder strings.Builder
	builder.Grow(len(r.prefix) + 1 + len(key))
	builder.WriteString(r.prefix)
	builder.WriteString(":")
	builder.WriteString(key)
	return builder.String()
}

func (r *RedisStore) Load(ctx context.Context, id string) (*Session, error) {
	if id == "" {
		return New(), nil
	}
	raw, err := r.client.Get(ctx, r.setPrefixKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return New(), nil
	}
	if err != nil {
		return nil, err
	}
	return decode(id, raw)
}

// Save 每次寫入都會刷新 ttl
func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	raw, err := s.encode()
	if err != nil {
		return err
	}
	if err := r.client.Set(ctx, r.setPrefixKey(s.ID), raw, r.ttl).Err(); err != nil {
		return err
	}
	s.isNew = false
	s.modified = false
	return nil
}

func (r *RedisStore) Destroy(ctx context.Context, id string) error {
	return r.client.Del(ctx, r.setPrefixKey(id)).Err()
}
