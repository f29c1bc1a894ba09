package ratelimit

import (
	"context"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisFixedWindow 多個 instance 共用計數
type RedisFixedWindow struct {
	Config
	client *redis.Client
	prefix string
	now    func() time.Time
}

var _ Limiter = (*RedisFixedWindow)(nil)

func NewRedisFixedWindow(client *redis.Client, prefix string, cfg Config) *RedisFixedWindow {
	return &RedisFixedWindow{
		Config: cfg.normalize(),
		client: client,
		prefix: prefix,
		now:    time.Now,
	}
}

func (r *RedisFixedWindow) Allow(ctx context.Context, key string) (bool, error) {
	slot := r.now().UnixNano() / int64(r.Window)
	redisKey := r.prefix + ":" + key + ":" + strconv.FormatInt(slot, 10)

	count, err := r.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return false, err
	}
	if count == 1 {
		if err := r.client.Expire(ctx, redisKey, r.Window).Err(); err != nil {
			return false, err
		}
	}
	return count <= int64(r.Capacity), nil
}
