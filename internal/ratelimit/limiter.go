package ratelimit

import (
	"context"
	"time"

	er "github.com/RoyceAzure/rj/util/rj_error"
)

var ErrRateLimited = er.New(er.TooManyRequestsCode, "rate limit exceeded")

// Limiter 以 key (例: client ip) 為單位限流
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

type Config struct {
	Capacity int
	Window   time.Duration
}

func DefaultConfig() Config {
	return Config{
		Capacity: 30,
		Window:   time.Minute,
	}
}

func (c Config) normalize() Config {
	d := DefaultConfig()
	if c.Capacity <= 0 {
		c.Capacity = d.Capacity
	}
	if c.Window <= 0 {
		c.Window = d.Window
	}
	return c
}
