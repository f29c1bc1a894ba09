package appcontext

import (
	"context"
	"testing"
	"time"

	"github.com/RoyceAzure/lab/storefront/internal/config"
	"github.com/RoyceAzure/lab/storefront/internal/infra/session"
	"github.com/RoyceAzure/lab/storefront/internal/ratelimit"
	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"
)

func localConfig(t *testing.T) *config.Config {
	return &config.Config{
		Env:               "test",
		LogLevel:          "error",
		DbDriver:          "sqlite",
		SqlitePath:        "file:appcontext_" + t.Name() + "?mode=memory&cache=shared",
		SessionBackend:    "memory",
		RateLimitBackend:  "local",
		RateLimitCapacity: 5,
		RateLimitWindow:   time.Minute,
		MediaRoot:         t.TempDir(),
		MediaUrl:          "/media/",
		Currency:          "bgn",
		SiteUrl:           "http://localhost:8080",
	}
}

func TestLocalApplicationContext(t *testing.T) {
	app, err := NewApplicationContext(localConfig(t))
	require.NoError(t, err)

	require.Nil(t, app.RedisClient)
	require.Nil(t, app.Gateway)
	require.Nil(t, app.Notifier)
	require.IsType(t, &session.MemoryStore{}, app.Sessions)
	require.IsType(t, &ratelimit.FixedWindow{}, app.Limiter)
	// memory session 與 local limiter 各一個 sweeper
	require.Len(t, app.stopSweeps, 2)

	b, err := app.BrandingService.Get(context.Background())
	require.NoError(t, err)
	require.Equal(t, 200, b.LogoMaxWidth)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Shutdown(ctx))
}

func TestRedisBackedApplicationContext(t *testing.T) {
	mr := miniredis.RunT(t)
	cf := localConfig(t)
	cf.RedisAddr = mr.Addr()
	cf.SessionBackend = "redis"
	cf.RateLimitBackend = "redis"

	app, err := NewApplicationContext(cf)
	require.NoError(t, err)
	require.NotNil(t, app.RedisClient)
	require.IsType(t, &session.RedisStore{}, app.Sessions)
	require.IsType(t, &ratelimit.RedisFixedWindow{}, app.Limiter)
	require.Empty(t, app.stopSweeps)

	allowed, err := app.Limiter.Allow(context.Background(), "127.0.0.1")
	require.NoError(t, err)
	require.True(t, allowed)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, app.Shutdown(ctx))
}
