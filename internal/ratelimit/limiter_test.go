package ratelimit

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

func TestFixedWindowCapacity(t *testing.T) {
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	fw := NewFixedWindow(Config{Capacity: 3, Window: time.Second})
	fw.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, err := fw.Allow(ctx, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, ok, "應該允許第 %d 次請求", i+1)
	}
	ok, _ := fw.Allow(ctx, "1.2.3.4")
	require.False(t, ok)

	// 不同 key 互不影響
	ok, _ = fw.Allow(ctx, "5.6.7.8")
	require.True(t, ok)

	now = now.Add(time.Second)
	ok, _ = fw.Allow(ctx, "1.2.3.4")
	require.True(t, ok)

	now = now.Add(2 * time.Second)
	fw.Sweep()
	require.Empty(t, fw.windows)
}

func TestFixedWindowConcurrent(t *testing.T) {
	fw := NewFixedWindow(Config{Capacity: 50, Window: time.Hour})
	var allowed atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := fw.Allow(context.Background(), "k"); ok {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()
	require.EqualValues(t, 50, allowed.Load())
}

type RedisLimiterTestSuite struct {
	suite.Suite
	mr      *miniredis.Miniredis
	limiter *RedisFixedWindow
	ctx     context.Context
}

func TestRedisLimiterSuite(t *testing.T) {
	suite.Run(t, new(RedisLimiterTestSuite))
}

func (s *RedisLimiterTestSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.limiter = NewRedisFixedWindow(client, "ratelimit", Config{Capacity: 2, Window: time.Minute})
	s.limiter.now = func() time.Time { return time.Unix(600, 0) }
	s.ctx = context.Background()
}

func (s *RedisLimiterTestSuite) TestBasicRateLimit() {
	for i := 0; i < 2; i++ {
		ok, err := s.limiter.Allow(s.ctx, "ip")
		require.NoError(s.T(), err)
		require.True(s.T(), ok)
	}
	ok, err := s.limiter.Allow(s.ctx, "ip")
	require.NoError(s.T(), err)
	require.False(s.T(), ok)

	require.Equal(s.T(), time.Minute, s.mr.TTL("ratelimit:ip:10"))
}

func (s *RedisLimiterTestSuite) TestNextWindow() {
	for i := 0; i < 3; i++ {
		s.limiter.Allow(s.ctx, "ip")
	}
	s.limiter.now = func() time.Time { return time.Unix(660, 0) }
	ok, err := s.limiter.Allow(s.ctx, "ip")
	require.NoError(s.T(), err)
	require.True(s.T(), ok)
}

func (s *RedisLimiterTestSuite) TestRedisDown() {
	s.mr.Close()
	_, err := s.limiter.Allow(s.ctx, "ip")
	require.Error(s.T(), err)
}
