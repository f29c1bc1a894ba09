package redis_client

import (
	"context"
	"sync"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestGetRedisClientIsShared(t *testing.T) {
	mr := miniredis.RunT(t)
	a := GetRedisClient(mr.Addr(), WithDB(0))
	b := GetRedisClient(mr.Addr())
	require.Same(t, a, b)
	require.NoError(t, Ping(context.Background(), a))

	require.NoError(t, Close(mr.Addr()))
	require.NoError(t, Close(mr.Addr()))

	c := GetRedisClient(mr.Addr())
	require.NotSame(t, a, c)
	require.NoError(t, Ping(context.Background(), c))
	require.NoError(t, Close(mr.Addr()))
}

func TestGetRedisClientConcurrent(t *testing.T) {
	mr := miniredis.RunT(t)
	defer Close(mr.Addr())

	const n = 16
	clients := make([]*redis.Client, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			clients[i] = GetRedisClient(mr.Addr())
		}(i)
	}
	wg.Wait()

	for _, c := range clients[1:] {
		require.Same(t, clients[0], c)
	}
	require.NoError(t, Ping(context.Background(), clients[0]))
}
