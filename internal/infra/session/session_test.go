package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type cartLine struct {
	Type   string `json:"type"`
	ItemID uint   `json:"item_id"`
	Qty    int    `json:"qty"`
}

type RedisStoreTestSuite struct {
	suite.Suite
	mr    *miniredis.Miniredis
	store *RedisStore
}

func TestRedisStoreTestSuite(t *testing.T) {
	suite.Run(t, new(RedisStoreTestSuite))
}

func (s *RedisStoreTestSuite) SetupTest() {
	s.mr = miniredis.RunT(s.T())
	client := redis.NewClient(&redis.Options{Addr: s.mr.Addr()})
	s.store = NewRedisStore(client, "session", time.Hour)
}

func (s *RedisStoreTestSuite) TestLoadMissingReturnsNew() {
	sess, err := s.store.Load(context.Background(), "")
	require.NoError(s.T(), err)
	require.True(s.T(), sess.IsNew())
	require.NotEmpty(s.T(), sess.ID)

	other, err := s.store.Load(context.Background(), "unknown")
	require.NoError(s.T(), err)
	require.True(s.T(), other.IsNew())
	require.NotEqual(s.T(), "unknown", other.ID)
}

func (s *RedisStoreTestSuite) TestSaveAndLoad() {
	ctx := context.Background()
	sess := New()
	require.NoError(s.T(), sess.Set("cart", map[string]cartLine{"p1": {Type: "product", ItemID: 1, Qty: 2}}))
	require.True(s.T(), sess.Modified())
	require.NoError(s.T(), s.store.Save(ctx, sess))
	require.False(s.T(), sess.Modified())
	require.False(s.T(), sess.IsNew())

	require.True(s.T(), s.mr.Exists("session:"+sess.ID))
	require.Equal(s.T(), time.Hour, s.mr.TTL("session:"+sess.ID))

	loaded, err := s.store.Load(ctx, sess.ID)
	require.NoError(s.T(), err)
	var cart map[string]cartLine
	found, err := loaded.Get("cart", &cart)
	require.NoError(s.T(), err)
	require.True(s.T(), found)
	require.Equal(s.T(), 2, cart["p1"].Qty)
}

func (s *RedisStoreTestSuite) TestExpiredSessionIsNew() {
	ctx := context.Background()
	sess := New()
	require.NoError(s.T(), sess.Set("k", 1))
	require.NoError(s.T(), s.store.Save(ctx, sess))

	s.mr.FastForward(2 * time.Hour)
	loaded, err := s.store.Load(ctx, sess.ID)
	require.NoError(s.T(), err)
	require.True(s.T(), loaded.IsNew())
}

func (s *RedisStoreTestSuite) TestDestroy() {
	ctx := context.Background()
	sess := New()
	require.NoError(s.T(), s.store.Save(ctx, sess))
	require.NoError(s.T(), s.store.Destroy(ctx, sess.ID))
	require.False(s.T(), s.mr.Exists("session:"+sess.ID))
}

func TestMemoryStoreExpiry(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	sess := New()
	require.NoError(t, sess.Set("k", "v"))
	require.NoError(t, store.Save(ctx, sess))

	loaded, err := store.Load(ctx, sess.ID)
	require.NoError(t, err)
	var v string
	found, err := loaded.Get("k", &v)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "v", v)

	now = now.Add(2 * time.Minute)
	loaded, err = store.Load(ctx, sess.ID)
	require.NoError(t, err)
	assert.True(t, loaded.IsNew())
}

func TestMemoryStoreSweep(t *testing.T) {
	store := NewMemoryStore(time.Minute)
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	stale := New()
	require.NoError(t, store.Save(ctx, stale))
	now = now.Add(30 * time.Second)
	fresh := New()
	require.NoError(t, store.Save(ctx, fresh))

	// stale 已過期, fresh 還剩 30 秒
	now = now.Add(45 * time.Second)
	store.Sweep()
	require.Len(t, store.entries, 1)
	require.Contains(t, store.entries, fresh.ID)

	now = now.Add(time.Minute)
	store.Sweep()
	require.Empty(t, store.entries)
}

func TestSessionDelete(t *testing.T) {
	sess := New()
	sess.Delete("missing")
	assert.False(t, sess.Modified())

	require.NoError(t, sess.Set("k", 1))
	sess.Delete("k")
	assert.Nil(t, sess.Raw("k"))
}
