package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/bookcatalog/internal/domain/book"
	apperrors "github.com/xiebiao/bookcatalog/pkg/errors"
)

func newTestClient(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestBookCache(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	cache := NewBookCache(client, time.Minute)

	got, err := cache.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Nil(t, got, "未命中")

	b := &book.Book{ID: "b1", ISBN: "97800000000011", Title: "A", Author: "Z", Genre: book.GenreFiction, PublicationYear: 2000, Price: 10, Description: "d"}
	require.NoError(t, cache.Set(ctx, b))

	got, err = cache.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Equal(t, b, got)

	require.NoError(t, cache.Delete(ctx, "b1"))
	got, err = cache.Get(ctx, "b1")
	require.NoError(t, err)
	assert.Nil(t, got)

	t.Run("过期", func(t *testing.T) {
		require.NoError(t, cache.Set(ctx, b))
		mr.FastForward(2 * time.Minute)
		got, err := cache.Get(ctx, "b1")
		require.NoError(t, err)
		assert.Nil(t, got)
	})

	t.Run("连接失败", func(t *testing.T) {
		mr.SetError("boom")
		defer mr.SetError("")
		_, err := cache.Get(ctx, "b1")
		assert.Error(t, err)
	})
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	store := NewSessionStore(client)

	_, err := store.GetSession(ctx, "u1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	require.NoError(t, store.SaveSession(ctx, "u1", map[string]interface{}{"email": "a@example.com"}, time.Hour))
	s, err := store.GetSession(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", s["email"])
	assert.Equal(t, time.Hour, mr.TTL("session:u1"))

	require.NoError(t, store.DeleteSession(ctx, "u1"))
	_, err = store.GetSession(ctx, "u1")
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)
}

func TestBlacklist(t *testing.T) {
	ctx := context.Background()
	mr, client := newTestClient(t)
	store := NewSessionStore(client)

	ok, err := store.IsInBlacklist(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, store.AddToBlacklist(ctx, "tok", time.Minute))
	ok, err = store.IsInBlacklist(ctx, "tok")
	require.NoError(t, err)
	assert.True(t, ok)

	mr.FastForward(2 * time.Minute)
	ok, err = store.IsInBlacklist(ctx, "tok")
	require.NoError(t, err)
	assert.False(t, ok, "过期后自动移除")

	require.NoError(t, store.AddToBlacklist(ctx, "expired", 0))
	assert.False(t, mr.Exists("blacklist:expired"), "已过期的Token不入黑名单")
}
