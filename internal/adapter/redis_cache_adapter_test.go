package adapter

import (
	"context"
	"testing"
	"time"

	"github.com/zata-zhangtao/SideBySide/internal/domain"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisCacheAdapter_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("returns the value", func(t *testing.T) {
		client, mockRedis := redismock.NewClientMock()
		mockRedis.ExpectGet("k").SetVal("v")

		cache := NewRedisCacheAdapter(client)
		val, err := cache.Get(ctx, "k")

		require.NoError(t, err)
		assert.Equal(t, "v", val)
		assert.NoError(t, mockRedis.ExpectationsWereMet())
	})

	t.Run("translates a miss", func(t *testing.T) {
		client, mockRedis := redismock.NewClientMock()
		mockRedis.ExpectGet("missing").RedisNil()

		cache := NewRedisCacheAdapter(client)
		_, err := cache.Get(ctx, "missing")

		assert.ErrorIs(t, err, domain.ErrCacheMiss)
	})
}

func TestRedisCacheAdapter_SetAndDelete(t *testing.T) {
	ctx := context.Background()
	client, mockRedis := redismock.NewClientMock()
	mockRedis.ExpectSet("k", "v", time.Minute).SetVal("OK")
	mockRedis.ExpectDel("k").SetVal(1)

	cache := NewRedisCacheAdapter(client)
	require.NoError(t, cache.Set(ctx, "k", "v", time.Minute))
	require.NoError(t, cache.Delete(ctx, "k"))
	assert.NoError(t, mockRedis.ExpectationsWereMet())
}
