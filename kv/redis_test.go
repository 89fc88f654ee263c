package kv_test

import (
	"context"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jrsteele09/go-employee-console/kv"
	"github.com/stretchr/testify/require"
)

func TestRedis(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	store, err := kv.DialRedis(context.Background(), addr, os.Getenv("REDIS_TEST_PASSWORD"), 0, "employee-console-test:"+uuid.NewString()+":")
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })

	exerciseStore(t, store)

	t.Run("set all and watch", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		t.Cleanup(cancel)

		var calls atomic.Int32
		require.NoError(t, store.Watch(ctx, func() { calls.Add(1) }))

		require.NoError(t, store.SetAll(ctx, map[string]string{"token": "abc", "id": "7"}))
		value, err := store.Get(ctx, "id")
		require.NoError(t, err)
		require.Equal(t, "7", value)

		require.Eventually(t, func() bool { return calls.Load() > 0 }, 2*time.Second, 10*time.Millisecond)
		require.NoError(t, store.Del(ctx, "token"))
		require.NoError(t, store.Del(ctx, "id"))
	})
}

func TestDialRedis_Unreachable(t *testing.T) {
	_, err := kv.DialRedis(context.Background(), "127.0.0.1:1", "", 0, "x:")
	require.Error(t, err)
}
