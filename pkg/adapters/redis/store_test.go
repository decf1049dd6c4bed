package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/mygenetics/reportnav/pkg/adapters/redis"
	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/ports"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)

	store := redis.NewFromClient(client)
	ports.RunSessionStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	mr, client := newClient(t)

	now := time.Now()
	store := redis.NewFromClient(client,
		redis.WithTTL(time.Hour),
		redis.WithClock(func() time.Time { return now }),
	)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSession("u1", "MENU", now)))
	assert.Equal(t, time.Hour, mr.TTL("reportnav:session:u1"))

	users, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, users, "u1")

	// Saving again refreshes the inactivity deadline.
	mr.FastForward(30 * time.Minute)
	require.NoError(t, store.Save(ctx, domain.NewSession("u1", "INPUT_QUESTION", now)))
	assert.Equal(t, time.Hour, mr.TTL("reportnav:session:u1"))

	mr.FastForward(2 * time.Hour)
	_, err = store.Load(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	// The index is pruned lazily once its deadline has passed.
	now = now.Add(2 * time.Hour)
	users, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)

	store := redis.NewFromClient(client, redis.WithPrefix("bot-a:"))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSession("u1", "MENU", time.Now())))
	assert.True(t, mr.Exists("bot-a:session:u1"))
	assert.False(t, mr.Exists("reportnav:session:u1"))

	other := redis.NewFromClient(client, redis.WithPrefix("bot-b:"))
	_, err := other.Load(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestRedisStore_Unavailable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := backend.NewClient(&backend.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	store := redis.NewFromClient(client)
	mr.Close()

	_, err = store.Load(context.Background(), "u1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestNewClient(t *testing.T) {
	mr, _ := newClient(t)

	client, err := redis.NewClient("redis://" + mr.Addr() + "/0")
	require.NoError(t, err)
	defer client.Close()

	store := redis.NewFromClient(client)
	assert.NoError(t, store.Ping(context.Background()))

	_, err = redis.NewClient("://bad")
	assert.Error(t, err)
}
