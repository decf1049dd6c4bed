package memory_test

import (
	"context"
	"testing"
	"time"

	"github.com/mygenetics/reportnav/pkg/adapters/memory"
	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_Contract(t *testing.T) {
	store := memory.NewStore()
	ports.RunSessionStoreContract(t, store)
}

func TestMemoryStore_InactivityExpiry(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	clock := func() time.Time { return now }
	store := memory.NewStore(memory.WithTTL(time.Hour), memory.WithClock(clock))
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, domain.NewSession("u1", "MENU", now)))

	now = now.Add(59 * time.Minute)
	_, err := store.Load(ctx, "u1")
	require.NoError(t, err)

	// Saving refreshes the deadline.
	require.NoError(t, store.Save(ctx, domain.NewSession("u1", "MENU", now)))
	now = now.Add(59 * time.Minute)
	_, err = store.Load(ctx, "u1")
	require.NoError(t, err)

	now = now.Add(time.Minute)
	_, err = store.Load(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)

	users, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)
}
