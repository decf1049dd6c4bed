package ports

import (
	"context"
	"testing"
	"time"

	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunSessionStoreContract runs a suite of tests to verify that a SessionStore
// implementation adheres to the defined interface contract.
func RunSessionStoreContract(t *testing.T, store SessionStore) {
	ctx := context.Background()
	userID := "contract-user-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := domain.NewSession(userID, "REPORT_SUMMARY", time.Now().UTC().Truncate(time.Second))
		session.Screen = "SHOW_DETOX_DETAIL"
		session.History = []domain.ScreenID{"REPORT_SUMMARY", "MENU", "SHOW_DETOX_SUMMARY"}
		session.Question = "what is this?"

		require.NoError(t, store.Save(ctx, session), "Save should not return error")

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, session.UserID, loaded.UserID)
		assert.Equal(t, session.Screen, loaded.Screen)
		assert.Equal(t, session.History, loaded.History)
		assert.Equal(t, session.Question, loaded.Question)
		assert.True(t, session.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Last Write Wins", func(t *testing.T) {
		first := domain.NewSession(userID, "MENU", time.Now())
		second := domain.NewSession(userID, "INPUT_QUESTION", time.Now())
		second.AwaitingText = true

		require.NoError(t, store.Save(ctx, first))
		require.NoError(t, store.Save(ctx, second))

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.ScreenID("INPUT_QUESTION"), loaded.Screen)
		assert.True(t, loaded.AwaitingText)
	})

	t.Run("Load Isolation", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(userID, "MENU", time.Now())))

		loaded, err := store.Load(ctx, userID)
		require.NoError(t, err)
		loaded.Screen = "MUTATED"

		again, err := store.Load(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, domain.ScreenID("MENU"), again.Screen, "Mutating a loaded session must not touch the store")
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+userID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Expire", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, domain.NewSession(userID, "MENU", time.Now())))

		require.NoError(t, store.Expire(ctx, userID), "Expire should not return error")

		_, err := store.Load(ctx, userID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Expire should return ErrSessionNotFound")

		assert.NoError(t, store.Expire(ctx, userID), "Expiring twice should be a no-op")
	})

	t.Run("List", func(t *testing.T) {
		id1 := userID + "-1"
		id2 := userID + "-2"
		require.NoError(t, store.Save(ctx, domain.NewSession(id1, "MENU", time.Now())))
		require.NoError(t, store.Save(ctx, domain.NewSession(id2, "MENU", time.Now())))

		defer func() {
			_ = store.Expire(ctx, id1)
			_ = store.Expire(ctx, id2)
		}()

		users, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, users, id1)
		assert.Contains(t, users, id2)
	})
}
