package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/mygenetics/reportnav/pkg/adapters/memory"
	"github.com/mygenetics/reportnav/pkg/domain"
	"github.com/mygenetics/reportnav/pkg/persistence/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func generateKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, middleware.KeySize)
	_, err := io.ReadFull(rand.Reader, k)
	require.NoError(t, err)
	return k
}

func sampleSession() *domain.Session {
	return &domain.Session{
		UserID:    "u1",
		Screen:    "CONFIRM_QUESTION",
		Question:  "Does my APOE variant raise my risk?",
		History:   []domain.ScreenID{"REPORT_SUMMARY", "MENU", "INPUT_QUESTION"},
		UpdatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func TestEncryptionMiddleware_Roundtrip(t *testing.T) {
	underlying := memory.NewStore()
	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)
	secure := mw(underlying)

	ctx := context.Background()
	original := sampleSession()
	require.NoError(t, secure.Save(ctx, original))

	stored, err := underlying.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", stored.UserID)
	assert.Empty(t, stored.Screen)
	assert.Empty(t, stored.Question)
	assert.Empty(t, stored.History)
	assert.NotEmpty(t, stored.Sealed)

	raw, err := json.Marshal(stored)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "APOE")

	loaded, err := secure.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, original.Screen, loaded.Screen)
	assert.Equal(t, original.Question, loaded.Question)
	assert.Equal(t, original.History, loaded.History)
	assert.True(t, original.UpdatedAt.Equal(loaded.UpdatedAt))
	assert.Empty(t, loaded.Sealed)

	users, err := secure.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"u1"}, users)

	require.NoError(t, secure.Expire(ctx, "u1"))
	_, err = secure.Load(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	underlying := memory.NewStore()
	oldKey := generateKey(t)
	newKey := generateKey(t)
	ctx := context.Background()

	mwOld, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})
	require.NoError(t, err)
	secureOld := mwOld(underlying)
	require.NoError(t, secureOld.Save(ctx, sampleSession()))

	mwNew, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    newKey,
		FallbackKeys: [][]byte{oldKey},
	})
	require.NoError(t, err)
	secureNew := mwNew(underlying)

	loaded, err := secureNew.Load(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, domain.ScreenID("CONFIRM_QUESTION"), loaded.Screen)

	// Saving again re-seals with the new key only.
	loaded.Screen = "MENU"
	require.NoError(t, secureNew.Save(ctx, loaded))

	_, err = secureOld.Load(ctx, "u1")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_PlaintextSessionIsDropped(t *testing.T) {
	underlying := memory.NewStore()
	ctx := context.Background()
	require.NoError(t, underlying.Save(ctx, sampleSession()))

	mw, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: generateKey(t)})
	require.NoError(t, err)

	_, err = mw(underlying).Load(ctx, "u1")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestEncryptionMiddleware_InvalidKey(t *testing.T) {
	_, err := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short-key")})
	assert.ErrorContains(t, err, "active key must be 32 bytes")

	_, err = middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
		ActiveKey:    generateKey(t),
		FallbackKeys: [][]byte{[]byte("old")},
	})
	assert.ErrorContains(t, err, "fallback key 0")
}
