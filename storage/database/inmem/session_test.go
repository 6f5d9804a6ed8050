package inmemstore

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillflow360/skillflow/core/session"
)

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewSessionStore()
	store.now = func() time.Time { return now }

	saved, err := store.Save(ctx, session.Identity{
		Token:     "tok",
		Role:      session.RoleStudent,
		UserID:    3,
		ExpiresAt: now.Add(time.Hour),
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)
	assert.Equal(t, now, saved.CreatedAt)

	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved, got)

	// update keeps the id
	saved.StudentLevel = "M1"
	_, err = store.Save(ctx, saved)
	require.NoError(t, err)
	got, err = store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, "M1", got.StudentLevel)
	assert.Equal(t, 1, store.Len())

	_, err = store.Get(ctx, "unknown")
	assert.True(t, errors.Is(err, session.ErrNotFound))

	require.NoError(t, store.Delete(ctx, saved.ID))
	_, err = store.Get(ctx, saved.ID)
	assert.True(t, errors.Is(err, session.ErrNotFound))
	assert.NoError(t, store.Delete(ctx, saved.ID))
}

func TestSessionStore_expiry(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	store := NewSessionStore()
	store.now = func() time.Time { return now }

	expired, err := store.Save(ctx, session.Identity{Token: "a", ExpiresAt: now.Add(-time.Second)})
	require.NoError(t, err)
	live, err := store.Save(ctx, session.Identity{Token: "b", ExpiresAt: now.Add(time.Hour)})
	require.NoError(t, err)
	forever, err := store.Save(ctx, session.Identity{Token: "c"})
	require.NoError(t, err)

	_, err = store.Get(ctx, expired.ID)
	assert.True(t, errors.Is(err, session.ErrNotFound))

	n, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)
	assert.Equal(t, 2, store.Len())

	for _, id := range []string{live.ID, forever.ID} {
		_, err = store.Get(ctx, id)
		assert.NoError(t, err)
	}
}
