package sqlxstore

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillflow360/skillflow/core/session"
	"github.com/skillflow360/skillflow/tests"
)

func TestSessionStore_seal(t *testing.T) {
	store := NewSessionStore(nil, "secret")

	sealed, err := store.seal("my-jwt")
	require.NoError(t, err)
	assert.NotContains(t, string(sealed), "my-jwt")

	again, err := store.seal("my-jwt")
	require.NoError(t, err)
	assert.NotEqual(t, sealed, again, "nonces must differ")

	token, err := store.open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "my-jwt", token)

	other := NewSessionStore(nil, "another secret")
	_, err = other.open(sealed)
	assert.Equal(t, errUnsealed, err)

	_, err = store.open([]byte("short"))
	assert.Equal(t, errUnsealed, err)
}

func TestSessionStore(t *testing.T) {
	db := testutil.PrepareDB(t)
	ctx := context.Background()
	store := NewSessionStore(db, "secret")

	_, err := store.Save(ctx, session.Identity{Token: "t"})
	assert.Equal(t, errNoExpiry, err)

	ident := testutil.Identity(session.RoleStudent, 3)
	saved, err := store.Save(ctx, ident)
	require.NoError(t, err)
	require.NotEmpty(t, saved.ID)

	got, err := store.Get(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.Token, got.Token)
	assert.Equal(t, saved.Role, got.Role)
	assert.Equal(t, saved.StudentLevel, got.StudentLevel)
	assert.True(t, saved.ExpiresAt.Equal(got.ExpiresAt))

	var raw []byte
	require.NoError(t, db.Get(&raw, "SELECT token FROM sessions WHERE id = $1", saved.ID))
	assert.NotContains(t, string(raw), saved.Token)

	_, err = store.Get(ctx, "not-a-uuid")
	assert.True(t, errors.Is(err, session.ErrNotFound))

	require.NoError(t, store.Delete(ctx, saved.ID))
	_, err = store.Get(ctx, saved.ID)
	assert.True(t, errors.Is(err, session.ErrNotFound))
}

func TestSessionStore_PurgeExpired(t *testing.T) {
	db := testutil.PrepareDB(t)
	ctx := context.Background()
	store := NewSessionStore(db, "secret")
	now := time.Now().UTC()

	old := testutil.Identity(session.RoleAdmin, 1)
	old.ExpiresAt = now.Add(-time.Minute)
	_, err := store.Save(ctx, old)
	require.NoError(t, err)
	live, err := store.Save(ctx, testutil.Identity(session.RoleStudent, 2))
	require.NoError(t, err)

	n, err := store.PurgeExpired(ctx, now)
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	_, err = store.Get(ctx, live.ID)
	assert.NoError(t, err)
}
