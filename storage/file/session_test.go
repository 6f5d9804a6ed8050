package filestore

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skillflow360/skillflow/core/session"
)

func TestSessionFile(t *testing.T) {
	now := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	f := NewSessionFile(filepath.Join(t.TempDir(), "nested", "session.yaml"))
	f.now = func() time.Time { return now }

	_, err := f.Load()
	assert.True(t, errors.Is(err, session.ErrNotFound))

	ident := session.Identity{
		Token:     "tok",
		Role:      session.RoleStudent,
		UserID:    3,
		FullName:  "Amina Diallo",
		ExpiresAt: now.Add(time.Hour),
	}
	require.NoError(t, f.Save(ident))

	if runtime.GOOS != "windows" {
		info, err := os.Stat(f.Path())
		require.NoError(t, err)
		assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
	}

	got, err := f.Load()
	require.NoError(t, err)
	assert.Equal(t, "tok", got.Token)
	assert.Equal(t, session.RoleStudent, got.Role)
	assert.Equal(t, now, got.CreatedAt)
	assert.True(t, ident.ExpiresAt.Equal(got.ExpiresAt))

	f.now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = f.Load()
	assert.True(t, errors.Is(err, session.ErrNotFound))

	require.NoError(t, f.Delete())
	_, err = os.Stat(f.Path())
	assert.True(t, os.IsNotExist(err))
	assert.NoError(t, f.Delete())
}

func TestSessionFile_invalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.yaml")
	require.NoError(t, os.WriteFile(path, []byte("role: [oops"), 0o600))

	_, err := NewSessionFile(path).Load()
	require.Error(t, err)
	assert.False(t, errors.Is(err, session.ErrNotFound))
}
