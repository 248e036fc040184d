package auth

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotelac/internal/config"
	"hotelac/internal/db"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	gdb, err := db.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.EnsureUsers(gdb))
	return NewService(config.Default(), db.NewUserRepository(gdb))
}

func TestLoginAndParse(t *testing.T) {
	svc := newTestService(t)

	token, identity, err := svc.Login("reception", "reception123")
	require.NoError(t, err)
	assert.Equal(t, "reception", identity)

	claims, err := svc.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "reception", claims.Username)
	assert.Equal(t, "reception", claims.Identity)
}

func TestLoginFailures(t *testing.T) {
	svc := newTestService(t)

	_, _, err := svc.Login("ghost", "x")
	assert.ErrorIs(t, err, ErrUserNotFound)

	_, _, err = svc.Login("admin", "wrong")
	assert.ErrorIs(t, err, ErrInvalidPassword)
}

func TestParseRejectsGarbage(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ParseToken("not-a-token")
	assert.Error(t, err)
}
