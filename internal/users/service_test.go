package users

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"inreader-backend/internal/shared/apperr"
	"inreader-backend/internal/shared/auth"
)

func newTestService() *Service {
	return NewService(NewMemoryRepo())
}

func TestCreateHashesPasswordAndRejectsDuplicates(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	u, err := svc.Create(ctx, CreateRequest{Email: " Ana@Example.com ", Password: "secret1", Name: "Ana"})
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", u.Email)
	assert.NotEqual(t, "secret1", u.PasswordHash)
	assert.True(t, auth.CheckPassword(u.PasswordHash, "secret1"))

	_, err = svc.Create(ctx, CreateRequest{Email: "ana@example.com", Password: "other12"})
	typed, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindConflict, typed.Kind)
	assert.Equal(t, "E-mail already in use", typed.Message)
}

func TestAuthenticate(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	created, err := svc.Create(ctx, CreateRequest{Email: "ana@example.com", Password: "secret1"})
	require.NoError(t, err)

	u, err := svc.Authenticate(ctx, "ANA@example.com", "secret1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	for _, tc := range []struct{ email, password string }{
		{"ana@example.com", "wrong"},
		{"nobody@example.com", "secret1"},
	} {
		_, err := svc.Authenticate(ctx, tc.email, tc.password)
		typed, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindUnauthorized, typed.Kind)
		assert.Equal(t, "Invalid credentials", typed.Message)
	}
}

func TestGetAndUpdateOwnUserOnly(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()
	ana, err := svc.Create(ctx, CreateRequest{Email: "ana@example.com", Password: "secret1", Name: "Ana"})
	require.NoError(t, err)
	bia, err := svc.Create(ctx, CreateRequest{Email: "bia@example.com", Password: "secret1"})
	require.NoError(t, err)

	_, err = svc.Get(ctx, ana.ID, "missing")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))

	_, err = svc.Get(ctx, bia.ID, ana.ID)
	typed, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindForbidden, typed.Kind)
	assert.Equal(t, "You can only access your own user data", typed.Message)

	other := "Bia"
	_, err = svc.Update(ctx, bia.ID, ana.ID, UpdateRequest{Name: &other})
	typed, ok = apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindForbidden, typed.Kind)
	assert.Equal(t, "You can only update your own user data", typed.Message)

	name, password := "Ana Maria", "newpass1"
	updated, err := svc.Update(ctx, ana.ID, ana.ID, UpdateRequest{Name: &name, Password: &password})
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria", updated.Name)
	assert.Equal(t, "ana@example.com", updated.Email)
	_, err = svc.Authenticate(ctx, "ana@example.com", "newpass1")
	assert.NoError(t, err)

	taken := "bia@example.com"
	_, err = svc.Update(ctx, ana.ID, ana.ID, UpdateRequest{Email: &taken})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}
