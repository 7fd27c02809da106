package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/atinyakov/familycart/internal/client/storage"
	"github.com/atinyakov/familycart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSession(t *testing.T) (*Session, *storage.TokenStore) {
	t.Helper()
	kv, err := storage.NewFileKV(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	tokens := storage.NewTokenStore(kv)
	return New(kv, tokens), tokens
}

func TestSession_ProfileRoundTrip(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)

	st, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, State{}, st)

	u := models.User{
		Username:         "ada",
		Email:            "ada@example.com",
		EmailVerified:    true,
		FirstName:        "Ada",
		LastName:         "Lovelace",
		Gender:           models.String(models.GenderFemale),
		FamilyMembership: models.Int64(7),
	}
	require.NoError(t, s.SaveProfile(ctx, u))
	require.NoError(t, s.SaveFamily(ctx, "Lovelace", models.RoleOwner))

	st, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ada", st.Profile.FirstName)
	assert.Equal(t, "Lovelace", st.Profile.LastName)
	assert.Equal(t, "F", st.Profile.Gender)
	assert.True(t, st.Profile.EmailVerified)
	require.NotNil(t, st.Profile.FamilyMembership)
	assert.Equal(t, int64(7), *st.Profile.FamilyMembership)
	assert.Equal(t, Family{Name: "Lovelace", Role: models.RoleOwner}, st.Family)

	id, ok := s.FamilyMembership(ctx)
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	// a profile without membership drops the cached id
	u.FamilyMembership = nil
	require.NoError(t, s.SaveProfile(ctx, u))
	_, ok = s.FamilyMembership(ctx)
	assert.False(t, ok)
}

func TestSession_Emails(t *testing.T) {
	ctx := context.Background()
	s, _ := newSession(t)

	_, ok := s.LoginEmail(ctx)
	assert.False(t, ok)

	require.NoError(t, s.SetLoginEmail(ctx, "a@example.com"))
	require.NoError(t, s.SetSignupEmail(ctx, "b@example.com"))

	email, ok := s.LoginEmail(ctx)
	assert.True(t, ok)
	assert.Equal(t, "a@example.com", email)

	require.NoError(t, s.ClearLoginEmail(ctx))
	_, ok = s.LoginEmail(ctx)
	assert.False(t, ok)

	email, ok = s.SignupEmail(ctx)
	assert.True(t, ok)
	assert.Equal(t, "b@example.com", email)

	require.NoError(t, s.ClearEmails(ctx))
	_, ok = s.SignupEmail(ctx)
	assert.False(t, ok)
}

func TestSession_Logout(t *testing.T) {
	ctx := context.Background()
	s, tokens := newSession(t)

	require.NoError(t, tokens.Set(ctx, "tok"))
	require.NoError(t, s.SaveProfile(ctx, models.User{FirstName: "Ada", FamilyMembership: models.Int64(1)}))
	require.NoError(t, s.SaveFamily(ctx, "Home", models.RoleMember))
	require.NoError(t, s.SetSignupEmail(ctx, "a@example.com"))

	require.NoError(t, s.Logout(ctx))

	assert.False(t, tokens.IsAuthenticated(ctx))
	st, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, State{}, st)
	_, ok := s.SignupEmail(ctx)
	assert.False(t, ok)
}

func TestSession_ClearKeepsToken(t *testing.T) {
	ctx := context.Background()
	s, tokens := newSession(t)

	require.NoError(t, tokens.Set(ctx, "tok"))
	require.NoError(t, s.SaveFamily(ctx, "Home", models.RoleMember))
	require.NoError(t, s.Clear(ctx))

	assert.True(t, tokens.IsAuthenticated(ctx))
	st, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, st.Family.Name)
}
