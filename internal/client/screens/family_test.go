package screens

import (
	"context"
	"testing"

	"github.com/atinyakov/familycart/internal/client/notify"
	"github.com/atinyakov/familycart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFamilySelectionRequiresSignup(t *testing.T) {
	e := newEnv(t)

	err := NewFamilySelection(e.deps).Enter(context.Background())
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	assert.Equal(t, "Please sign up first.", e.banner().Message)
	assert.Equal(t, RouteSignup, e.nav.Last())
}

func TestJoinFamily(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	owner := e.store.AddUser("owner@example.com", "Own", "Er")
	m, ferr := e.store.JoinFamily(owner.ID, "", "Lees")
	require.Nil(t, ferr)
	code, ok := e.store.FamilyCode(m.ID)
	require.True(t, ok)

	e.login(t, "ann@example.com")
	sel := NewFamilySelection(e.deps)

	require.Error(t, sel.Join(ctx, "abc"))
	assert.Equal(t, "Please enter the 6-character family code.", e.banner().Message)

	require.Error(t, sel.Join(ctx, "ZZZZZZ"))
	assert.Equal(t, "Family with this code does not exist.", e.banner().Message)

	require.NoError(t, sel.Join(ctx, code))
	assert.Equal(t, notify.Notification{Kind: notify.KindSuccess, Message: "Family joined successfully."}, e.banner())
	assert.Equal(t, RouteHome, e.nav.Last())

	st, err := e.deps.Session.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Lees", st.Family.Name)
	assert.Equal(t, models.RoleMember, st.Family.Role)

	require.Error(t, sel.Join(ctx, code))
	assert.Equal(t, notify.KindError, e.banner().Kind)
}

func TestMyFamily(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.login(t, "ann@example.com")
	e.family(t, u)

	screen := NewMyFamily(e.deps)
	require.NoError(t, screen.Enter(ctx))
	require.Len(t, screen.Families, 1)
	assert.Equal(t, "Lees", screen.Families[0].FamilyName)
	assert.Equal(t, models.RoleOwner, screen.Families[0].Role)
}
