package screens

import (
	"context"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/atinyakov/familycart/internal/client/api"
	"github.com/atinyakov/familycart/internal/client/notify"
	"github.com/atinyakov/familycart/internal/client/session"
	"github.com/atinyakov/familycart/internal/client/storage"
	"github.com/atinyakov/familycart/internal/fakeapi"
	"github.com/atinyakov/familycart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type recorder struct {
	mu     sync.Mutex
	routes []Route
}

func (r *recorder) Navigate(to Route) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = append(r.routes, to)
}

func (r *recorder) Last() Route {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.routes) == 0 {
		return ""
	}
	return r.routes[len(r.routes)-1]
}

func (r *recorder) Count(to Route) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, route := range r.routes {
		if route == to {
			n++
		}
	}
	return n
}

type env struct {
	store *fakeapi.Store
	deps  *Deps
	nav   *recorder
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := fakeapi.NewStore()
	srv := httptest.NewServer(fakeapi.NewRouter(store, zap.NewNop()))
	t.Cleanup(srv.Close)

	kv, err := storage.NewFileKV(filepath.Join(t.TempDir(), "state.json"))
	require.NoError(t, err)
	tokens := storage.NewTokenStore(kv)
	nav := &recorder{}

	return &env{
		store: store,
		nav:   nav,
		deps: &Deps{
			API:     api.New(srv.Client(), srv.URL, "api/v1", zap.NewNop()),
			Tokens:  tokens,
			Session: session.New(kv, tokens),
			Notify:  notify.New(time.Minute),
			Nav:     nav,
			Log:     zap.NewNop(),
		},
	}
}

// login seeds a verified user and stores its token.
func (e *env) login(t *testing.T, email string) models.User {
	t.Helper()
	u := e.store.AddUser(email, "Ann", "Lee")
	require.NoError(t, e.deps.Tokens.Set(context.Background(), e.store.IssueToken(u.ID)))
	return u
}

// family makes u the owner of a new family and caches the profile.
func (e *env) family(t *testing.T, u models.User) int64 {
	t.Helper()
	m, ferr := e.store.JoinFamily(u.ID, "", "Lees")
	require.Nil(t, ferr)
	require.NoError(t, e.deps.Session.SaveProfile(context.Background(), e.store.Profile(u.ID)))
	return m.ID
}

func (e *env) banner() notify.Notification {
	n, _ := e.deps.Notify.Current()
	return n
}

func TestGroceryListRoute(t *testing.T) {
	r := GroceryListRoute(42)
	assert.Equal(t, Route("/grocery-lists/42"), r)

	id, ok := ParseGroceryListRoute(r)
	assert.True(t, ok)
	assert.Equal(t, int64(42), id)

	for _, bad := range []Route{"/grocery-lists", "/grocery-lists/", "/grocery-lists/x", "/grocery-lists/0", "/profile"} {
		_, ok := ParseGroceryListRoute(bad)
		assert.False(t, ok, bad)
	}
}

func TestProtectedScreensWithoutToken(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)

	tests := []struct {
		name  string
		enter func() error
		msg   string
	}{
		{"grocery lists", func() error { return NewGroceryLists(e.deps).Enter(ctx) }, "Please login to view your grocery lists."},
		{"detail", func() error { return NewGroceryListDetail(e.deps).Enter(ctx, 1) }, "Please login to view grocery list details."},
		{"create", func() error { return NewCreateGroceryList(e.deps).Enter(ctx) }, "Please login to create a grocery list."},
		{"profile", func() error { return NewProfile(e.deps).Enter(ctx) }, "Please login to view your profile."},
		{"my family", func() error { return NewMyFamily(e.deps).Enter(ctx) }, "Please login to view your families."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.enter()
			assert.ErrorIs(t, err, ErrNotAuthenticated)
			assert.Equal(t, notify.Notification{Kind: notify.KindError, Message: tt.msg}, e.banner())
			assert.Equal(t, RouteLogin, e.nav.Last())
		})
	}
}

func TestUnauthorizedClearsToken(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	require.NoError(t, e.deps.Tokens.Set(ctx, "stale"))

	err := NewGroceryLists(e.deps).Enter(ctx)
	require.Error(t, err)
	assert.True(t, api.IsUnauthorized(err))
	assert.False(t, e.deps.Tokens.IsAuthenticated(ctx))
	assert.Equal(t, 1, e.nav.Count(RouteLogin))
	assert.Equal(t, notify.KindError, e.banner().Kind)
	assert.Equal(t, "Given token not valid for any token type", e.banner().Message)
}

func TestHomeEnterCachesFamily(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.login(t, "ann@example.com")
	_, ferr := e.store.JoinFamily(u.ID, "", "Lees")
	require.Nil(t, ferr)

	home := NewHome(e.deps)
	require.NoError(t, home.Enter(ctx))
	assert.True(t, home.Authenticated)
	assert.Equal(t, "Ann", home.State.Profile.FirstName)
	assert.Equal(t, "Lees", home.State.Family.Name)
	assert.Equal(t, models.RoleOwner, home.State.Family.Role)
	assert.NotNil(t, home.State.Profile.FamilyMembership)
}

func TestHomeEnterWithRevokedToken(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	require.NoError(t, e.deps.Tokens.Set(ctx, "stale"))

	home := NewHome(e.deps)
	require.NoError(t, home.Enter(ctx))
	assert.False(t, home.Authenticated)
	assert.False(t, e.deps.Tokens.IsAuthenticated(ctx))
	_, shown := e.deps.Notify.Current()
	assert.False(t, shown)
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	e := newEnv(t)
	u := e.login(t, "ann@example.com")
	e.family(t, u)

	require.NoError(t, NewHome(e.deps).Logout(ctx))
	assert.False(t, e.deps.Tokens.IsAuthenticated(ctx))
	_, ok := e.deps.Session.FamilyMembership(ctx)
	assert.False(t, ok)
	assert.Equal(t, notify.Notification{Kind: notify.KindSuccess, Message: "Logged out successfully."}, e.banner())
	assert.Equal(t, RouteHome, e.nav.Last())
}
