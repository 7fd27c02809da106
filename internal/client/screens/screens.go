// Package screens holds one controller per page of the client.
//
// Every controller follows the same shape: require a token on entry, read
// from the backend into its fields, validate input before a call, report
// the outcome through the notifier and navigate. A 401 from any call clears
// the token and navigates to the login screen.
package screens

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/atinyakov/familycart/internal/client/api"
	"github.com/atinyakov/familycart/internal/client/notify"
	"github.com/atinyakov/familycart/internal/client/session"
	"github.com/atinyakov/familycart/internal/client/storage"
	"github.com/atinyakov/familycart/internal/validation"
	"go.uber.org/zap"
)

// Route is a screen path.
type Route string

const (
	RouteHome              Route = "/"
	RouteLogin             Route = "/login"
	RouteOTP               Route = "/otp"
	RouteSignup            Route = "/signup"
	RouteFamilySelection   Route = "/family-selection"
	RouteProfile           Route = "/profile"
	RouteMyFamily          Route = "/my-family"
	RouteGroceryLists      Route = "/grocery-lists"
	RouteCreateGroceryList Route = "/create-grocery-list"
)

// GroceryListRoute returns the detail route of list id.
func GroceryListRoute(id int64) Route {
	return Route(fmt.Sprintf("%s/%d", RouteGroceryLists, id))
}

// ParseGroceryListRoute extracts the list id of a detail route.
func ParseGroceryListRoute(r Route) (int64, bool) {
	raw, ok := strings.CutPrefix(string(r), string(RouteGroceryLists)+"/")
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

// Navigator switches the visible screen.
type Navigator interface {
	Navigate(Route)
}

// ErrNotAuthenticated is returned when a screen needs a token and none is stored.
var ErrNotAuthenticated = errors.New("not authenticated")

// Deps are the collaborators shared by every screen.
type Deps struct {
	API     *api.Client
	Tokens  *storage.TokenStore
	Session *session.Session
	Notify  *notify.Notifier
	Nav     Navigator
	Log     *zap.Logger
}

var validate = validation.New()

// token returns the stored token. Without one it shows msg, navigates to the
// login screen and returns ErrNotAuthenticated.
func (d *Deps) token(ctx context.Context, msg string) (string, error) {
	token, err := d.Tokens.Get(ctx)
	if err == nil {
		return token, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		d.Log.Error("failed to read token", zap.Error(err))
	}
	d.Notify.Error(msg)
	d.Nav.Navigate(RouteLogin)
	return "", ErrNotAuthenticated
}

// fail reports err with the backend message or fallback. A 401 also clears
// the token and navigates to the login screen. It returns err.
func (d *Deps) fail(ctx context.Context, err error, fallback string) error {
	d.Notify.Error(api.MessageOr(err, fallback))
	if api.IsUnauthorized(err) {
		d.expire(ctx)
	}
	return err
}

// expire drops the rejected token and goes to the login screen.
func (d *Deps) expire(ctx context.Context) {
	if err := d.Tokens.Clear(ctx); err != nil {
		d.Log.Error("failed to clear token", zap.Error(err))
	}
	d.Nav.Navigate(RouteLogin)
}

// invalid reports a validation failure and returns it.
func (d *Deps) invalid(err error, msg string) error {
	var verr *validation.Error
	if msg == "" && errors.As(err, &verr) {
		msg = "Please check the form: " + verr.Error() + "."
	}
	if msg == "" {
		msg = err.Error()
	}
	d.Notify.Error(msg)
	return err
}

// ErrNoFamily is returned when an action needs a cached family membership.
var ErrNoFamily = errors.New("no family membership")
