package screens

import (
	"context"

	"github.com/atinyakov/familycart/internal/client/api"
	"github.com/atinyakov/familycart/internal/client/session"
	"github.com/atinyakov/familycart/internal/models"
	"go.uber.org/zap"
)

// Home is the landing screen.
type Home struct {
	d *Deps

	Authenticated bool
	State         session.State
}

// NewHome creates the home screen.
func NewHome(d *Deps) *Home {
	return &Home{d: d}
}

// Enter checks for a token and, when present, refreshes the cached profile
// and family. Preload failures are logged and never notified.
func (h *Home) Enter(ctx context.Context) error {
	h.Authenticated = h.d.Tokens.IsAuthenticated(ctx)
	if h.Authenticated {
		h.preload(ctx)
	}

	st, err := h.d.Session.Load(ctx)
	if err != nil {
		return err
	}
	h.State = st
	return nil
}

func (h *Home) preload(ctx context.Context) {
	token, err := h.d.Tokens.Get(ctx)
	if err != nil {
		return
	}

	profile, err := h.d.API.Profile(ctx, token)
	if err != nil {
		h.preloadFailed(ctx, "failed to load profile", err)
		return
	}
	if err := h.d.Session.SaveProfile(ctx, *profile); err != nil {
		h.d.Log.Warn("failed to cache profile", zap.Error(err))
	}

	families, err := h.d.API.Families(ctx, token)
	if err != nil {
		h.preloadFailed(ctx, "failed to load family list", err)
		return
	}
	if err := h.cacheFamily(ctx, families, profile.FamilyMembership); err != nil {
		h.d.Log.Warn("failed to cache family", zap.Error(err))
	}
}

// cacheFamily stores the membership matching id, or the first one when id is
// nil. Without a match the cached family is cleared.
func (h *Home) cacheFamily(ctx context.Context, families []models.FamilyMember, id *int64) error {
	if len(families) == 0 {
		return h.d.Session.ClearFamily(ctx)
	}
	if id == nil {
		f := families[0]
		return h.d.Session.SaveFamily(ctx, f.FamilyName, f.Role)
	}
	for _, f := range families {
		if f.ID == *id {
			return h.d.Session.SaveFamily(ctx, f.FamilyName, f.Role)
		}
	}
	return h.d.Session.ClearFamily(ctx)
}

func (h *Home) preloadFailed(ctx context.Context, msg string, err error) {
	h.d.Log.Warn(msg, zap.Error(err))
	if api.IsUnauthorized(err) {
		if err := h.d.Tokens.Clear(ctx); err != nil {
			h.d.Log.Error("failed to clear token", zap.Error(err))
		}
		h.Authenticated = false
	}
}

// Logout clears the token and the session and returns home.
func (h *Home) Logout(ctx context.Context) error {
	return logout(ctx, h.d)
}

func logout(ctx context.Context, d *Deps) error {
	if err := d.Session.Logout(ctx); err != nil {
		d.Notify.Error("Logout failed. Please try again.")
		return err
	}
	d.Notify.Success("Logged out successfully.")
	d.Nav.Navigate(RouteHome)
	return nil
}
