package screens

import (
	"context"
	"errors"
	"strings"

	"github.com/atinyakov/familycart/internal/client/api"
	"github.com/atinyakov/familycart/internal/models"
	"go.uber.org/zap"
)

// ErrProfileNotLoaded is returned by Submit before a successful Enter.
var ErrProfileNotLoaded = errors.New("profile not loaded")

type profileForm struct {
	FirstName string `form:"first_name" validate:"required,max=150"`
	LastName  string `form:"last_name" validate:"required,max=150"`
	Gender    string `form:"gender" validate:"omitempty,oneof=M F"`
}

// Profile shows and edits the user profile.
type Profile struct {
	d *Deps

	// User is the edited copy.
	User models.User

	original models.User
	loaded   bool
}

// NewProfile creates the profile screen.
func NewProfile(d *Deps) *Profile {
	return &Profile{d: d}
}

// Enter loads the profile and resets edits.
func (p *Profile) Enter(ctx context.Context) error {
	token, err := p.d.token(ctx, "Please login to view your profile.")
	if err != nil {
		return err
	}
	u, err := p.d.API.Profile(ctx, token)
	if err != nil {
		return p.d.fail(ctx, err, "Failed to load profile. Please try again.")
	}
	p.User = *u
	p.original = *u
	if u.Gender != nil {
		g := *u.Gender
		p.User.Gender = &g
	}
	p.loaded = true
	return nil
}

// SetFirstName edits the first name.
func (p *Profile) SetFirstName(v string) { p.User.FirstName = v }

// SetLastName edits the last name.
func (p *Profile) SetLastName(v string) { p.User.LastName = v }

// SetGender edits the gender. "" clears it.
func (p *Profile) SetGender(v string) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		p.User.Gender = nil
		return
	}
	p.User.Gender = &v
}

func gender(g *string) string {
	if g == nil {
		return ""
	}
	return *g
}

// Changes returns the form of the fields that differ from the loaded
// profile. An unset and an empty gender are equal.
func (p *Profile) Changes() *api.Form {
	form := api.NewForm()
	if p.User.FirstName != p.original.FirstName {
		form.Set("first_name", p.User.FirstName)
	}
	if p.User.LastName != p.original.LastName {
		form.Set("last_name", p.User.LastName)
	}
	if gender(p.User.Gender) != gender(p.original.Gender) {
		form.Set("gender", gender(p.User.Gender))
	}
	return form
}

// Submit PATCHes the changed fields, refreshes the cached profile and
// reloads the screen.
func (p *Profile) Submit(ctx context.Context) error {
	token, err := p.d.token(ctx, "Please login to update your profile.")
	if err != nil {
		return err
	}
	if !p.loaded {
		return ErrProfileNotLoaded
	}

	form := p.Changes()
	if form.Len() == 0 {
		p.d.Notify.Info("No changes detected.")
		return nil
	}
	if err := validate.Validate(profileForm{
		FirstName: strings.TrimSpace(p.User.FirstName),
		LastName:  strings.TrimSpace(p.User.LastName),
		Gender:    gender(p.User.Gender),
	}); err != nil {
		return p.d.invalid(err, "")
	}

	u, err := p.d.API.UpdateProfile(ctx, token, form)
	if err != nil {
		return p.d.fail(ctx, err, "Failed to update profile. Please try again.")
	}
	p.d.Notify.Success("Profile updated successfully!")
	if err := p.d.Session.SaveProfile(ctx, *u); err != nil {
		p.d.Log.Warn("failed to cache profile", zap.Error(err))
	}
	return p.Enter(ctx)
}

// Logout clears the token and the session and returns home.
func (p *Profile) Logout(ctx context.Context) error {
	return logout(ctx, p.d)
}
