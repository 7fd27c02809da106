package screens

import (
	"context"
	"strings"

	"github.com/atinyakov/familycart/internal/models"
	"go.uber.org/zap"
)

type joinForm struct {
	Code string `form:"family_code" validate:"required,len=6,alphanum"`
}

type createFamilyForm struct {
	Name string `form:"family_name" validate:"required,max=100"`
}

// FamilySelection joins or creates a family after signup.
type FamilySelection struct {
	d *Deps
}

// NewFamilySelection creates the family selection screen.
func NewFamilySelection(d *Deps) *FamilySelection {
	return &FamilySelection{d: d}
}

// Enter sends the user to signup when there is neither a token nor a signup
// in progress.
func (f *FamilySelection) Enter(ctx context.Context) error {
	if f.d.Tokens.IsAuthenticated(ctx) {
		return nil
	}
	if _, ok := f.d.Session.SignupEmail(ctx); ok {
		return nil
	}
	f.d.Notify.Error("Please sign up first.")
	f.d.Nav.Navigate(RouteSignup)
	return ErrNotAuthenticated
}

// Join joins the family identified by a 6 character code.
func (f *FamilySelection) Join(ctx context.Context, code string) error {
	form := joinForm{Code: strings.ToUpper(strings.TrimSpace(code))}
	if err := validate.Validate(form); err != nil {
		return f.d.invalid(err, "Please enter the 6-character family code.")
	}
	token, _ := f.d.Tokens.Get(ctx)

	m, err := f.d.API.JoinFamily(ctx, token, form.Code)
	if err != nil {
		return f.d.fail(ctx, err, "Failed to join family. Please check the code and try again.")
	}
	f.joined(ctx, m, "Family joined successfully.")
	return nil
}

// Create creates a family and joins it as its owner.
func (f *FamilySelection) Create(ctx context.Context, name string) error {
	form := createFamilyForm{Name: strings.TrimSpace(name)}
	if err := validate.Validate(form); err != nil {
		return f.d.invalid(err, "Please enter a family name.")
	}
	token, _ := f.d.Tokens.Get(ctx)

	m, err := f.d.API.CreateFamily(ctx, token, form.Name)
	if err != nil {
		return f.d.fail(ctx, err, "Failed to create family. Please try again.")
	}
	f.joined(ctx, m, "Family created successfully.")
	return nil
}

func (f *FamilySelection) joined(ctx context.Context, m *models.FamilyMember, msg string) {
	f.d.Notify.Success(msg)
	if err := f.d.Session.ClearSignupEmail(ctx); err != nil {
		f.d.Log.Warn("failed to clear signup email", zap.Error(err))
	}
	if err := f.d.Session.SaveFamily(ctx, m.FamilyName, m.Role); err != nil {
		f.d.Log.Warn("failed to cache family", zap.Error(err))
	}
	f.d.Nav.Navigate(RouteHome)
}

// MyFamily lists the memberships of the user.
type MyFamily struct {
	d *Deps

	Families []models.FamilyMember
}

// NewMyFamily creates the family list screen.
func NewMyFamily(d *Deps) *MyFamily {
	return &MyFamily{d: d}
}

// Enter loads the memberships.
func (m *MyFamily) Enter(ctx context.Context) error {
	token, err := m.d.token(ctx, "Please login to view your families.")
	if err != nil {
		return err
	}
	families, err := m.d.API.Families(ctx, token)
	if err != nil {
		return m.d.fail(ctx, err, "Failed to load families. Please try again.")
	}
	m.Families = families
	return nil
}

// Logout clears the token and the session and returns home.
func (m *MyFamily) Logout(ctx context.Context) error {
	return logout(ctx, m.d)
}
