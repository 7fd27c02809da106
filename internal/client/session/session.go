// Package session is the typed application state shared by every screen:
// cached profile and family display fields plus the short-lived emails of
// the OTP flow.
package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/atinyakov/familycart/internal/client/storage"
	"github.com/atinyakov/familycart/internal/models"
)

// EmailTTL bounds how long a pending login or signup email is remembered.
const EmailTTL = 30 * time.Minute

const (
	keyFirstName        = "first_name"
	keyLastName         = "last_name"
	keyGender           = "gender"
	keyEmailVerified    = "email_verified"
	keyUsername         = "username"
	keyEmail            = "email"
	keyFamilyMembership = "family_membership"
	keyFamilyName       = "family_name"
	keyRole             = "role"
	keyLoginEmail       = "login_email"
	keySignupEmail      = "signup_email"
)

var profileKeys = []string{
	keyFirstName, keyLastName, keyGender, keyEmailVerified,
	keyUsername, keyEmail, keyFamilyMembership,
}

var familyKeys = []string{keyFamilyName, keyRole}

// Profile is the cached subset of the user profile shown across screens.
type Profile struct {
	FirstName        string
	LastName         string
	Gender           string
	Username         string
	Email            string
	EmailVerified    bool
	FamilyMembership *int64
}

// Family is the cached current family.
type Family struct {
	Name string
	Role models.Role
}

// State is everything Load returns.
type State struct {
	Profile Profile
	Family  Family
}

// Session reads and writes the cached state through a storage.KV.
type Session struct {
	kv     storage.KV
	tokens *storage.TokenStore
}

// New creates a Session over kv. tokens is cleared on Logout.
func New(kv storage.KV, tokens *storage.TokenStore) *Session {
	return &Session{kv: kv, tokens: tokens}
}

// Load returns the cached state. Missing keys yield zero values.
func (s *Session) Load(ctx context.Context) (State, error) {
	var st State
	var err error
	get := func(key string) string {
		if err != nil {
			return ""
		}
		var v string
		v, err = s.get(ctx, key)
		return v
	}

	st.Profile.FirstName = get(keyFirstName)
	st.Profile.LastName = get(keyLastName)
	st.Profile.Gender = get(keyGender)
	st.Profile.Username = get(keyUsername)
	st.Profile.Email = get(keyEmail)
	st.Profile.EmailVerified = get(keyEmailVerified) == "true"
	if raw := get(keyFamilyMembership); raw != "" {
		id, perr := strconv.ParseInt(raw, 10, 64)
		if perr == nil {
			st.Profile.FamilyMembership = &id
		}
	}
	st.Family.Name = get(keyFamilyName)
	st.Family.Role = models.Role(get(keyRole))

	if err != nil {
		return State{}, err
	}
	return st, nil
}

// SaveProfile caches the display fields of u.
func (s *Session) SaveProfile(ctx context.Context, u models.User) error {
	gender := ""
	if u.Gender != nil {
		gender = *u.Gender
	}
	fields := [][2]string{
		{keyFirstName, u.FirstName},
		{keyLastName, u.LastName},
		{keyGender, gender},
		{keyEmailVerified, strconv.FormatBool(u.EmailVerified)},
		{keyUsername, u.Username},
		{keyEmail, u.Email},
	}
	for _, f := range fields {
		if err := s.kv.Set(ctx, f[0], f[1], 0); err != nil {
			return fmt.Errorf("save profile: %w", err)
		}
	}

	if u.FamilyMembership == nil {
		return s.kv.Delete(ctx, keyFamilyMembership)
	}
	id := strconv.FormatInt(*u.FamilyMembership, 10)
	if err := s.kv.Set(ctx, keyFamilyMembership, id, 0); err != nil {
		return fmt.Errorf("save profile: %w", err)
	}
	return nil
}

// FamilyMembership returns the cached membership id.
func (s *Session) FamilyMembership(ctx context.Context) (int64, bool) {
	raw, err := s.get(ctx, keyFamilyMembership)
	if err != nil || raw == "" {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, false
	}
	return id, true
}

// SaveFamily caches the current family name and the user's role in it.
func (s *Session) SaveFamily(ctx context.Context, name string, role models.Role) error {
	if err := s.kv.Set(ctx, keyFamilyName, name, 0); err != nil {
		return fmt.Errorf("save family: %w", err)
	}
	if err := s.kv.Set(ctx, keyRole, string(role), 0); err != nil {
		return fmt.Errorf("save family: %w", err)
	}
	return nil
}

// ClearFamily drops the cached family.
func (s *Session) ClearFamily(ctx context.Context) error {
	return s.deleteAll(ctx, familyKeys)
}

// SetLoginEmail remembers the email awaiting a login OTP.
func (s *Session) SetLoginEmail(ctx context.Context, email string) error {
	return s.kv.Set(ctx, keyLoginEmail, email, EmailTTL)
}

// LoginEmail returns the pending login email.
func (s *Session) LoginEmail(ctx context.Context) (string, bool) {
	return s.lookup(ctx, keyLoginEmail)
}

// ClearLoginEmail forgets the pending login email.
func (s *Session) ClearLoginEmail(ctx context.Context) error {
	return s.kv.Delete(ctx, keyLoginEmail)
}

// SetSignupEmail remembers the email of an account just signed up.
func (s *Session) SetSignupEmail(ctx context.Context, email string) error {
	return s.kv.Set(ctx, keySignupEmail, email, EmailTTL)
}

// SignupEmail returns the pending signup email.
func (s *Session) SignupEmail(ctx context.Context) (string, bool) {
	return s.lookup(ctx, keySignupEmail)
}

// ClearSignupEmail forgets the pending signup email.
func (s *Session) ClearSignupEmail(ctx context.Context) error {
	return s.kv.Delete(ctx, keySignupEmail)
}

// ClearEmails forgets both pending emails.
func (s *Session) ClearEmails(ctx context.Context) error {
	return s.deleteAll(ctx, []string{keyLoginEmail, keySignupEmail})
}

// Clear drops every cached field and pending email. The token is kept.
func (s *Session) Clear(ctx context.Context) error {
	if err := s.deleteAll(ctx, profileKeys); err != nil {
		return err
	}
	if err := s.ClearFamily(ctx); err != nil {
		return err
	}
	return s.ClearEmails(ctx)
}

// Logout clears the token and the cached state.
func (s *Session) Logout(ctx context.Context) error {
	if s.tokens != nil {
		if err := s.tokens.Clear(ctx); err != nil {
			return fmt.Errorf("clear token: %w", err)
		}
	}
	return s.Clear(ctx)
}

func (s *Session) get(ctx context.Context, key string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return v, nil
}

func (s *Session) lookup(ctx context.Context, key string) (string, bool) {
	v, err := s.kv.Get(ctx, key)
	if err != nil || v == "" {
		return "", false
	}
	return v, true
}

func (s *Session) deleteAll(ctx context.Context, keys []string) error {
	for _, k := range keys {
		if err := s.kv.Delete(ctx, k); err != nil {
			return fmt.Errorf("clear %s: %w", k, err)
		}
	}
	return nil
}
