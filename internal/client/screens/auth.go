package screens

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
)

// ErrNoPendingEmail is returned by OTP when neither a login nor a signup
// email is waiting for verification.
var ErrNoPendingEmail = errors.New("no pending email")

type loginForm struct {
	Email string `form:"email" validate:"required,email"`
}

// Login requests an emailed OTP.
type Login struct {
	d *Deps
}

// NewLogin creates the login screen.
func NewLogin(d *Deps) *Login {
	return &Login{d: d}
}

// Submit requests a login OTP for email and moves to the OTP screen.
func (l *Login) Submit(ctx context.Context, email string) error {
	form := loginForm{Email: strings.TrimSpace(email)}
	if err := validate.Validate(form); err != nil {
		return l.d.invalid(err, "Please enter a valid email address.")
	}

	msg, err := l.d.API.RequestLoginOTP(ctx, form.Email)
	if err != nil {
		return l.d.fail(ctx, err, "Login failed. Please try again.")
	}
	if err := l.d.Session.SetLoginEmail(ctx, form.Email); err != nil {
		return err
	}
	if msg != "" {
		l.d.Notify.Success(msg)
	}
	l.d.Nav.Navigate(RouteOTP)
	return nil
}

type signupForm struct {
	Email     string `form:"email" validate:"required,email"`
	FirstName string `form:"first_name" validate:"required,max=150"`
	LastName  string `form:"last_name" validate:"required,max=150"`
}

// Signup registers an account.
type Signup struct {
	d *Deps
}

// NewSignup creates the signup screen.
func NewSignup(d *Deps) *Signup {
	return &Signup{d: d}
}

// Submit registers the account, remembers the email for the OTP screen and
// moves there.
func (s *Signup) Submit(ctx context.Context, email, firstName, lastName string) error {
	form := signupForm{
		Email:     strings.TrimSpace(email),
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
	}
	if err := validate.Validate(form); err != nil {
		return s.d.invalid(err, "")
	}

	msg, err := s.d.API.Signup(ctx, form.Email, form.FirstName, form.LastName)
	if err != nil {
		return s.d.fail(ctx, err, "Signup failed. Please try again.")
	}
	if err := s.d.Session.ClearLoginEmail(ctx); err != nil {
		return err
	}
	if err := s.d.Session.SetSignupEmail(ctx, form.Email); err != nil {
		return err
	}
	if msg == "" {
		msg = "Please Check Your Email for OTP Verification."
	}
	s.d.Notify.Success(msg)
	s.d.Nav.Navigate(RouteOTP)
	return nil
}

type otpForm struct {
	OTP string `form:"otp" validate:"required,numeric,max=8"`
}

// OTP verifies the emailed code of a login or a signup.
type OTP struct {
	d *Deps

	// Email is the address being verified.
	Email string
	// FromSignup is set when Email came from a signup.
	FromSignup bool
}

// NewOTP creates the OTP screen.
func NewOTP(d *Deps) *OTP {
	return &OTP{d: d}
}

// Enter resolves the pending email, preferring a login over a signup. Without
// one it navigates to the login screen.
func (o *OTP) Enter(ctx context.Context) error {
	if email, ok := o.d.Session.LoginEmail(ctx); ok {
		o.Email, o.FromSignup = email, false
		return nil
	}
	if email, ok := o.d.Session.SignupEmail(ctx); ok {
		o.Email, o.FromSignup = email, true
		return nil
	}
	o.Email, o.FromSignup = "", false
	o.d.Notify.Error("Please login first.")
	o.d.Nav.Navigate(RouteLogin)
	return ErrNoPendingEmail
}

// Submit verifies otp, stores the token and cached profile, and moves to the
// family selection after a signup or home after a login.
func (o *OTP) Submit(ctx context.Context, otp string) error {
	if o.Email == "" {
		if err := o.Enter(ctx); err != nil {
			return err
		}
	}
	form := otpForm{OTP: strings.TrimSpace(otp)}
	if err := validate.Validate(form); err != nil {
		return o.d.invalid(err, "Please enter the OTP sent to your email.")
	}

	res, err := o.d.API.VerifyOTP(ctx, o.Email, form.OTP)
	if err != nil {
		return o.d.fail(ctx, err, "OTP verification failed. Please try again.")
	}
	if err := o.d.Tokens.Set(ctx, res.Token); err != nil {
		return err
	}
	if err := o.d.Session.SaveProfile(ctx, res.User); err != nil {
		o.d.Log.Warn("failed to cache profile", zap.Error(err))
	}
	if err := o.d.Session.ClearLoginEmail(ctx); err != nil {
		o.d.Log.Warn("failed to clear login email", zap.Error(err))
	}

	o.d.Notify.Success("Email verified successfully.")
	if o.FromSignup {
		o.d.Nav.Navigate(RouteFamilySelection)
	} else {
		o.d.Nav.Navigate(RouteHome)
	}
	return nil
}

// Resend mails a new OTP to the pending email.
func (o *OTP) Resend(ctx context.Context) error {
	if o.Email == "" {
		if err := o.Enter(ctx); err != nil {
			return err
		}
	}
	msg, err := o.d.API.ResendVerification(ctx, o.Email)
	if err != nil {
		return o.d.fail(ctx, err, "Failed to resend OTP. Please try again.")
	}
	if msg == "" {
		msg = "Verification email sent successfully."
	}
	o.d.Notify.Success(msg)
	return nil
}
