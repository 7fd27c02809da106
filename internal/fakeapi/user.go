package fakeapi

import (
	"net/http"

	"github.com/atinyakov/familycart/internal/middleware"
)

// Login mails (here: arms) a login OTP.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if e := h.Store.RequestLogin(fields["email"]); e != nil {
		writeError(w, e)
		return
	}
	writeOK(w, http.StatusOK, "Sucess", "OTP sent on Mail, Please Verify")
}

// Signup registers an unverified account.
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if e := h.Store.Signup(fields["email"], fields["first_name"], fields["last_name"]); e != nil {
		writeError(w, e)
		return
	}
	writeOK(w, http.StatusOK, "Sucess", "Please Check Your Email for OTP Verification.")
}

// VerifyOTP exchanges ?email&otp for a token.
func (h *Handler) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	payload, e := h.Store.VerifyOTP(q.Get("email"), q.Get("otp"))
	if e != nil {
		writeError(w, e)
		return
	}
	writeOK(w, http.StatusOK, "Email verfied successfully.", payload)
}

// ResendMail re-arms the OTP of ?email.
func (h *Handler) ResendMail(w http.ResponseWriter, r *http.Request) {
	if e := h.Store.ResendVerification(r.URL.Query().Get("email")); e != nil {
		writeError(w, e)
		return
	}
	writeOK(w, http.StatusOK, "Success", "Verification email sent successfully.")
}

// Profile returns the authenticated user.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	u := h.Store.Profile(middleware.UserIDFromContext(r.Context()))
	writeOK(w, http.StatusOK, "Profile fetched successfully", u)
}

// UpdateProfile applies a partial profile update.
func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	u, e := h.Store.UpdateProfile(middleware.UserIDFromContext(r.Context()), fields)
	if e != nil {
		writeJSON(w, e.Status, envelope{Message: "Failed to update profile", Payload: e.Payload})
		return
	}
	writeOK(w, http.StatusOK, "Profile updated successfully", u)
}
