package fakeapi

import (
	"net/http"

	"github.com/atinyakov/familycart/internal/middleware"
)

// JoinFamily joins by family_code or creates by family_name.
func (h *Handler) JoinFamily(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	m, e := h.Store.JoinFamily(middleware.UserIDFromContext(r.Context()), fields["family_code"], fields["family_name"])
	if e != nil {
		writeError(w, e)
		return
	}
	writeOK(w, http.StatusOK, "success", m)
}

// Families lists the caller's memberships.
func (h *Handler) Families(w http.ResponseWriter, r *http.Request) {
	writeOK(w, http.StatusOK, "success", h.Store.Families(middleware.UserIDFromContext(r.Context())))
}
