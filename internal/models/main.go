// Package models defines the wire types exchanged with the FamilyCart backend.
package models

import (
	"time"

	"github.com/google/uuid"
)

// Envelope is the standard response wrapper used by every endpoint.
type Envelope[T any] struct {
	// Message is a human readable status line, e.g. "Profile fetched successfully".
	Message string `json:"message,omitempty"`
	// Payload carries the endpoint-specific result.
	Payload T `json:"payload"`
	// Status is the backend's own status flag (1 ok, 0 or -1 error).
	Status int `json:"status,omitempty"`
}

// Page is the wrapper used by paginated collection endpoints.
// Next and Previous are absolute cursor URLs issued by the server.
type Page[T any] struct {
	Count    int           `json:"count"`
	Next     *string       `json:"next"`
	Previous *string       `json:"previous"`
	Results  Envelope[[]T] `json:"results"`
}

// NextURL returns the next cursor or "" when there is none.
func (p *Page[T]) NextURL() string {
	if p == nil || p.Next == nil {
		return ""
	}
	return *p.Next
}

// PreviousURL returns the previous cursor or "" when there is none.
func (p *Page[T]) PreviousURL() string {
	if p == nil || p.Previous == nil {
		return ""
	}
	return *p.Previous
}

// Gender values accepted by the profile endpoint.
const (
	GenderMale   = "M"
	GenderFemale = "F"
)

// User is the account representation returned by the user endpoints.
type User struct {
	ID               int64     `json:"id"`
	UUID             uuid.UUID `json:"uuid"`
	Username         string    `json:"username"`
	Email            string    `json:"email"`
	EmailVerified    bool      `json:"email_verified"`
	FirstName        string    `json:"first_name"`
	LastName         string    `json:"last_name"`
	Gender           *string   `json:"gender"`
	FamilyMembership *int64    `json:"family_membership"`
	IsAdmin          bool      `json:"is_admin"`
}

// OTPPayload is returned by a successful OTP verification.
type OTPPayload struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}

// Role is a family membership role.
type Role string

const (
	RoleOwner  Role = "owner"
	RoleMember Role = "member"
)

// FamilyMember is one membership of the current user in a family.
type FamilyMember struct {
	ID         int64     `json:"id"`
	UUID       uuid.UUID `json:"uuid"`
	User       int64     `json:"user"`
	Username   string    `json:"username"`
	Family     int64     `json:"family"`
	FamilyName string    `json:"family_name"`
	Role       Role      `json:"role"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// GroceryList is a named shopping list owned by a family membership.
type GroceryList struct {
	ID               int64     `json:"id"`
	UUID             uuid.UUID `json:"uuid"`
	Name             string    `json:"name"`
	Description      *string   `json:"description"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
	FamilyMembership int64     `json:"family_membership"`
	CreatedBy        int64     `json:"created_by"`
}

// QuantityType is the unit of a grocery item quantity.
type QuantityType string

const (
	Gram  QuantityType = "Gram"
	Liter QuantityType = "Liter"
	Count QuantityType = "Count"
)

// QuantityTypes lists the accepted units in display order.
var QuantityTypes = []QuantityType{Gram, Liter, Count}

// GroceryItem is an entry of a grocery list. A nil ID marks a local draft
// that has not been persisted yet.
type GroceryItem struct {
	ID           *int64       `json:"id,omitempty"`
	GroceryList  int64        `json:"grocery_list,omitempty"`
	Name         string       `json:"name"`
	Quantity     float64      `json:"quantity"`
	QuantityType QuantityType `json:"quantity_type"`
	Note         string       `json:"note"`
	Purchased    bool         `json:"purchased"`
}

// IsDraft reports whether the item has no server-assigned id.
func (i GroceryItem) IsDraft() bool {
	return i.ID == nil
}

// Int64 returns a pointer to v.
func Int64(v int64) *int64 {
	return &v
}

// String returns a pointer to v.
func String(v string) *string {
	return &v
}
