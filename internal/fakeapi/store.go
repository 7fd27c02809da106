// Package fakeapi emulates the FamilyCart REST backend in memory.
//
// It serves the same envelopes, status codes and pagination cursors as the
// real service, so the client can be developed and tested without it. Every
// email receives the fixed OTP of the store instead of a mail.
package fakeapi

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/atinyakov/familycart/internal/models"
	"github.com/google/uuid"
)

// DefaultOTP is the code accepted for every email unless Store.OTP is changed.
const DefaultOTP = "1234"

// Error is a failed store operation rendered as an error envelope.
type Error struct {
	Status int
	// Payload is a string or a field-errors map.
	Payload any
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d: %v", e.Status, e.Payload)
}

func fail(status int, payload any) *Error {
	return &Error{Status: status, Payload: payload}
}

type family struct {
	id   int64
	name string
	code string
}

// Store is the mutex-guarded state of the emulator.
type Store struct {
	// OTP is the code verify_otp accepts.
	OTP string

	mu          sync.Mutex
	now         func() time.Time
	nextID      int64
	users       map[int64]models.User
	byEmail     map[string]int64
	tokens      map[string]int64
	pending     map[string]bool
	families    map[int64]family
	memberships map[int64]models.FamilyMember
	lists       map[int64]models.GroceryList
	items       map[int64]models.GroceryItem
	failItems   map[string]bool
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		OTP:         DefaultOTP,
		now:         time.Now,
		users:       make(map[int64]models.User),
		byEmail:     make(map[string]int64),
		tokens:      make(map[string]int64),
		pending:     make(map[string]bool),
		families:    make(map[int64]family),
		memberships: make(map[int64]models.FamilyMember),
		lists:       make(map[int64]models.GroceryList),
		items:       make(map[int64]models.GroceryItem),
		failItems:   make(map[string]bool),
	}
}

func (s *Store) id() int64 {
	s.nextID++
	return s.nextID
}

// FailItemsNamed makes item creation fail for the given names.
func (s *Store) FailItemsNamed(names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, n := range names {
		s.failItems[n] = true
	}
}

// AddUser creates a verified user.
func (s *Store) AddUser(email, firstName, lastName string) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.addUserLocked(email, firstName, lastName)
	u.EmailVerified = true
	s.users[u.ID] = u
	return s.userLocked(u.ID)
}

func (s *Store) addUserLocked(email, firstName, lastName string) models.User {
	u := models.User{
		ID:        s.id(),
		UUID:      uuid.New(),
		Username:  strings.Split(email, "@")[0],
		Email:     email,
		FirstName: firstName,
		LastName:  lastName,
	}
	s.users[u.ID] = u
	s.byEmail[email] = u.ID
	return u
}

// userLocked returns u with its family_membership resolved.
func (s *Store) userLocked(id int64) models.User {
	u := s.users[id]
	u.FamilyMembership = nil
	if m, ok := s.membershipOfLocked(id); ok {
		u.FamilyMembership = models.Int64(m.ID)
	}
	return u
}

func (s *Store) membershipOfLocked(userID int64) (models.FamilyMember, bool) {
	var (
		found models.FamilyMember
		ok    bool
	)
	for _, m := range s.memberships {
		if m.User == userID && (!ok || m.ID < found.ID) {
			found, ok = m, true
		}
	}
	return found, ok
}

// IssueToken returns a new bearer token for userID.
func (s *Store) IssueToken(userID int64) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueTokenLocked(userID)
}

func (s *Store) issueTokenLocked(userID int64) string {
	token := uuid.NewString()
	s.tokens[token] = userID
	return token
}

// RevokeToken makes token fail authentication.
func (s *Store) RevokeToken(token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
}

// ValidateToken resolves token to its user.
func (s *Store) ValidateToken(_ context.Context, token string) (int64, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.tokens[token]
	return id, ok
}

// RequestLogin starts an OTP login for an existing email.
func (s *Store) RequestLogin(email string) *Error {
	if email == "" {
		return fail(http.StatusUnprocessableEntity, "Please enter your email!")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; !ok {
		return fail(http.StatusNotFound, "Please do Signup!")
	}
	s.pending[email] = true
	return nil
}

// Signup registers an unverified user and starts its OTP verification.
func (s *Store) Signup(email, firstName, lastName string) *Error {
	switch {
	case email == "":
		return fail(http.StatusUnprocessableEntity, "Please enter your email!")
	case firstName == "":
		return fail(http.StatusUnprocessableEntity, "Please enter your first name!")
	case lastName == "":
		return fail(http.StatusUnprocessableEntity, "Please enter your last name!")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if id, ok := s.byEmail[email]; ok {
		if !s.users[id].EmailVerified {
			return fail(http.StatusUnprocessableEntity, "User already exists. Please verify your email address to login.")
		}
		return fail(http.StatusUnprocessableEntity, "User already exists. Please login.")
	}
	s.addUserLocked(email, firstName, lastName)
	s.pending[email] = true
	return nil
}

// VerifyOTP checks otp for email, marks the email verified and issues a token.
func (s *Store) VerifyOTP(email, otp string) (*models.OTPPayload, *Error) {
	if otp == "" {
		return nil, fail(http.StatusUnprocessableEntity, "Please provide a otp!")
	}
	if email == "" {
		return nil, fail(http.StatusUnprocessableEntity, "Please provide a correct otp!")
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	id, ok := s.byEmail[email]
	if !ok || !s.pending[email] {
		return nil, fail(http.StatusUnprocessableEntity, "Please make Signup or Forgot Password.")
	}
	if otp != s.OTP {
		return nil, fail(http.StatusUnprocessableEntity, "The OTP is Invalid or Expired.")
	}

	delete(s.pending, email)
	u := s.users[id]
	u.EmailVerified = true
	s.users[id] = u
	return &models.OTPPayload{Token: s.issueTokenLocked(id), User: s.userLocked(id)}, nil
}

// ResendVerification issues a fresh OTP for email.
func (s *Store) ResendVerification(email string) *Error {
	if email == "" {
		return fail(http.StatusUnprocessableEntity, "Please enter an email!")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[email]; !ok {
		return fail(http.StatusNotFound, "Email doesn't exist! Please register first.")
	}
	s.pending[email] = true
	return nil
}

// Profile returns user id.
func (s *Store) Profile(id int64) models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.userLocked(id)
}

// UpdateProfile applies the fields present in fields.
func (s *Store) UpdateProfile(id int64, fields map[string]string) (models.User, *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u := s.users[id]
	if g, ok := fields["gender"]; ok {
		switch g {
		case "":
			u.Gender = nil
		case models.GenderMale, models.GenderFemale:
			u.Gender = models.String(g)
		default:
			return models.User{}, fail(http.StatusBadRequest, map[string][]string{
				"gender": {fmt.Sprintf("%q is not a valid choice.", g)},
			})
		}
	}
	if v, ok := fields["first_name"]; ok {
		u.FirstName = v
	}
	if v, ok := fields["last_name"]; ok {
		u.LastName = v
	}
	if v, ok := fields["username"]; ok {
		u.Username = v
	}
	s.users[id] = u
	return s.userLocked(id), nil
}

// JoinFamily joins the family with code, or creates one named name.
func (s *Store) JoinFamily(userID int64, code, name string) (models.FamilyMember, *Error) {
	code = strings.TrimSpace(code)
	name = strings.TrimSpace(name)
	if code == "" && name == "" {
		return models.FamilyMember{}, fail(http.StatusUnprocessableEntity, map[string][]string{
			"non_field_errors": {"Either 'family_code' or 'family_name' must be provided."},
		})
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.membershipOfLocked(userID); ok {
		return models.FamilyMember{}, fail(http.StatusBadRequest,
			"User already belongs to a family. Leave the current family before joining or creating another.")
	}

	role := models.RoleMember
	var fam family
	if code != "" {
		found := false
		for _, f := range s.families {
			if f.code == code {
				fam, found = f, true
				break
			}
		}
		if !found {
			return models.FamilyMember{}, fail(http.StatusNotFound, "Family with this code does not exist.")
		}
	} else {
		fam = family{
			id:   s.id(),
			name: name,
			code: strings.ToUpper(uuid.NewString()[:6]),
		}
		s.families[fam.id] = fam
		role = models.RoleOwner
	}

	now := s.now()
	m := models.FamilyMember{
		ID:         s.id(),
		UUID:       uuid.New(),
		User:       userID,
		Username:   s.users[userID].Username,
		Family:     fam.id,
		FamilyName: fam.name,
		Role:       role,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	s.memberships[m.ID] = m
	return m, nil
}

// FamilyCode returns the join code of the family membership id belongs to.
func (s *Store) FamilyCode(membershipID int64) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.memberships[membershipID]
	if !ok {
		return "", false
	}
	return s.families[m.Family].code, true
}

// Families lists the memberships of userID.
func (s *Store) Families(userID int64) []models.FamilyMember {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.FamilyMember{}
	for _, m := range s.memberships {
		if m.User == userID {
			out = append(out, m)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *Store) ownsMembershipLocked(userID, membershipID int64) bool {
	m, ok := s.memberships[membershipID]
	return ok && m.User == userID
}

// GroceryLists returns the lists visible to userID ordered by id.
func (s *Store) GroceryLists(userID int64) []models.GroceryList {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.GroceryList{}
	for _, l := range s.lists {
		if s.ownsMembershipLocked(userID, l.FamilyMembership) {
			out = append(out, l)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// CreateGroceryList creates a list for membership.
func (s *Store) CreateGroceryList(userID int64, name, description string, membership int64) (models.GroceryList, *Error) {
	var missing []string
	if name == "" {
		missing = append(missing, "name")
	}
	if membership == 0 {
		missing = append(missing, "family_membership")
	}
	if len(missing) > 0 {
		return models.GroceryList{}, fail(http.StatusBadRequest, "Missing mandatory fields: "+strings.Join(missing, ", "))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.ownsMembershipLocked(userID, membership) {
		return models.GroceryList{}, fail(http.StatusForbidden, "You are not authorized to create a list for this family.")
	}
	now := s.now()
	l := models.GroceryList{
		ID:               s.id(),
		UUID:             uuid.New(),
		Name:             name,
		Description:      models.String(description),
		CreatedAt:        now,
		UpdatedAt:        now,
		FamilyMembership: membership,
		CreatedBy:        userID,
	}
	s.lists[l.ID] = l
	return l, nil
}

var errListNotFound = fail(http.StatusNotFound, nil)

func (s *Store) listLocked(userID, id int64) (models.GroceryList, *Error) {
	l, ok := s.lists[id]
	if !ok || !s.ownsMembershipLocked(userID, l.FamilyMembership) {
		return models.GroceryList{}, errListNotFound
	}
	return l, nil
}

// GroceryList returns list id if userID can see it.
func (s *Store) GroceryList(userID, id int64) (models.GroceryList, *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listLocked(userID, id)
}

// UpdateGroceryList applies name and description when present.
func (s *Store) UpdateGroceryList(userID, id int64, fields map[string]string) (models.GroceryList, *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, err := s.listLocked(userID, id)
	if err != nil {
		return l, err
	}
	if v, ok := fields["name"]; ok {
		if v == "" {
			return l, fail(http.StatusBadRequest, map[string][]string{"name": {"This field may not be blank."}})
		}
		l.Name = v
	}
	if v, ok := fields["description"]; ok {
		l.Description = models.String(v)
	}
	l.UpdatedAt = s.now()
	s.lists[id] = l
	return l, nil
}

// DeleteGroceryList removes a list and its items.
func (s *Store) DeleteGroceryList(userID, id int64) *Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.listLocked(userID, id); err != nil {
		return err
	}
	delete(s.lists, id)
	for itemID, it := range s.items {
		if it.GroceryList == id {
			delete(s.items, itemID)
		}
	}
	return nil
}

// GroceryItems returns the items of list listID ordered by id.
func (s *Store) GroceryItems(userID, listID int64) []models.GroceryItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := []models.GroceryItem{}
	if _, err := s.listLocked(userID, listID); err != nil {
		return out
	}
	for _, it := range s.items {
		if it.GroceryList == listID {
			out = append(out, it)
		}
	}
	sort.Slice(out, func(i, j int) bool { return *out[i].ID < *out[j].ID })
	return out
}

// CreateGroceryItem adds item to list listID.
func (s *Store) CreateGroceryItem(userID, listID int64, item models.GroceryItem) (models.GroceryItem, *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.listLocked(userID, listID); err != nil {
		return models.GroceryItem{}, fail(http.StatusForbidden, "You are not authorized to access this grocery list.")
	}
	if s.failItems[item.Name] {
		return models.GroceryItem{}, fail(http.StatusBadRequest, map[string][]string{"name": {"Item rejected."}})
	}
	item.ID = models.Int64(s.id())
	item.GroceryList = listID
	s.items[*item.ID] = item
	return item, nil
}

func (s *Store) itemLocked(userID, id int64) (models.GroceryItem, *Error) {
	it, ok := s.items[id]
	if !ok {
		return it, fail(http.StatusNotFound, "Item not found or not authorized.")
	}
	if _, err := s.listLocked(userID, it.GroceryList); err != nil {
		return it, fail(http.StatusNotFound, "Item not found or not authorized.")
	}
	return it, nil
}

// UpdateGroceryItem replaces the editable fields of item id with patch.
func (s *Store) UpdateGroceryItem(userID, id int64, patch func(*models.GroceryItem)) (models.GroceryItem, *Error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	it, err := s.itemLocked(userID, id)
	if err != nil {
		return it, err
	}
	patch(&it)
	it.ID = models.Int64(id)
	s.items[id] = it
	return it, nil
}

// DeleteGroceryItem removes item id.
func (s *Store) DeleteGroceryItem(userID, id int64) *Error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.itemLocked(userID, id); err != nil {
		return err
	}
	delete(s.items, id)
	return nil
}
