package shell

import (
	"fmt"
	"strings"

	"github.com/atinyakov/familycart/internal/client/groceries"
	"github.com/atinyakov/familycart/internal/client/screens"
)

// render prints the current screen.
func (s *Shell) render() {
	switch s.route {
	case screens.RouteHome:
		s.renderHome()
	case screens.RouteLogin:
		fmt.Fprintln(s.out, "Login: login <email>")
	case screens.RouteSignup:
		fmt.Fprintln(s.out, "Sign up: signup <email> <first> <last>")
	case screens.RouteOTP:
		if s.otp.Email != "" {
			fmt.Fprintf(s.out, "Enter the code sent to %s: otp <code> (or resend)\n", s.otp.Email)
		}
	case screens.RouteFamilySelection:
		fmt.Fprintln(s.out, "Join a family: join <code>, or create one: create-family <name>")
	case screens.RouteProfile:
		s.renderProfile()
	case screens.RouteMyFamily:
		s.renderFamilies()
	case screens.RouteGroceryLists:
		s.renderLists()
	case screens.RouteCreateGroceryList:
		s.renderCreate()
	default:
		if s.onDetail() {
			s.renderDetail()
		}
	}
}

func (s *Shell) renderHome() {
	if !s.home.Authenticated {
		fmt.Fprintln(s.out, "FamilyCart. Not logged in: login <email> or signup <email> <first> <last>")
		return
	}
	st := s.home.State
	fmt.Fprintf(s.out, "Welcome, %s %s\n", st.Profile.FirstName, st.Profile.LastName)
	if st.Family.Name != "" {
		fmt.Fprintf(s.out, "Family: %s (%s)\n", st.Family.Name, st.Family.Role)
	} else {
		fmt.Fprintln(s.out, "No family yet: join <code> or create-family <name>")
	}
}

func (s *Shell) renderProfile() {
	u := s.profile.User
	gender := "-"
	if u.Gender != nil && *u.Gender != "" {
		gender = *u.Gender
	}
	fmt.Fprintf(s.out, "Username:   %s\n", u.Username)
	fmt.Fprintf(s.out, "Email:      %s\n", u.Email)
	fmt.Fprintf(s.out, "First name: %s\n", u.FirstName)
	fmt.Fprintf(s.out, "Last name:  %s\n", u.LastName)
	fmt.Fprintf(s.out, "Gender:     %s\n", gender)
	if s.profile.Changes().Len() > 0 {
		fmt.Fprintln(s.out, "(unsaved changes: profile save)")
	}
}

func (s *Shell) renderFamilies() {
	if len(s.myFamily.Families) == 0 {
		fmt.Fprintln(s.out, "You have not joined a family yet.")
		return
	}
	for _, f := range s.myFamily.Families {
		fmt.Fprintf(s.out, "  %s (%s) since %s\n", f.FamilyName, f.Role, f.CreatedAt.Format("2006-01-02"))
	}
}

func (s *Shell) renderLists() {
	if len(s.lists.Lists) == 0 {
		fmt.Fprintln(s.out, "No grocery lists yet: new")
		return
	}
	for _, l := range s.lists.Lists {
		line := fmt.Sprintf("  #%d %s", l.ID, l.Name)
		if l.Description != nil && *l.Description != "" {
			line += " - " + *l.Description
		}
		fmt.Fprintln(s.out, line)
	}
	fmt.Fprintf(s.out, "%s (%d lists)%s\n", s.lists.Page, s.lists.Page.Count, pager(s.lists.Page.HasPrevious, s.lists.Page.HasNext))
}

func (s *Shell) renderDetail() {
	l := s.detail.Editor.List()
	fmt.Fprintf(s.out, "%s\n", s.detail.Editor.Name())
	if desc := s.detail.Editor.Description(); desc != "" {
		fmt.Fprintln(s.out, desc)
	}
	if s.detail.Editor.HasChanges() {
		fmt.Fprintln(s.out, "(unsaved list changes: list save)")
	}
	if !l.UpdatedAt.IsZero() {
		fmt.Fprintf(s.out, "Updated %s\n", l.UpdatedAt.Format("2006-01-02 15:04"))
	}

	entries := s.detail.Items.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(s.out, "No items: item add name=... quantity=...")
	}
	for i, e := range entries {
		fmt.Fprintf(s.out, "  %d. %s\n", i+1, itemLine(e))
	}
	p := s.detail.Items.Pagination()
	fmt.Fprintf(s.out, "Total: %d items%s\n", p.Count, pager(p.HasPrevious, p.HasNext))
}

func itemLine(e groceries.Entry) string {
	mark := "[ ]"
	if e.Item.Purchased {
		mark = "[x]"
	}
	line := fmt.Sprintf("%s %s %s %s", mark, e.Item.Name, quantity(e.Item.Quantity), e.Item.QuantityType)
	if e.Item.Note != "" {
		line += " (" + e.Item.Note + ")"
	}
	if e.State != groceries.Clean {
		line += " <" + e.State.String() + ">"
	}
	return line
}

func (s *Shell) renderCreate() {
	fmt.Fprintf(s.out, "New list: %s\n", orDash(s.create.Name))
	if s.create.Description != "" {
		fmt.Fprintln(s.out, s.create.Description)
	}
	for i, d := range s.create.Drafts {
		fmt.Fprintf(s.out, "  %d. %s %s %s\n", i+1, orDash(d.Name), quantity(d.Quantity), d.QuantityType)
	}
	fmt.Fprintln(s.out, "new name <name> | new desc <text> | new item field=value... | new drop <n> | new submit")
}

func quantity(q float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.3f", q), "0"), ".")
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func pager(prev, next bool) string {
	var parts []string
	if prev {
		parts = append(parts, "prev")
	}
	if next {
		parts = append(parts, "next")
	}
	if len(parts) == 0 {
		return ""
	}
	return " [" + strings.Join(parts, ", ") + "]"
}

