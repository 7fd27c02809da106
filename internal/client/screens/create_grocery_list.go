package screens

import (
	"context"
	"strings"

	"github.com/atinyakov/familycart/internal/client/groceries"
	"github.com/atinyakov/familycart/internal/models"
)

type createListForm struct {
	Name        string `form:"name" validate:"required,max=255"`
	Description string `form:"description" validate:"max=1000"`
}

// CreateGroceryList builds a new list with its first items.
type CreateGroceryList struct {
	d *Deps

	Name        string
	Description string
	Drafts      []models.GroceryItem
}

// NewCreateGroceryList creates the create-list screen.
func NewCreateGroceryList(d *Deps) *CreateGroceryList {
	return &CreateGroceryList{d: d}
}

// Enter requires a token.
func (c *CreateGroceryList) Enter(ctx context.Context) error {
	_, err := c.d.token(ctx, "Please login to create a grocery list.")
	return err
}

// AddItem appends a blank draft and returns its index.
func (c *CreateGroceryList) AddItem() int {
	c.Drafts = append(c.Drafts, groceries.NewDraft())
	return len(c.Drafts) - 1
}

// RemoveItem drops draft i.
func (c *CreateGroceryList) RemoveItem(i int) error {
	if i < 0 || i >= len(c.Drafts) {
		return groceries.ErrNoSuchItem
	}
	c.Drafts = append(c.Drafts[:i], c.Drafts[i+1:]...)
	return nil
}

// UpdateItem edits draft i.
func (c *CreateGroceryList) UpdateItem(i int, fn func(*models.GroceryItem)) error {
	if i < 0 || i >= len(c.Drafts) {
		return groceries.ErrNoSuchItem
	}
	fn(&c.Drafts[i])
	c.Drafts[i].ID = nil
	return nil
}

// Submit creates the list and then every draft, reports the outcome and
// returns to the collection. It needs a name, valid drafts and a cached
// family membership. A list without drafts is allowed.
func (c *CreateGroceryList) Submit(ctx context.Context) (*groceries.BatchResult, error) {
	token, err := c.d.token(ctx, "Please login to create a grocery list.")
	if err != nil {
		return nil, err
	}

	form := createListForm{Name: strings.TrimSpace(c.Name), Description: c.Description}
	if err := validate.Validate(form); err != nil {
		return nil, c.d.invalid(err, "Please enter a grocery list name.")
	}
	for _, item := range c.Drafts {
		if err := groceries.ValidateItem(item); err != nil {
			c.d.Notify.Error("Please add at least one valid grocery item with name and quantity > 0.")
			return nil, err
		}
	}
	membership, ok := c.d.Session.FamilyMembership(ctx)
	if !ok {
		c.d.Notify.Error("Family membership not found. Please refresh the page.")
		return nil, ErrNoFamily
	}

	items := make([]models.GroceryItem, len(c.Drafts))
	for i, d := range c.Drafts {
		d.Name = strings.TrimSpace(d.Name)
		items[i] = d
	}
	res, err := groceries.CreateListWithItems(ctx, c.d.API, token, groceries.NewList{
		Name:             form.Name,
		Description:      form.Description,
		FamilyMembership: membership,
		Items:            items,
	})
	if err != nil {
		return nil, c.d.fail(ctx, err, "Failed to create grocery list. Please try again.")
	}

	if res.Outcome() == groceries.AllFailed {
		c.d.Notify.Error(res.Message())
	} else {
		c.d.Notify.Success(res.Message())
	}
	c.Name, c.Description, c.Drafts = "", "", nil
	c.d.Nav.Navigate(RouteGroceryLists)
	return res, nil
}

// Cancel returns to the collection.
func (c *CreateGroceryList) Cancel() {
	c.d.Nav.Navigate(RouteGroceryLists)
}

// Logout clears the token and the session and returns home.
func (c *CreateGroceryList) Logout(ctx context.Context) error {
	return logout(ctx, c.d)
}
