package screens

import (
	"context"

	"github.com/atinyakov/familycart/internal/client/pagination"
	"github.com/atinyakov/familycart/internal/models"
)

// GroceryLists is the paginated collection of lists.
type GroceryLists struct {
	d *Deps

	Lists []models.GroceryList
	Page  pagination.Info
}

// NewGroceryLists creates the collection screen.
func NewGroceryLists(d *Deps) *GroceryLists {
	return &GroceryLists{d: d, Page: pagination.Derive(0, "", "")}
}

// Enter loads the first page.
func (g *GroceryLists) Enter(ctx context.Context) error {
	return g.load(ctx, "")
}

// Next loads the next page, if any.
func (g *GroceryLists) Next(ctx context.Context) error {
	if !g.Page.HasNext {
		return nil
	}
	return g.load(ctx, g.Page.Next)
}

// Previous loads the previous page, if any.
func (g *GroceryLists) Previous(ctx context.Context) error {
	if !g.Page.HasPrevious {
		return nil
	}
	return g.load(ctx, g.Page.Previous)
}

func (g *GroceryLists) load(ctx context.Context, pageURL string) error {
	token, err := g.d.token(ctx, "Please login to view your grocery lists.")
	if err != nil {
		return err
	}
	page, err := g.d.API.GroceryLists(ctx, token, pageURL)
	if err != nil {
		return g.d.fail(ctx, err, "Failed to load grocery lists. Please try again.")
	}
	g.Lists = page.Results.Payload
	g.Page = pagination.Derive(page.Count, page.NextURL(), page.PreviousURL())
	return nil
}

// Open navigates to the detail of list id.
func (g *GroceryLists) Open(id int64) {
	g.d.Nav.Navigate(GroceryListRoute(id))
}

// New navigates to the create-list screen.
func (g *GroceryLists) New() {
	g.d.Nav.Navigate(RouteCreateGroceryList)
}

// Logout clears the token and the session and returns home.
func (g *GroceryLists) Logout(ctx context.Context) error {
	return logout(ctx, g.d)
}
