package screens

import (
	"context"
	"errors"

	"github.com/atinyakov/familycart/internal/client/api"
	"github.com/atinyakov/familycart/internal/client/groceries"
	"github.com/atinyakov/familycart/internal/models"
	"go.uber.org/zap"
)

// ErrListNotLoaded is returned by detail actions before a successful Enter.
var ErrListNotLoaded = errors.New("grocery list not loaded")

// GroceryListDetail edits one list and its items. Item actions are only
// valid after a successful Enter.
type GroceryListDetail struct {
	d *Deps

	Editor *groceries.ListEditor
	Items  *groceries.Items
}

// NewGroceryListDetail creates the detail screen.
func NewGroceryListDetail(d *Deps) *GroceryListDetail {
	return &GroceryListDetail{d: d}
}

// Enter loads list id and the first page of its items. A missing list sends
// the user back to the collection. Item load failures are only logged.
func (g *GroceryListDetail) Enter(ctx context.Context, id int64) error {
	token, err := g.d.token(ctx, "Please login to view grocery list details.")
	if err != nil {
		return err
	}

	editor := groceries.NewListEditor(g.d.API, token, id)
	if err := editor.Load(ctx); err != nil {
		if api.IsNotFound(err) {
			g.d.Notify.Error("Grocery list not found.")
			g.d.Nav.Navigate(RouteGroceryLists)
			return err
		}
		return g.d.fail(ctx, err, "Failed to load grocery list details. Please try again.")
	}
	g.Editor = editor

	items := groceries.NewItems(g.d.API, token, id)
	items.OnReloadError = func(err error) {
		g.d.Log.Warn("failed to reload grocery items", zap.Int64("list", id), zap.Error(err))
	}
	g.Items = items
	if err := items.Load(ctx, ""); err != nil {
		g.d.Log.Warn("failed to load grocery items", zap.Int64("list", id), zap.Error(err))
		if api.IsUnauthorized(err) {
			g.d.expire(ctx)
			return err
		}
	}
	return nil
}

// SaveList PATCHes the changed header fields.
func (g *GroceryListDetail) SaveList(ctx context.Context) error {
	if g.Editor == nil {
		return ErrListNotLoaded
	}
	if _, err := g.d.token(ctx, "Please login to update the grocery list."); err != nil {
		return err
	}
	_, err := g.Editor.Save(ctx)
	switch {
	case errors.Is(err, groceries.ErrUnchanged):
		g.d.Notify.Info("No changes detected.")
		return nil
	case errors.Is(err, groceries.ErrNameRequired):
		g.d.Notify.Error("Grocery list name is required.")
		return err
	case err != nil:
		return g.d.fail(ctx, err, "Failed to update grocery list. Please try again.")
	}
	g.d.Notify.Success("Grocery list updated successfully!")
	return nil
}

// DeleteList deletes the list and returns to the collection.
func (g *GroceryListDetail) DeleteList(ctx context.Context) error {
	if g.Editor == nil {
		return ErrListNotLoaded
	}
	if _, err := g.d.token(ctx, "Please login to delete the grocery list."); err != nil {
		return err
	}
	if err := g.Editor.Delete(ctx); err != nil {
		return g.d.fail(ctx, err, "Failed to delete grocery list. Please try again.")
	}
	g.d.Notify.Success("Grocery list deleted successfully!")
	g.d.Nav.Navigate(RouteGroceryLists)
	return nil
}

// AddItem appends a draft and returns its index.
func (g *GroceryListDetail) AddItem() int {
	return g.Items.AddDraft()
}

// UpdateItem edits entry i locally.
func (g *GroceryListDetail) UpdateItem(i int, fn func(*models.GroceryItem)) error {
	return g.Items.Update(i, fn)
}

// CancelItem reverts entry i, or drops it when it is a draft.
func (g *GroceryListDetail) CancelItem(i int) error {
	return g.Items.Cancel(i)
}

// SaveItem creates a draft or updates a dirty item.
func (g *GroceryListDetail) SaveItem(ctx context.Context, i int) error {
	state, err := g.Items.State(i)
	if err != nil {
		return err
	}
	_, err = g.Items.Save(ctx, i)
	switch {
	case errors.Is(err, groceries.ErrInvalidItem):
		g.d.Notify.Error(groceries.InvalidItemMessage)
		return err
	case errors.Is(err, groceries.ErrUnchanged):
		g.d.Notify.Info("No changes detected.")
		return nil
	case err != nil && state == groceries.Draft:
		return g.d.fail(ctx, err, "Failed to add item.")
	case err != nil:
		return g.d.fail(ctx, err, "Failed to update item.")
	}

	if state == groceries.Draft {
		g.d.Notify.Success("Item added successfully!")
	} else {
		g.d.Notify.Success("Item updated successfully!")
	}
	return nil
}

// SetPurchased toggles entry i and auto-saves a valid persisted item.
func (g *GroceryListDetail) SetPurchased(ctx context.Context, i int, purchased bool) error {
	if err := g.Items.SetPurchased(ctx, i, purchased); err != nil {
		if errors.Is(err, groceries.ErrNoSuchItem) {
			return err
		}
		return g.d.fail(ctx, err, "Failed to update item.")
	}
	return nil
}

// DeleteItem removes entry i.
func (g *GroceryListDetail) DeleteItem(ctx context.Context, i int) error {
	state, err := g.Items.State(i)
	if err != nil {
		return err
	}
	if err := g.Items.Delete(ctx, i); err != nil {
		return g.d.fail(ctx, err, "Failed to delete item.")
	}
	if state != groceries.Draft {
		g.d.Notify.Success("Item deleted successfully!")
	}
	return nil
}

// NextItems loads the next page of items, if any.
func (g *GroceryListDetail) NextItems(ctx context.Context) error {
	p := g.Items.Pagination()
	if !p.HasNext {
		return nil
	}
	return g.loadItems(ctx, p.Next)
}

// PreviousItems loads the previous page of items, if any.
func (g *GroceryListDetail) PreviousItems(ctx context.Context) error {
	p := g.Items.Pagination()
	if !p.HasPrevious {
		return nil
	}
	return g.loadItems(ctx, p.Previous)
}

func (g *GroceryListDetail) loadItems(ctx context.Context, pageURL string) error {
	if err := g.Items.Load(ctx, pageURL); err != nil {
		return g.d.fail(ctx, err, "Failed to load grocery items.")
	}
	return nil
}

// Back returns to the collection.
func (g *GroceryListDetail) Back() {
	g.d.Nav.Navigate(RouteGroceryLists)
}

// Logout clears the token and the session and returns home.
func (g *GroceryListDetail) Logout(ctx context.Context) error {
	return logout(ctx, g.d)
}
