// Package groceries keeps the local editing state of grocery lists and their
// items in step with the backend.
//
// An item is a draft until its create call succeeds. A persisted item is
// dirty while its fields differ from the snapshot taken at load or save, and
// clean otherwise. Network calls run without holding the lock; their results
// are applied to the entry by key, so concurrent edits of other entries are
// preserved. A reload replaces everything, including edits made while it was
// in flight.
package groceries

import (
	"context"
	"errors"
	"strings"

	"github.com/atinyakov/familycart/internal/client/api"
	"github.com/atinyakov/familycart/internal/models"
	"github.com/atinyakov/familycart/internal/validation"
)

var (
	// ErrInvalidItem is returned when an item lacks a name or a positive quantity.
	ErrInvalidItem = errors.New("item needs a name and a quantity > 0")
	// ErrUnchanged is returned when saving a clean item.
	ErrUnchanged = errors.New("no changes to save")
	// ErrNoSuchItem is returned for an index or key not in the collection.
	ErrNoSuchItem = errors.New("no such item")
)

// Service is the backend surface used by this package. *api.Client implements it.
type Service interface {
	GroceryItems(ctx context.Context, token string, listID int64, pageURL string) (*models.Page[models.GroceryItem], error)
	CreateGroceryItem(ctx context.Context, token string, listID int64, item models.GroceryItem) (*models.GroceryItem, error)
	UpdateGroceryItem(ctx context.Context, token string, item models.GroceryItem) (*models.GroceryItem, error)
	DeleteGroceryItem(ctx context.Context, token string, id int64) error

	GroceryList(ctx context.Context, token string, id int64) (*models.GroceryList, error)
	CreateGroceryList(ctx context.Context, token, name, description string, membership int64) (*models.GroceryList, error)
	UpdateGroceryList(ctx context.Context, token string, id int64, form *api.Form) (*models.GroceryList, error)
	DeleteGroceryList(ctx context.Context, token string, id int64) error
}

var _ Service = (*api.Client)(nil)

// InvalidItemMessage is shown when ErrInvalidItem stops a save.
const InvalidItemMessage = "Please fill in all required fields (name and quantity > 0)."

// itemForm is the validated shape of an item about to be sent.
type itemForm struct {
	Name         string  `form:"name" validate:"required"`
	Quantity     float64 `form:"quantity" validate:"gt=0"`
	QuantityType string  `form:"quantity_type" validate:"oneof=Gram Liter Count"`
}

var validate = validation.New()

// ValidateItem reports ErrInvalidItem unless item has a non-blank name, a
// positive quantity and a known unit.
func ValidateItem(item models.GroceryItem) error {
	form := itemForm{
		Name:         strings.TrimSpace(item.Name),
		Quantity:     item.Quantity,
		QuantityType: string(item.QuantityType),
	}
	if err := validate.Validate(form); err != nil {
		return ErrInvalidItem
	}
	return nil
}

// incomplete reports a blank name or a non-positive quantity.
func incomplete(item models.GroceryItem) bool {
	return strings.TrimSpace(item.Name) == "" || item.Quantity <= 0
}

// NewDraft returns the blank item appended by AddDraft.
func NewDraft() models.GroceryItem {
	return models.GroceryItem{QuantityType: models.Gram}
}

// sameFields compares the editable fields of two items.
func sameFields(a, b models.GroceryItem) bool {
	return a.Name == b.Name &&
		a.Quantity == b.Quantity &&
		a.QuantityType == b.QuantityType &&
		a.Note == b.Note &&
		a.Purchased == b.Purchased
}
