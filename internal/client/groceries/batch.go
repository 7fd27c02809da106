package groceries

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/atinyakov/familycart/internal/models"
	"golang.org/x/sync/errgroup"
)

// NewList is a list to create together with its first items.
type NewList struct {
	Name             string
	Description      string
	FamilyMembership int64
	Items            []models.GroceryItem
}

// Outcome classifies a batch creation.
type Outcome int

const (
	NoItems Outcome = iota
	AllSucceeded
	Partial
	AllFailed
)

// ItemError is the failure of one draft.
type ItemError struct {
	Index int
	Item  models.GroceryItem
	Err   error
}

// BatchResult summarizes CreateListWithItems once every item call settled.
type BatchResult struct {
	List      *models.GroceryList
	Total     int
	Succeeded int
	Failed    int
	Items     []models.GroceryItem
	Errors    []ItemError
}

// Outcome classifies the result.
func (r *BatchResult) Outcome() Outcome {
	switch {
	case r.Total == 0:
		return NoItems
	case r.Failed == 0:
		return AllSucceeded
	case r.Succeeded == 0:
		return AllFailed
	default:
		return Partial
	}
}

// Message is the banner text for the result.
func (r *BatchResult) Message() string {
	switch r.Outcome() {
	case NoItems:
		return "Grocery list created successfully!"
	case AllSucceeded:
		return "Grocery list and items created successfully!"
	case AllFailed:
		return "Grocery list created but failed to add items. Please add them manually."
	default:
		return fmt.Sprintf("Grocery list created! %d items added successfully, %d items failed.", r.Succeeded, r.Failed)
	}
}

// CreateListWithItems creates the list, then every item concurrently, and
// waits for all item calls to finish. A list creation failure is returned
// as is and no item is attempted. Item failures are collected into the
// result; the list is kept and nothing is retried.
func CreateListWithItems(ctx context.Context, svc Service, token string, in NewList) (*BatchResult, error) {
	list, err := svc.CreateGroceryList(ctx, token, in.Name, in.Description, in.FamilyMembership)
	if err != nil {
		return nil, err
	}

	res := &BatchResult{List: list, Total: len(in.Items)}
	created := make([]*models.GroceryItem, len(in.Items))

	var (
		mu sync.Mutex
		g  errgroup.Group
	)
	for i, item := range in.Items {
		g.Go(func() error {
			saved, err := svc.CreateGroceryItem(ctx, token, list.ID, item)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				res.Failed++
				res.Errors = append(res.Errors, ItemError{Index: i, Item: item, Err: err})
				return nil
			}
			res.Succeeded++
			created[i] = saved
			return nil
		})
	}
	_ = g.Wait()

	sort.Slice(res.Errors, func(a, b int) bool { return res.Errors[a].Index < res.Errors[b].Index })

	for _, saved := range created {
		if saved != nil {
			res.Items = append(res.Items, *saved)
		}
	}
	return res, nil
}
