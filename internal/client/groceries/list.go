package groceries

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/atinyakov/familycart/internal/client/api"
	"github.com/atinyakov/familycart/internal/models"
)

// ErrNameRequired is returned when a list name is blank.
var ErrNameRequired = errors.New("list name is required")

// ListEditor holds the editable header of one grocery list.
type ListEditor struct {
	svc   Service
	token string
	id    int64

	mu       sync.Mutex
	loaded   bool
	original models.GroceryList
	current  models.GroceryList
}

// NewListEditor creates an editor for list id. Call Load before use.
func NewListEditor(svc Service, token string, id int64) *ListEditor {
	return &ListEditor{svc: svc, token: token, id: id}
}

// ID returns the list id.
func (l *ListEditor) ID() int64 {
	return l.id
}

// Load fetches the list and resets any edits.
func (l *ListEditor) Load(ctx context.Context) error {
	list, err := l.svc.GroceryList(ctx, l.token, l.id)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.original = cloneList(*list)
	l.current = cloneList(*list)
	l.loaded = true
	return nil
}

// List returns the edited copy.
func (l *ListEditor) List() models.GroceryList {
	l.mu.Lock()
	defer l.mu.Unlock()
	return cloneList(l.current)
}

// Name returns the edited name.
func (l *ListEditor) Name() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.current.Name
}

// Description returns the edited description, "" when unset.
func (l *ListEditor) Description() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.current.Description == nil {
		return ""
	}
	return *l.current.Description
}

// SetName edits the name.
func (l *ListEditor) SetName(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current.Name = name
}

// SetDescription edits the description.
func (l *ListEditor) SetDescription(desc string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.current.Description = &desc
}

// HasChanges reports whether the name or the description differ from the
// loaded list. An unset description and an empty one are different.
func (l *ListEditor) HasChanges() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.hasChangesLocked()
}

func (l *ListEditor) hasChangesLocked() bool {
	if !l.loaded {
		return false
	}
	return l.current.Name != l.original.Name ||
		!equalDesc(l.current.Description, l.original.Description)
}

// Save PATCHes the changed fields and reloads the list. It returns
// ErrUnchanged without a request when nothing changed.
func (l *ListEditor) Save(ctx context.Context) (*models.GroceryList, error) {
	l.mu.Lock()
	if !l.hasChangesLocked() {
		l.mu.Unlock()
		return nil, ErrUnchanged
	}
	if strings.TrimSpace(l.current.Name) == "" {
		l.mu.Unlock()
		return nil, ErrNameRequired
	}
	form := api.NewForm()
	if l.current.Name != l.original.Name {
		form.Set("name", l.current.Name)
	}
	if !equalDesc(l.current.Description, l.original.Description) {
		desc := ""
		if l.current.Description != nil {
			desc = *l.current.Description
		}
		form.Set("description", desc)
	}
	l.mu.Unlock()

	updated, err := l.svc.UpdateGroceryList(ctx, l.token, l.id, form)
	if err != nil {
		return nil, err
	}
	if err := l.Load(ctx); err != nil {
		return updated, err
	}
	return updated, nil
}

// Delete deletes the list on the backend.
func (l *ListEditor) Delete(ctx context.Context) error {
	return l.svc.DeleteGroceryList(ctx, l.token, l.id)
}

func equalDesc(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func cloneList(l models.GroceryList) models.GroceryList {
	if l.Description != nil {
		d := *l.Description
		l.Description = &d
	}
	return l
}
