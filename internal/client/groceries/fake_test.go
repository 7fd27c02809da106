package groceries

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/atinyakov/familycart/internal/client/api"
	"github.com/atinyakov/familycart/internal/models"
)

// fakeService is an in-memory Service recording every call.
type fakeService struct {
	mu     sync.Mutex
	nextID int64
	items  map[int64]models.GroceryItem
	order  []int64
	lists  map[int64]models.GroceryList
	calls  []string

	// failCreate fails item creation for names in the set.
	failCreate map[string]bool
	failList   error
	failUpdate error
	failDelete error
	pageCount  int
	next, prev *string
}

func newFakeService() *fakeService {
	return &fakeService{
		nextID: 100,
		items:  make(map[int64]models.GroceryItem),
		lists:  make(map[int64]models.GroceryList),
	}
}

func (f *fakeService) record(call string) {
	f.calls = append(f.calls, call)
}

func (f *fakeService) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeService) seed(items ...models.GroceryItem) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, it := range items {
		f.nextID++
		it.ID = models.Int64(f.nextID)
		f.items[f.nextID] = it
		f.order = append(f.order, f.nextID)
	}
}

func (f *fakeService) GroceryItems(_ context.Context, _ string, listID int64, pageURL string) (*models.Page[models.GroceryItem], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("GET items %d %s", listID, pageURL))

	page := &models.Page[models.GroceryItem]{Next: f.next, Previous: f.prev}
	for _, id := range f.order {
		if it, ok := f.items[id]; ok {
			page.Results.Payload = append(page.Results.Payload, it)
		}
	}
	page.Count = len(page.Results.Payload)
	if f.pageCount > 0 {
		page.Count = f.pageCount
	}
	return page, nil
}

func (f *fakeService) CreateGroceryItem(_ context.Context, _ string, listID int64, item models.GroceryItem) (*models.GroceryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("POST item " + item.Name)

	if f.failCreate[item.Name] {
		return nil, &api.Error{StatusCode: 400, Message: "error"}
	}
	f.nextID++
	item.ID = models.Int64(f.nextID)
	item.GroceryList = listID
	f.items[f.nextID] = item
	f.order = append(f.order, f.nextID)
	return &item, nil
}

func (f *fakeService) UpdateGroceryItem(_ context.Context, _ string, item models.GroceryItem) (*models.GroceryItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("PATCH item %d", *item.ID))

	if f.failUpdate != nil {
		return nil, f.failUpdate
	}
	if _, ok := f.items[*item.ID]; !ok {
		return nil, &api.Error{StatusCode: 404}
	}
	f.items[*item.ID] = item
	return &item, nil
}

func (f *fakeService) DeleteGroceryItem(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("DELETE item %d", id))

	if f.failDelete != nil {
		return f.failDelete
	}
	delete(f.items, id)
	return nil
}

func (f *fakeService) GroceryList(_ context.Context, _ string, id int64) (*models.GroceryList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("GET list %d", id))

	l, ok := f.lists[id]
	if !ok {
		return nil, &api.Error{StatusCode: 404, Payload: []byte(`"Not found."`)}
	}
	return &l, nil
}

func (f *fakeService) CreateGroceryList(_ context.Context, _ string, name, description string, membership int64) (*models.GroceryList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record("POST list " + name)

	if f.failList != nil {
		return nil, f.failList
	}
	f.nextID++
	l := models.GroceryList{ID: f.nextID, Name: name, Description: &description, FamilyMembership: membership}
	f.lists[l.ID] = l
	return &l, nil
}

func (f *fakeService) UpdateGroceryList(_ context.Context, _ string, id int64, form *api.Form) (*models.GroceryList, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("PATCH list %d %v", id, form.Keys()))

	l, ok := f.lists[id]
	if !ok {
		return nil, errors.New("missing")
	}
	if v, ok := form.Get("name"); ok {
		l.Name = v
	}
	if v, ok := form.Get("description"); ok {
		l.Description = &v
	}
	f.lists[id] = l
	return &l, nil
}

func (f *fakeService) DeleteGroceryList(_ context.Context, _ string, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(fmt.Sprintf("DELETE list %d", id))
	delete(f.lists, id)
	return nil
}
