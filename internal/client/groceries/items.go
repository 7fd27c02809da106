package groceries

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/atinyakov/familycart/internal/client/pagination"
	"github.com/atinyakov/familycart/internal/models"
	"github.com/google/uuid"
)

// State is the editing state of one entry.
type State int

const (
	// Draft entries have no server id.
	Draft State = iota
	// Dirty entries are persisted and differ from their snapshot.
	Dirty
	// Clean entries are persisted and equal their snapshot.
	Clean
)

func (s State) String() string {
	switch s {
	case Draft:
		return "draft"
	case Dirty:
		return "dirty"
	case Clean:
		return "clean"
	default:
		return "unknown"
	}
}

// Entry is a read-only view of one item.
type Entry struct {
	Key          string
	Item         models.GroceryItem
	State        State
	SaveDisabled bool
}

type entry struct {
	key  string
	item models.GroceryItem
}

// Items tracks the items of one list page.
type Items struct {
	svc    Service
	token  string
	listID int64

	// OnReloadError receives failures of the reloads that follow a
	// successful mutation. Those reloads never fail the mutation itself.
	OnReloadError func(error)

	mu        sync.Mutex
	entries   []entry
	snapshots map[int64]models.GroceryItem
	page      pagination.Info
	pageURL   string
}

// NewItems creates an empty collection for list listID.
func NewItems(svc Service, token string, listID int64) *Items {
	return &Items{
		svc:       svc,
		token:     token,
		listID:    listID,
		snapshots: make(map[int64]models.GroceryItem),
		page:      pagination.Derive(0, "", ""),
	}
}

// ListID returns the list the items belong to.
func (it *Items) ListID() int64 {
	return it.listID
}

func persistedKey(id int64) string {
	return "id:" + strconv.FormatInt(id, 10)
}

// Load fetches pageURL, or the first page when empty, and replaces every
// entry and snapshot with the result.
func (it *Items) Load(ctx context.Context, pageURL string) error {
	page, err := it.svc.GroceryItems(ctx, it.token, it.listID, pageURL)
	if err != nil {
		return err
	}

	entries := make([]entry, 0, len(page.Results.Payload))
	snapshots := make(map[int64]models.GroceryItem, len(page.Results.Payload))
	for _, item := range page.Results.Payload {
		if item.ID == nil {
			continue
		}
		entries = append(entries, entry{key: persistedKey(*item.ID), item: item})
		snapshots[*item.ID] = item
	}

	it.mu.Lock()
	defer it.mu.Unlock()
	it.entries = entries
	it.snapshots = snapshots
	it.pageURL = pageURL
	it.page = pagination.Derive(page.Count, page.NextURL(), page.PreviousURL())
	return nil
}

// Reload re-fetches the last loaded page.
func (it *Items) Reload(ctx context.Context) error {
	it.mu.Lock()
	pageURL := it.pageURL
	it.mu.Unlock()
	return it.Load(ctx, pageURL)
}

func (it *Items) reloadAfterChange(ctx context.Context) {
	if err := it.Reload(ctx); err != nil && it.OnReloadError != nil {
		it.OnReloadError(err)
	}
}

// Pagination returns the position of the loaded page.
func (it *Items) Pagination() pagination.Info {
	it.mu.Lock()
	defer it.mu.Unlock()
	return it.page
}

// Len returns the number of entries.
func (it *Items) Len() int {
	it.mu.Lock()
	defer it.mu.Unlock()
	return len(it.entries)
}

// Entries returns a copy of every entry in display order.
func (it *Items) Entries() []Entry {
	it.mu.Lock()
	defer it.mu.Unlock()

	out := make([]Entry, len(it.entries))
	for i, e := range it.entries {
		out[i] = Entry{
			Key:          e.key,
			Item:         e.item,
			State:        it.stateLocked(e),
			SaveDisabled: it.saveDisabledLocked(e),
		}
	}
	return out
}

// Item returns the current copy of entry i.
func (it *Items) Item(i int) (models.GroceryItem, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if i < 0 || i >= len(it.entries) {
		return models.GroceryItem{}, ErrNoSuchItem
	}
	return it.entries[i].item, nil
}

// AddDraft appends a blank draft and returns its index.
func (it *Items) AddDraft() int {
	it.mu.Lock()
	defer it.mu.Unlock()
	it.entries = append(it.entries, entry{key: uuid.NewString(), item: NewDraft()})
	return len(it.entries) - 1
}

// Update applies fn to the local copy of entry i. fn cannot change the id.
func (it *Items) Update(i int, fn func(*models.GroceryItem)) error {
	it.mu.Lock()
	defer it.mu.Unlock()
	if i < 0 || i >= len(it.entries) {
		return ErrNoSuchItem
	}
	e := &it.entries[i]
	id := e.item.ID
	fn(&e.item)
	e.item.ID = id
	return nil
}

// State returns the editing state of entry i.
func (it *Items) State(i int) (State, error) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if i < 0 || i >= len(it.entries) {
		return Draft, ErrNoSuchItem
	}
	return it.stateLocked(it.entries[i]), nil
}

// IsUnchanged reports whether entry i is persisted and equal to its snapshot.
func (it *Items) IsUnchanged(i int) bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	if i < 0 || i >= len(it.entries) {
		return false
	}
	return it.unchangedLocked(it.entries[i])
}

// IsSaveDisabled reports whether saving entry i would be refused: a draft
// without a name or a positive quantity, or a clean persisted item.
func (it *Items) IsSaveDisabled(i int) bool {
	it.mu.Lock()
	defer it.mu.Unlock()
	if i < 0 || i >= len(it.entries) {
		return true
	}
	return it.saveDisabledLocked(it.entries[i])
}

func (it *Items) unchangedLocked(e entry) bool {
	if e.item.ID == nil {
		return false
	}
	snap, ok := it.snapshots[*e.item.ID]
	if !ok {
		return false
	}
	return sameFields(e.item, snap)
}

func (it *Items) stateLocked(e entry) State {
	switch {
	case e.item.ID == nil:
		return Draft
	case it.unchangedLocked(e):
		return Clean
	default:
		return Dirty
	}
}

func (it *Items) saveDisabledLocked(e entry) bool {
	if e.item.ID == nil {
		return incomplete(e.item)
	}
	return it.unchangedLocked(e)
}

func (it *Items) indexLocked(key string) int {
	for i, e := range it.entries {
		if e.key == key {
			return i
		}
	}
	return -1
}

// Cancel reverts a persisted entry to its snapshot and removes a draft.
func (it *Items) Cancel(i int) error {
	it.mu.Lock()
	defer it.mu.Unlock()
	if i < 0 || i >= len(it.entries) {
		return ErrNoSuchItem
	}
	e := it.entries[i]
	if e.item.ID == nil {
		it.entries = append(it.entries[:i], it.entries[i+1:]...)
		return nil
	}
	if snap, ok := it.snapshots[*e.item.ID]; ok {
		it.entries[i].item = snap
	}
	return nil
}

// Save persists entry i. A draft is created, a dirty item is updated. On
// success the server copy replaces the entry and its snapshot and the page is
// reloaded.
func (it *Items) Save(ctx context.Context, i int) (*models.GroceryItem, error) {
	it.mu.Lock()
	if i < 0 || i >= len(it.entries) {
		it.mu.Unlock()
		return nil, ErrNoSuchItem
	}
	e := it.entries[i]
	unchanged := it.unchangedLocked(e)
	it.mu.Unlock()

	if err := ValidateItem(e.item); err != nil {
		return nil, err
	}

	var (
		saved *models.GroceryItem
		err   error
	)
	if e.item.ID == nil {
		saved, err = it.svc.CreateGroceryItem(ctx, it.token, it.listID, e.item)
	} else {
		if unchanged {
			return nil, ErrUnchanged
		}
		saved, err = it.svc.UpdateGroceryItem(ctx, it.token, e.item)
	}
	if err != nil {
		return nil, err
	}
	if saved.ID == nil {
		return nil, fmt.Errorf("save item %q: response has no id", e.item.Name)
	}

	it.apply(e.key, *saved)
	it.reloadAfterChange(ctx)
	return saved, nil
}

// apply replaces the entry known by key with the server copy.
func (it *Items) apply(key string, saved models.GroceryItem) {
	it.mu.Lock()
	defer it.mu.Unlock()
	if idx := it.indexLocked(key); idx >= 0 {
		it.entries[idx] = entry{key: persistedKey(*saved.ID), item: saved}
	}
	it.snapshots[*saved.ID] = saved
}

// SetPurchased sets the purchased flag of entry i. A valid persisted item is
// saved right away, dirty or not, without reloading the page. Drafts and
// invalid items only change locally.
func (it *Items) SetPurchased(ctx context.Context, i int, purchased bool) error {
	it.mu.Lock()
	if i < 0 || i >= len(it.entries) {
		it.mu.Unlock()
		return ErrNoSuchItem
	}
	it.entries[i].item.Purchased = purchased
	e := it.entries[i]
	it.mu.Unlock()

	if e.item.ID == nil || ValidateItem(e.item) != nil {
		return nil
	}

	saved, err := it.svc.UpdateGroceryItem(ctx, it.token, e.item)
	if err != nil {
		return err
	}
	if saved.ID == nil {
		return fmt.Errorf("save item %q: response has no id", e.item.Name)
	}
	it.apply(e.key, *saved)
	return nil
}

// Delete removes entry i. A draft is dropped locally. A persisted item is
// deleted on the backend first and removed locally only on success, after
// which the page is reloaded.
func (it *Items) Delete(ctx context.Context, i int) error {
	it.mu.Lock()
	if i < 0 || i >= len(it.entries) {
		it.mu.Unlock()
		return ErrNoSuchItem
	}
	e := it.entries[i]
	if e.item.ID == nil {
		it.entries = append(it.entries[:i], it.entries[i+1:]...)
		it.mu.Unlock()
		return nil
	}
	it.mu.Unlock()

	id := *e.item.ID
	if err := it.svc.DeleteGroceryItem(ctx, it.token, id); err != nil {
		return err
	}

	it.mu.Lock()
	if idx := it.indexLocked(e.key); idx >= 0 {
		it.entries = append(it.entries[:idx], it.entries[idx+1:]...)
	}
	delete(it.snapshots, id)
	it.mu.Unlock()

	it.reloadAfterChange(ctx)
	return nil
}
