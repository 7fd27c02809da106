package fakeapi

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/atinyakov/familycart/internal/middleware"
	"github.com/atinyakov/familycart/internal/models"
	"github.com/go-chi/chi/v5"
)

const (
	listPageSize    = 10
	itemPageSize    = 10
	itemMaxPageSize = 50
)

func pathID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	return id, err == nil && id > 0
}

func badRequest(w http.ResponseWriter, payload any) {
	writeError(w, fail(http.StatusBadRequest, payload))
}

// ListGroceryLists serves a limit/offset page of lists.
func (h *Handler) ListGroceryLists(w http.ResponseWriter, r *http.Request) {
	lists := h.Store.GroceryLists(middleware.UserIDFromContext(r.Context()))
	start, end, next, prev := limitOffset(r, len(lists), listPageSize)
	writeJSON(w, http.StatusOK, page{
		Count:    len(lists),
		Next:     next,
		Previous: prev,
		Results:  envelope{Message: "success", Payload: lists[start:end], Status: 1},
	})
}

// CreateGroceryList creates a list for family_membership.
func (h *Handler) CreateGroceryList(w http.ResponseWriter, r *http.Request) {
	fields, err := readFields(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	var membership int64
	if raw := fields["family_membership"]; raw != "" {
		membership, err = strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(w, map[string][]string{"family_membership": {"Incorrect type. Expected pk value."}})
			return
		}
	}
	l, e := h.Store.CreateGroceryList(
		middleware.UserIDFromContext(r.Context()),
		fields["name"],
		fields["description"],
		membership,
	)
	if e != nil {
		writeError(w, e)
		return
	}
	writeOK(w, http.StatusCreated, "success", l)
}

// GetGroceryList returns one list.
func (h *Handler) GetGroceryList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, errListNotFound)
		return
	}
	l, e := h.Store.GroceryList(middleware.UserIDFromContext(r.Context()), id)
	if e != nil {
		writeError(w, e)
		return
	}
	writeOK(w, http.StatusOK, "success", l)
}

// UpdateGroceryList partially updates one list.
func (h *Handler) UpdateGroceryList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, errListNotFound)
		return
	}
	fields, err := readFields(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	l, e := h.Store.UpdateGroceryList(middleware.UserIDFromContext(r.Context()), id, fields)
	if e != nil {
		writeError(w, e)
		return
	}
	writeOK(w, http.StatusOK, "success", l)
}

// DeleteGroceryList deletes one list.
func (h *Handler) DeleteGroceryList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, errListNotFound)
		return
	}
	if e := h.Store.DeleteGroceryList(middleware.UserIDFromContext(r.Context()), id); e != nil {
		writeError(w, e)
		return
	}
	writeOK(w, http.StatusOK, "success", "Grocery list deleted successfully.")
}

func listIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := r.URL.Query().Get("grocery_list_id")
	if raw == "" {
		badRequest(w, "grocery_list_id query param is required.")
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		badRequest(w, "grocery_list_id query param is required.")
		return 0, false
	}
	return id, true
}

// ListGroceryItems serves a page-number page of the items of one list.
func (h *Handler) ListGroceryItems(w http.ResponseWriter, r *http.Request) {
	listID, ok := listIDParam(w, r)
	if !ok {
		return
	}
	items := h.Store.GroceryItems(middleware.UserIDFromContext(r.Context()), listID)
	start, end, next, prev, ok := pageNumber(r, len(items), itemPageSize, itemMaxPageSize)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Invalid page."})
		return
	}
	writeJSON(w, http.StatusOK, page{
		Count:    len(items),
		Next:     next,
		Previous: prev,
		Results:  envelope{Message: "success", Payload: items[start:end], Status: 1},
	})
}

// itemPatch parses the item fields present in fields. With create set, name,
// quantity and quantity_type are mandatory.
func (h *Handler) itemPatch(fields map[string]string, create bool) (func(*models.GroceryItem), any) {
	if create {
		var missing []string
		for _, f := range []string{"name", "quantity", "quantity_type"} {
			if fields[f] == "" {
				missing = append(missing, f)
			}
		}
		if len(missing) > 0 {
			return nil, "Missing mandatory fields: " + strings.Join(missing, ", ")
		}
	}

	errs := make(map[string][]string)
	var (
		quantity  float64
		purchased bool
	)
	if raw, ok := fields["quantity"]; ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			errs["quantity"] = []string{"A valid number is required."}
		}
		quantity = v
	}
	if raw, ok := fields["quantity_type"]; ok {
		if err := h.validate.Var(raw, "oneof=Gram Liter Count"); err != nil {
			errs["quantity_type"] = []string{fmt.Sprintf("%q is not a valid choice.", raw)}
		}
	}
	if raw, ok := fields["purchased"]; ok {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			errs["purchased"] = []string{"Must be a valid boolean."}
		}
		purchased = v
	}
	if len(errs) > 0 {
		return nil, errs
	}

	return func(it *models.GroceryItem) {
		if v, ok := fields["name"]; ok {
			it.Name = v
		}
		if _, ok := fields["quantity"]; ok {
			it.Quantity = quantity
		}
		if v, ok := fields["quantity_type"]; ok {
			it.QuantityType = models.QuantityType(v)
		}
		if v, ok := fields["note"]; ok {
			it.Note = v
		}
		if _, ok := fields["purchased"]; ok {
			it.Purchased = purchased
		}
	}, nil
}

// CreateGroceryItem adds an item to ?grocery_list_id.
func (h *Handler) CreateGroceryItem(w http.ResponseWriter, r *http.Request) {
	listID, ok := listIDParam(w, r)
	if !ok {
		return
	}
	fields, err := readFields(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	patch, problem := h.itemPatch(fields, true)
	if problem != nil {
		badRequest(w, problem)
		return
	}
	var item models.GroceryItem
	patch(&item)

	saved, e := h.Store.CreateGroceryItem(middleware.UserIDFromContext(r.Context()), listID, item)
	if e != nil {
		writeError(w, e)
		return
	}
	writeOK(w, http.StatusCreated, "success", saved)
}

// UpdateGroceryItem partially updates one item.
func (h *Handler) UpdateGroceryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, fail(http.StatusNotFound, "Item not found or not authorized."))
		return
	}
	fields, err := readFields(r)
	if err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	patch, problem := h.itemPatch(fields, false)
	if problem != nil {
		badRequest(w, problem)
		return
	}
	saved, e := h.Store.UpdateGroceryItem(middleware.UserIDFromContext(r.Context()), id, patch)
	if e != nil {
		writeError(w, e)
		return
	}
	writeOK(w, http.StatusOK, "success", saved)
}

// DeleteGroceryItem deletes one item.
func (h *Handler) DeleteGroceryItem(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(r)
	if !ok {
		writeError(w, fail(http.StatusNotFound, "Item not found or not authorized."))
		return
	}
	if e := h.Store.DeleteGroceryItem(middleware.UserIDFromContext(r.Context()), id); e != nil {
		writeError(w, e)
		return
	}
	writeOK(w, http.StatusOK, "success", "Item deleted successfully.")
}
