// Package pagination recovers page position from limit/offset cursor URLs.
//
// The backend returns only count, next and previous. The current page is
// derived from the limit and offset query parameters of whichever cursor is
// present, so this breaks silently if the backend stops using limit/offset.
package pagination

import (
	"fmt"
	"net/url"
	"strconv"
)

// DefaultLimit is assumed when a cursor carries no usable limit.
const DefaultLimit = 10

// Info is the derived position within a collection.
type Info struct {
	Count       int
	Limit       int
	Offset      int
	CurrentPage int
	TotalPages  int
	HasNext     bool
	HasPrevious bool
	Next        string
	Previous    string
}

// Derive computes Info from a page response.
//
// With a previous cursor the current offset is previous.offset + limit.
// With only a next cursor it is max(0, next.offset - limit). With neither it
// is 0.
func Derive(count int, next, previous string) Info {
	info := Info{
		Count:       count,
		Limit:       DefaultLimit,
		HasNext:     next != "",
		HasPrevious: previous != "",
		Next:        next,
		Previous:    previous,
	}

	switch {
	case previous != "":
		limit, offset := parse(previous)
		info.Limit = limit
		info.Offset = offset + limit
	case next != "":
		limit, offset := parse(next)
		info.Limit = limit
		info.Offset = max(0, offset-limit)
	}

	if info.Offset == 0 {
		info.CurrentPage = 1
	} else {
		info.CurrentPage = info.Offset/info.Limit + 1
	}
	if count > 0 {
		info.TotalPages = (count + info.Limit - 1) / info.Limit
	}
	if info.TotalPages > 0 && info.CurrentPage > info.TotalPages {
		info.CurrentPage = info.TotalPages
	}
	return info
}

// String renders "Page X of Y". An empty collection is page 1 of 1.
func (i Info) String() string {
	return fmt.Sprintf("Page %d of %d", max(i.CurrentPage, 1), max(i.TotalPages, 1))
}

// parse extracts limit and offset from a cursor. A missing or invalid limit
// is DefaultLimit and a missing or invalid offset is 0.
func parse(cursor string) (limit, offset int) {
	limit = DefaultLimit
	u, err := url.Parse(cursor)
	if err != nil {
		return limit, 0
	}
	q := u.Query()
	if v, err := strconv.Atoi(q.Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(q.Get("offset")); err == nil && v > 0 {
		offset = v
	}
	return limit, offset
}
