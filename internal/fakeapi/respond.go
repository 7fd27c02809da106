package fakeapi

import (
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

const maxFormMemory = 1 << 20

type envelope struct {
	Message string `json:"message"`
	Payload any    `json:"payload"`
	Status  int    `json:"status"`
}

type page struct {
	Count    int      `json:"count"`
	Next     *string  `json:"next"`
	Previous *string  `json:"previous"`
	Results  envelope `json:"results"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeOK(w http.ResponseWriter, status int, message string, payload any) {
	writeJSON(w, status, envelope{Message: message, Payload: payload, Status: 1})
}

// writeError renders e as an error envelope, or as {"detail": ...} when it
// carries no payload.
func writeError(w http.ResponseWriter, e *Error) {
	if e.Payload == nil {
		writeJSON(w, e.Status, map[string]string{"detail": "Not found."})
		return
	}
	writeJSON(w, e.Status, envelope{Message: "error", Payload: e.Payload, Status: 0})
}

// readFields returns the request fields of a JSON, multipart or urlencoded body.
func readFields(r *http.Request) (map[string]string, error) {
	fields := make(map[string]string)
	if r.Body == nil || r.ContentLength == 0 {
		return fields, nil
	}

	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	switch mediaType {
	case "application/json":
		var raw map[string]any
		if err := json.NewDecoder(r.Body).Decode(&raw); err != nil {
			return nil, fmt.Errorf("decode json body: %w", err)
		}
		for k, v := range raw {
			if v == nil {
				fields[k] = ""
				continue
			}
			fields[k] = fmt.Sprint(v)
		}
	case "multipart/form-data":
		if err := r.ParseMultipartForm(maxFormMemory); err != nil {
			return nil, fmt.Errorf("parse multipart body: %w", err)
		}
		for k, vs := range r.MultipartForm.Value {
			if len(vs) > 0 {
				fields[k] = vs[0]
			}
		}
	default:
		if err := r.ParseForm(); err != nil {
			return nil, fmt.Errorf("parse form body: %w", err)
		}
		for k, vs := range r.PostForm {
			if len(vs) > 0 {
				fields[k] = vs[0]
			}
		}
	}
	return fields, nil
}

// absoluteURL rebuilds the request URL with q as its query.
func absoluteURL(r *http.Request, q url.Values) *string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	u := url.URL{Scheme: scheme, Host: r.Host, Path: r.URL.Path, RawQuery: q.Encode()}
	s := u.String()
	return &s
}

func queryInt(q url.Values, key string, def int) int {
	v, err := strconv.Atoi(q.Get(key))
	if err != nil || v < 0 {
		return def
	}
	return v
}

// limitOffset windows total rows like a limit/offset paginator and returns
// the bounds plus absolute next and previous cursors.
func limitOffset(r *http.Request, total, defaultLimit int) (start, end int, next, prev *string) {
	q := r.URL.Query()
	limit := queryInt(q, "limit", defaultLimit)
	if limit == 0 {
		limit = defaultLimit
	}
	offset := queryInt(q, "offset", 0)

	start = min(offset, total)
	end = min(offset+limit, total)

	if offset+limit < total {
		nq := cloneValues(q)
		nq.Set("limit", strconv.Itoa(limit))
		nq.Set("offset", strconv.Itoa(offset+limit))
		next = absoluteURL(r, nq)
	}
	if offset > 0 {
		pq := cloneValues(q)
		pq.Set("limit", strconv.Itoa(limit))
		if offset-limit <= 0 {
			pq.Del("offset")
		} else {
			pq.Set("offset", strconv.Itoa(offset-limit))
		}
		prev = absoluteURL(r, pq)
	}
	return start, end, next, prev
}

// pageNumber windows total rows like a page-number paginator. ok is false
// for a page past the last one.
func pageNumber(r *http.Request, total, pageSize, maxPageSize int) (start, end int, next, prev *string, ok bool) {
	q := r.URL.Query()
	size := queryInt(q, "page_size", pageSize)
	if size == 0 {
		size = pageSize
	}
	size = min(size, maxPageSize)

	p := 1
	if raw := q.Get("page"); raw != "" {
		if strings.EqualFold(raw, "last") {
			p = max(1, (total+size-1)/size)
		} else if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			p = v
		} else {
			return 0, 0, nil, nil, false
		}
	}
	pages := max(1, (total+size-1)/size)
	if p > pages {
		return 0, 0, nil, nil, false
	}

	start = (p - 1) * size
	end = min(start+size, total)
	if p < pages {
		nq := cloneValues(q)
		nq.Set("page", strconv.Itoa(p+1))
		next = absoluteURL(r, nq)
	}
	if p > 1 {
		pq := cloneValues(q)
		if p-1 == 1 {
			pq.Del("page")
		} else {
			pq.Set("page", strconv.Itoa(p-1))
		}
		prev = absoluteURL(r, pq)
	}
	return start, end, next, prev, true
}

func cloneValues(q url.Values) url.Values {
	out := make(url.Values, len(q))
	for k, vs := range q {
		out[k] = append([]string(nil), vs...)
	}
	return out
}
