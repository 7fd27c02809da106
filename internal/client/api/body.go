package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strconv"
)

// Body is a request payload.
type Body interface {
	// Encode returns the content type and the serialized payload.
	Encode() (contentType string, r io.Reader, err error)
}

type jsonBody struct {
	v any
}

// JSON wraps v as an application/json body.
func JSON(v any) Body {
	return jsonBody{v: v}
}

func (b jsonBody) Encode() (string, io.Reader, error) {
	data, err := json.Marshal(b.v)
	if err != nil {
		return "", nil, err
	}
	return "application/json", bytes.NewReader(data), nil
}

var errNilForm = errors.New("nil form")

// Form is an ordered set of multipart form fields. Setting a key that is
// already present replaces its value and keeps its position.
type Form struct {
	keys   []string
	values map[string]string
}

// NewForm returns an empty Form.
func NewForm() *Form {
	return &Form{values: make(map[string]string)}
}

// Set stores value under key.
func (f *Form) Set(key, value string) *Form {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
	return f
}

// SetFloat stores v in its shortest decimal form ("2", "0.5").
func (f *Form) SetFloat(key string, v float64) *Form {
	return f.Set(key, strconv.FormatFloat(v, 'f', -1, 64))
}

// SetInt stores v in decimal.
func (f *Form) SetInt(key string, v int64) *Form {
	return f.Set(key, strconv.FormatInt(v, 10))
}

// SetBool stores "true" or "false".
func (f *Form) SetBool(key string, v bool) *Form {
	return f.Set(key, strconv.FormatBool(v))
}

// Get returns the value stored under key.
func (f *Form) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys returns the field names in insertion order.
func (f *Form) Keys() []string {
	return append([]string(nil), f.keys...)
}

// Len returns the number of fields.
func (f *Form) Len() int {
	return len(f.keys)
}

// Encode writes the fields as multipart/form-data.
func (f *Form) Encode() (string, io.Reader, error) {
	if f == nil {
		return "", nil, errNilForm
	}
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for _, k := range f.keys {
		if err := w.WriteField(k, f.values[k]); err != nil {
			return "", nil, fmt.Errorf("write field %s: %w", k, err)
		}
	}
	if err := w.Close(); err != nil {
		return "", nil, err
	}
	return w.FormDataContentType(), &buf, nil
}
