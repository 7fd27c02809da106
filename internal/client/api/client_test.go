package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/atinyakov/familycart/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type roundTripperFunc func(req *http.Request) (*http.Response, error)

func (f roundTripperFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req)
}

func newTestClient(fn roundTripperFunc) *Client {
	return New(&http.Client{Transport: fn}, "http://example.com", "api/v1", nil)
}

func jsonResponse(status int, body string) *http.Response {
	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": {"application/json"}},
		Body:       io.NopCloser(strings.NewReader(body)),
	}
}

func TestEndpoint(t *testing.T) {
	c := New(nil, "http://example.com/", "/api/v1/", nil)

	tests := []struct {
		in   string
		want string
	}{
		{"user/login", "http://example.com/api/v1/user/login"},
		{"/user/login", "http://example.com/api/v1/user/login"},
		{"api/v1/user/login", "http://example.com/api/v1/user/login"},
		{"/api/v1/grocery/grocery-lists/", "http://example.com/api/v1/grocery/grocery-lists/"},
		{"https://other.example/api/v1/grocery/grocery-lists/?limit=10&offset=10", "https://other.example/api/v1/grocery/grocery-lists/?limit=10&offset=10"},
		{"http://example.com/x", "http://example.com/x"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Endpoint(tt.in), tt.in)
	}

	bare := New(nil, "http://example.com", "", nil)
	assert.Equal(t, "http://example.com/user/login", bare.Endpoint("/user/login"))
}

func TestDo_BearerOnlyWithToken(t *testing.T) {
	var got []string
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		got = append(got, req.Header.Get("Authorization"))
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	require.NoError(t, c.Get(context.Background(), "user/profile", nil, "", nil))
	require.NoError(t, c.Get(context.Background(), "user/profile", nil, "tok", nil))
	assert.Equal(t, []string{"", "Bearer tok"}, got)
}

func TestDo_MergesParams(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "/api/v1/grocery/grocery-items/", req.URL.Path)
		assert.Equal(t, "7", req.URL.Query().Get("grocery_list_id"))
		assert.Equal(t, "2", req.URL.Query().Get("page"))
		return jsonResponse(http.StatusOK, `{}`), nil
	})

	err := c.Get(context.Background(), GroceryItemsEndpoint(7), map[string][]string{"page": {"2"}}, "", nil)
	require.NoError(t, err)
}

func TestDo_NetworkError(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return nil, errors.New("network down")
	})

	err := c.Get(context.Background(), "user/profile", nil, "tok", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "network down")
	assert.Equal(t, "fallback", MessageOr(err, "fallback"))
	assert.False(t, IsUnauthorized(err))
}

func TestDo_InvalidJSON(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, `not-json`), nil
	})

	var out map[string]any
	err := c.Get(context.Background(), "user/profile", nil, "", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to decode response")
}

func TestDo_EmptySuccessBody(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: http.StatusNoContent, Body: io.NopCloser(strings.NewReader(""))}, nil
	})

	var out map[string]any
	require.NoError(t, c.Delete(context.Background(), GroceryItemEndpoint(1), "tok", &out))
}

func TestDo_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := New(srv.Client(), srv.URL, "api/v1", nil)
	err := c.Get(ctx, "user/profile", nil, "", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestPostJSON(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPost, req.Method)
		assert.Equal(t, "application/json", req.Header.Get("Content-Type"))
		var body map[string]string
		require.NoError(t, json.NewDecoder(req.Body).Decode(&body))
		assert.Equal(t, "a@example.com", body["email"])
		return jsonResponse(http.StatusOK, `{"message":"Sucess","payload":"OTP sent on Mail, Please Verify","status":1}`), nil
	})

	msg, err := c.RequestLoginOTP(context.Background(), "a@example.com")
	require.NoError(t, err)
	assert.Equal(t, "OTP sent on Mail, Please Verify", msg)
}

func TestPatchForm_Multipart(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodPatch, req.Method)
		assert.Equal(t, "/api/v1/grocery/grocery-items/3/", req.URL.Path)
		assert.True(t, strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/form-data"))

		require.NoError(t, req.ParseMultipartForm(1<<20))
		assert.Equal(t, "Milk", req.FormValue("name"))
		assert.Equal(t, "1.5", req.FormValue("quantity"))
		assert.Equal(t, "Liter", req.FormValue("quantity_type"))
		assert.Equal(t, "", req.FormValue("note"))
		assert.Equal(t, "true", req.FormValue("purchased"))

		return jsonResponse(http.StatusOK, `{"message":"success","payload":{"id":3,"name":"Milk","quantity":1.5,"quantity_type":"Liter","note":null,"purchased":true},"status":1}`), nil
	})

	item := models.GroceryItem{
		ID:           models.Int64(3),
		Name:         "Milk",
		Quantity:     1.5,
		QuantityType: models.Liter,
		Purchased:    true,
	}
	got, err := c.UpdateGroceryItem(context.Background(), "tok", item)
	require.NoError(t, err)
	require.NotNil(t, got.ID)
	assert.Equal(t, int64(3), *got.ID)
	assert.Equal(t, "", got.Note)
}

func TestUpdateGroceryItem_Draft(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		t.Fatal("no request expected")
		return nil, nil
	})
	_, err := c.UpdateGroceryItem(context.Background(), "tok", models.GroceryItem{Name: "x"})
	require.Error(t, err)
}

func TestGroceryLists_Page(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, "limit=10&offset=10", req.URL.RawQuery)
		return jsonResponse(http.StatusOK, `{
			"count": 25,
			"next": "http://example.com/api/v1/grocery/grocery-lists/?limit=10&offset=20",
			"previous": "http://example.com/api/v1/grocery/grocery-lists/?limit=10",
			"results": {"message": "success", "payload": [{"id": 1, "name": "Weekly", "description": null}], "status": 1}
		}`), nil
	})

	page, err := c.GroceryLists(context.Background(), "tok", "http://example.com/api/v1/grocery/grocery-lists/?limit=10&offset=10")
	require.NoError(t, err)
	assert.Equal(t, 25, page.Count)
	assert.Equal(t, "http://example.com/api/v1/grocery/grocery-lists/?limit=10", page.PreviousURL())
	require.Len(t, page.Results.Payload, 1)
	assert.Nil(t, page.Results.Payload[0].Description)
}

func TestVerifyOTP(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		assert.Equal(t, http.MethodGet, req.Method)
		assert.Equal(t, "/api/v1/user/verify_otp", req.URL.Path)
		assert.Equal(t, "1234", req.URL.Query().Get("otp"))
		assert.Equal(t, "a@example.com", req.URL.Query().Get("email"))
		return jsonResponse(http.StatusOK, `{"message":"Email verfied successfully.","payload":{"token":"tok","user":{"id":1,"email":"a@example.com","family_membership":null}},"status":1}`), nil
	})

	res, err := c.VerifyOTP(context.Background(), "a@example.com", "1234")
	require.NoError(t, err)
	assert.Equal(t, "tok", res.Token)
	assert.Nil(t, res.User.FamilyMembership)
}
