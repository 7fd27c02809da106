package api

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestError_TextPrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"payload string", `{"message":"error","payload":"Please do Signup!","status":0}`, "Please do Signup!"},
		{"message when payload empty", `{"message":"Failed to update profile","payload":""}`, "Failed to update profile"},
		{"detail last", `{"detail":"Authentication credentials were not provided."}`, "Authentication credentials were not provided."},
		{"field errors", `{"message":"error","payload":{"name":["Name is required."],"email":"bad"}}`, "email: bad; name: Name is required."},
		{"not json", `<html>oops</html>`, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newError(http.StatusBadRequest, []byte(tt.body))
			assert.Equal(t, tt.want, e.Text())
		})
	}
}

func TestMessageOr(t *testing.T) {
	e := newError(http.StatusNotFound, []byte(`{"payload":"Grocery list not found."}`))
	wrapped := fmt.Errorf("load: %w", e)

	assert.Equal(t, "Grocery list not found.", MessageOr(wrapped, "fallback"))
	assert.True(t, IsNotFound(wrapped))
	assert.False(t, IsUnauthorized(wrapped))

	empty := newError(http.StatusInternalServerError, nil)
	assert.Equal(t, "fallback", MessageOr(empty, "fallback"))
	assert.Equal(t, "api: 500 Internal Server Error", empty.Error())
}

func TestDo_ErrorStatus(t *testing.T) {
	c := newTestClient(func(req *http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusUnauthorized, `{"detail":"Given token not valid for any token type"}`), nil
	})

	_, err := c.Profile(context.Background(), "stale")
	require.Error(t, err)
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Equal(t, "Given token not valid for any token type", MessageOr(err, "x"))
}
