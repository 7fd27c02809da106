package storage

import (
	"context"
	"errors"
)

const tokenKey = "token"

// TokenStore holds the bearer credential. It never expires the token on its
// own; callers clear it when the backend answers 401.
type TokenStore struct {
	kv KV
}

// NewTokenStore creates a TokenStore persisting into kv.
func NewTokenStore(kv KV) *TokenStore {
	return &TokenStore{kv: kv}
}

// Get returns the stored token or ErrNotFound.
func (t *TokenStore) Get(ctx context.Context) (string, error) {
	token, err := t.kv.Get(ctx, tokenKey)
	if err != nil {
		return "", err
	}
	if token == "" {
		return "", ErrNotFound
	}
	return token, nil
}

// Set stores token.
func (t *TokenStore) Set(ctx context.Context, token string) error {
	if token == "" {
		return errors.New("storage: empty token")
	}
	return t.kv.Set(ctx, tokenKey, token, 0)
}

// Clear removes the stored token.
func (t *TokenStore) Clear(ctx context.Context) error {
	return t.kv.Delete(ctx, tokenKey)
}

// IsAuthenticated reports whether a token is present.
func (t *TokenStore) IsAuthenticated(ctx context.Context) bool {
	_, err := t.Get(ctx)
	return err == nil
}
