// Package api is the HTTP client of the FamilyCart backend.
//
// Relative endpoints are resolved against a configured origin and base path.
// Absolute URLs, as issued by pagination cursors, are used unchanged.
// Requests carry "Authorization: Bearer <token>" only when a token is given.
// There is no retry and no client-side timeout beyond the transport default.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Client issues requests against one backend.
type Client struct {
	httpClient *http.Client
	apiURL     string
	basePath   string
	log        *zap.Logger
}

// New creates a Client. A nil httpClient means http.DefaultClient and a nil
// log discards output.
func New(httpClient *http.Client, apiURL, basePath string, log *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		httpClient: httpClient,
		apiURL:     strings.TrimRight(apiURL, "/"),
		basePath:   strings.Trim(basePath, "/"),
		log:        log,
	}
}

// Endpoint resolves endpoint to an absolute URL.
//
// "http://" and "https://" URLs are returned as is. Otherwise a leading "/"
// and a leading "<basePath>/" are stripped before joining
// apiURL/basePath/endpoint, so "user/login", "/user/login" and
// "api/v1/user/login" resolve identically.
func (c *Client) Endpoint(endpoint string) string {
	if strings.HasPrefix(endpoint, "http://") || strings.HasPrefix(endpoint, "https://") {
		return endpoint
	}
	ep := strings.TrimPrefix(endpoint, "/")
	if c.basePath == "" {
		return c.apiURL + "/" + ep
	}
	ep = strings.TrimPrefix(ep, c.basePath+"/")
	return c.apiURL + "/" + c.basePath + "/" + ep
}

// Do sends one request and decodes a successful JSON response into out.
//
// params are merged into the endpoint's query string. body may be nil.
// Any status >= 400 yields an *Error.
func (c *Client) Do(
	ctx context.Context,
	method, endpoint string,
	params url.Values,
	body Body,
	token string,
	out any,
) error {
	target, err := c.resolve(endpoint, params)
	if err != nil {
		return err
	}

	var (
		reader      io.Reader
		contentType string
	)
	if body != nil {
		contentType, reader, err = body.Encode()
		if err != nil {
			return fmt.Errorf("encode %s body: %w", method, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s failed: %w", method, target, err)
	}
	defer resp.Body.Close()

	c.log.Debug("api request",
		zap.String("method", method),
		zap.String("url", target),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		return newError(resp.StatusCode, data)
	}

	if out == nil || len(strings.TrimSpace(string(data))) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) resolve(endpoint string, params url.Values) (string, error) {
	raw := c.Endpoint(endpoint)
	if len(params) == 0 {
		return raw, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("parse endpoint %q: %w", raw, err)
	}
	q := u.Query()
	for k, vs := range params {
		for _, v := range vs {
			q.Add(k, v)
		}
	}
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// Get issues a GET with query params.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values, token string, out any) error {
	return c.Do(ctx, http.MethodGet, endpoint, params, nil, token, out)
}

// PostJSON issues a POST with a JSON body.
func (c *Client) PostJSON(ctx context.Context, endpoint string, v any, token string, out any) error {
	return c.Do(ctx, http.MethodPost, endpoint, nil, JSON(v), token, out)
}

// PostForm issues a POST with a multipart body.
func (c *Client) PostForm(ctx context.Context, endpoint string, form *Form, token string, out any) error {
	return c.Do(ctx, http.MethodPost, endpoint, nil, form, token, out)
}

// PatchForm issues a PATCH with a multipart body.
func (c *Client) PatchForm(ctx context.Context, endpoint string, form *Form, token string, out any) error {
	return c.Do(ctx, http.MethodPatch, endpoint, nil, form, token, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, endpoint, token string, out any) error {
	return c.Do(ctx, http.MethodDelete, endpoint, nil, nil, token, out)
}
