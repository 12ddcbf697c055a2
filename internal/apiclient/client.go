// Package apiclient is a JSON REST client with bearer auth, plus timeout
// and retry helpers that compose around any call.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// Doer sends a request. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Result is a successful response. When NoContent is set the body was
// never read as JSON and Raw is empty.
type Result struct {
	Status    int
	Header    http.Header
	Raw       json.RawMessage
	NoContent bool
}

// Decode unmarshals the body into v.
func (r *Result) Decode(v any) error {
	if r.NoContent {
		return ErrNoContent
	}
	if err := json.Unmarshal(r.Raw, v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

type Client struct {
	baseURL string
	headers http.Header
	doer    Doer
	logger  *slog.Logger
	cache   *Cache

	mu          sync.RWMutex
	token       string
	tokenSource oauth2.TokenSource
}

type Option func(*Client)

// WithHeaders adds default headers sent on every request.
func WithHeaders(h map[string]string) Option {
	return func(c *Client) {
		for k, v := range h {
			c.headers.Set(k, v)
		}
	}
}

func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

// WithTokenSource supplies bearer tokens when no static token is set.
func WithTokenSource(ts oauth2.TokenSource) Option {
	return func(c *Client) { c.tokenSource = ts }
}

func WithDoer(d Doer) Option {
	return func(c *Client) { c.doer = d }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithCache serves repeated GETs from cache until their entries expire.
func WithCache(cache *Cache) Option {
	return func(c *Client) { c.cache = cache }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		headers: http.Header{"Content-Type": []string{"application/json"}},
		doer:    &http.Client{Timeout: 30 * time.Second},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetToken replaces the static bearer token. An empty token removes it.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() (string, error) {
	c.mu.RLock()
	token, ts := c.token, c.tokenSource
	c.mu.RUnlock()

	if token != "" || ts == nil {
		return token, nil
	}
	tok, err := ts.Token()
	if err != nil {
		return "", fmt.Errorf("fetch token: %w", err)
	}
	return tok.AccessToken, nil
}

func hasBody(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch:
		return true
	}
	return false
}

// Request issues method against base URL + path. params are appended as
// key=value pairs. body is sent as JSON only for POST, PUT and PATCH.
func (c *Client) Request(ctx context.Context, method, path string, body any, params url.Values) (*Result, error) {
	u, err := url.Parse(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("build url: %w", err)
	}
	if len(params) > 0 {
		q := u.Query()
		for k, vs := range params {
			for _, v := range vs {
				q.Add(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}
	target := u.String()

	if method == http.MethodGet && c.cache != nil {
		if res, ok := c.cache.Get(ctx, target); ok {
			c.logger.DebugContext(ctx, "api cache hit", "url", target)
			return res, nil
		}
	}

	var reader io.Reader
	if body != nil && hasBody(method) {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	for k, vs := range c.headers {
		req.Header[k] = append([]string(nil), vs...)
	}
	token, err := c.bearer()
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.doer.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "api request",
		"method", method,
		"url", target,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var data any
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			c.logger.WarnContext(ctx, "failed to read error response body",
				"method", method,
				"url", target,
				"status", resp.StatusCode,
				"error", err,
			)
		} else if err := json.Unmarshal(raw, &data); err != nil {
			data = string(raw)
		}
		return nil, &APIError{Status: resp.StatusCode, Data: data}
	}

	res := &Result{Status: resp.StatusCode, Header: resp.Header}
	if resp.StatusCode == http.StatusNoContent {
		res.NoContent = true
	} else {
		raw, err := io.ReadAll(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("read response: %w", err)
		}
		if !json.Valid(raw) {
			return nil, fmt.Errorf("%s %s: %w", method, path, ErrInvalidResponse)
		}
		res.Raw = raw
	}

	if method == http.MethodGet && c.cache != nil {
		c.cache.Put(ctx, target, res)
	}
	return res, nil
}

func (c *Client) Get(ctx context.Context, path string, params url.Values) (*Result, error) {
	return c.Request(ctx, http.MethodGet, path, nil, params)
}

func (c *Client) Post(ctx context.Context, path string, body any) (*Result, error) {
	return c.Request(ctx, http.MethodPost, path, body, nil)
}

func (c *Client) Put(ctx context.Context, path string, body any) (*Result, error) {
	return c.Request(ctx, http.MethodPut, path, body, nil)
}

func (c *Client) Patch(ctx context.Context, path string, body any) (*Result, error) {
	return c.Request(ctx, http.MethodPatch, path, body, nil)
}

func (c *Client) Delete(ctx context.Context, path string) (*Result, error) {
	return c.Request(ctx, http.MethodDelete, path, nil, nil)
}

// GetJSON is Get followed by Decode into a new T.
func GetJSON[T any](ctx context.Context, c *Client, path string, params url.Values) (T, error) {
	var out T
	res, err := c.Get(ctx, path, params)
	if err != nil {
		return out, err
	}
	err = res.Decode(&out)
	return out, err
}
