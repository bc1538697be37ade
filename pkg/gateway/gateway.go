// Package gateway implements entries.Gateway over the controller's HTTP
// entry endpoint: GET /entry?q=<key> to read and PUT /entry with a JSON
// object {key: value} to write.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// EntryPath is the controller endpoint for entry reads and writes.
const EntryPath = "/entry"

// maxBody bounds how much of a response is read.
const maxBody = 1 << 20

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.hc = hc }
}

// WithTimeout bounds every request. Zero disables the bound.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// Client talks to the controller's entry endpoint. It is safe for
// concurrent use.
type Client struct {
	base    *url.URL
	hc      *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

// New creates a client for the controller at baseURL, e.g.
// "http://hydro.local:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("gateway: parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("gateway: unsupported scheme %q", u.Scheme)
	}
	c := &Client{
		base:    u,
		hc:      http.DefaultClient,
		timeout: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c, nil
}

func (c *Client) endpoint(query url.Values) string {
	u := *c.base
	u.Path = c.base.Path + EntryPath
	u.RawQuery = query.Encode()
	return u.String()
}

func (c *Client) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if c.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, c.timeout)
}

// Fetch reads key. Transport errors, non-2xx responses and null values all
// report ok=false.
func (c *Client) Fetch(ctx context.Context, key string) (any, bool) {
	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(url.Values{"q": {key}}), nil)
	if err != nil {
		c.logger.Debug("entry fetch failed", "key", key, "error", err)
		return nil, false
	}
	resp, err := c.hc.Do(req)
	if err != nil {
		c.logger.Debug("entry fetch failed", "key", key, "error", err)
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Debug("entry fetch rejected", "key", key, "status", resp.StatusCode)
		return nil, false
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		c.logger.Debug("entry fetch read failed", "key", key, "error", err)
		return nil, false
	}
	v := decodeValue(key, resp.Header.Get("Content-Type"), body)
	return v, v != nil
}

// Store writes value under key. Any 2xx response is success.
func (c *Client) Store(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(map[string]any{key: value})
	if err != nil {
		return fmt.Errorf("gateway: encode %q: %w", key, err)
	}

	ctx, cancel := c.withTimeout(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint(nil), bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("gateway: store %q: %w", key, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(req)
	if err != nil {
		return fmt.Errorf("gateway: store %q: %w", key, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBody))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Key: key, Code: resp.StatusCode}
	}
	return nil
}

// StatusError is returned by Store for a non-2xx response.
type StatusError struct {
	Key  string
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("gateway: store %q: %d %s", e.Key, e.Code, http.StatusText(e.Code))
}

// decodeValue extracts the value of key from a response body. A JSON body
// yields its "value" field when present, then its key field, then the whole
// document. A text body that parses as JSON yields its key field or the
// whole document; any other text, empty included, is returned trimmed.
func decodeValue(key, contentType string, body []byte) any {
	mt, _, _ := mime.ParseMediaType(contentType)
	if mt == "application/json" || strings.HasSuffix(mt, "+json") {
		var data any
		if err := json.Unmarshal(body, &data); err != nil {
			return nil
		}
		return unwrap(key, data, true)
	}
	text := strings.TrimSpace(string(body))
	if strings.HasPrefix(text, "{") || strings.HasPrefix(text, "[") {
		var data any
		if err := json.Unmarshal([]byte(text), &data); err == nil {
			return unwrap(key, data, false)
		}
	}
	return text
}

func unwrap(key string, data any, valueField bool) any {
	obj, ok := data.(map[string]any)
	if !ok {
		return data
	}
	if valueField {
		if v, ok := obj["value"]; ok {
			return v
		}
	}
	if v, ok := obj[key]; ok {
		return v
	}
	return data
}
