// Package api is the storefront's client for the backend REST API:
// base URL handling, identity headers, JSON encoding and the
// centralized response interceptor every wrapped request goes through.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/penseeboheme/storefront/internal/notify"
	"github.com/penseeboheme/storefront/internal/state"
)

const defaultTimeout = 30 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	state      *state.State
	notifier   notify.Notifier

	// sessionExpired runs once per intercepted 401: forced local
	// logout plus a redirect signal to the login route. Set by the
	// auth service after construction to avoid a dependency cycle.
	sessionExpired func()
}

func NewClient(baseURL string, s *state.State, notifier notify.Notifier) *Client {
	if notifier == nil {
		notifier = notify.LogNotifier{}
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
		state:      s,
		notifier:   notifier,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetSessionExpiredHook installs the forced-logout handler invoked on
// intercepted 401 responses.
func (c *Client) SetSessionExpiredHook(fn func()) {
	c.sessionExpired = fn
}

type requestOptions struct {
	skipIntercept bool
	skipIdentity  bool
}

type RequestOption func(*requestOptions)

// WithoutIntercept bypasses the 401 interceptor. Login and register
// use it: a rejected credential must not trigger a forced logout.
func WithoutIntercept() RequestOption {
	return func(o *requestOptions) { o.skipIntercept = true }
}

// WithoutIdentity omits the Authorization / X-Anonymous-Id headers.
func WithoutIdentity() RequestOption {
	return func(o *requestOptions) { o.skipIdentity = true }
}

func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodPatch, path, body, out, opts...)
}

func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out, opts...)
}

// Do issues a request and decodes the JSON response into out (out may
// be nil). Non-2xx responses come back as *Error after passing the
// interceptor: 401 notifies and forces one logout + redirect, 422 is
// returned untouched for caller-side field validation, anything else
// raises a generic notice.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var options requestOptions
	for _, opt := range opts {
		opt(&options)
	}

	requestID := ulid.Make().String()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	if !options.skipIdentity {
		for key, values := range Headers(c.state) {
			for _, value := range values {
				req.Header.Set(key, value)
			}
		}
	} else {
		req.Header.Set("Accept", "application/json")
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if !options.skipIntercept {
			c.notifier.Notify(notify.GenericError(""))
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.handleErrorResponse(resp, requestID, options)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (c *Client) handleErrorResponse(resp *http.Response, requestID string, options requestOptions) error {
	respBody, _ := io.ReadAll(resp.Body)

	apiErr := &Error{
		StatusCode: resp.StatusCode,
		Message:    errorMessage(respBody),
		Body:       respBody,
		RequestID:  requestID,
	}

	if options.skipIntercept {
		return apiErr
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized:
		slog.Warn("session expired", "request_id", requestID, "path", resp.Request.URL.Path)
		c.notifier.Notify(notify.SessionExpired())
		if c.sessionExpired != nil {
			c.sessionExpired()
		}
	case http.StatusUnprocessableEntity:
		// Field validation: the caller shapes the message.
	default:
		slog.Error("api request failed",
			"request_id", requestID,
			"path", resp.Request.URL.Path,
			"status", resp.StatusCode,
		)
		c.notifier.Notify(notify.GenericError(apiErr.Message))
	}

	return apiErr
}

func errorMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Message != "" {
		return payload.Message
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return "unexpected response"
}
