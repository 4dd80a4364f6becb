package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"
)

// Default request timeout, fixed at build time. Callers may override it per
// request via RequestOptions.Timeout.
const DefaultTimeout = 10 * time.Second

// Statuses used for failures that never produced a server response.
const (
	StatusNetworkError = 0
	StatusTimeout      = http.StatusRequestTimeout
)

// CodeAccessDenied is a known server error code callers may branch on,
// e.g. duplicate email on signup.
const CodeAccessDenied = "ERROR_CODE_ACCESS_DENIED"

const (
	genericErrorMessage   = "API request failed"
	timeoutMessage        = "Request timeout"
	networkErrorMessage   = "Network error"
	genericSuccessMessage = "Operation completed successfully!"
)

// CredentialStore provides the stored session credential. It is process-wide
// state with an explicit lifecycle so the 401 interceptor stays testable.
type CredentialStore interface {
	Token() string
	Role() string
	Clear()
}

// Notifier surfaces user-facing toast-style notifications. Fire-and-forget.
type Notifier interface {
	NotifySuccess(message string)
	NotifyError(message string)
}

// Navigator performs client-side navigation. Used exactly once, on session
// expiry, to reach the login entry point.
type Navigator interface {
	RedirectTo(path string)
}

// APIError is the single typed error exposed to callers: branch on Status
// instead of parsing strings. Code carries an optional server error code.
type APIError struct {
	Message string
	Status  int
	Code    string
}

func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error: status=%d code=%s message=%s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("api error: status=%d message=%s", e.Status, e.Message)
}

// RequestOptions is the optional per-call configuration.
type RequestOptions struct {
	// Timeout overrides the client default when positive.
	Timeout time.Duration
	// ShowSuccessNotification emits a success notification on 2xx using
	// SuccessMessage or a generic default.
	ShowSuccessNotification bool
	SuccessMessage          string
	// ExtraHeaders are merged over the defaults but never override the
	// Authorization header.
	ExtraHeaders map[string]string
}

// Client is the single chokepoint for calls against the backend service.
// It attaches credentials, enforces timeouts, classifies failures into
// APIError and centralizes the session-expiry interceptor.
type Client struct {
	BaseURL   string
	LoginPath string
	Timeout   time.Duration

	HTTPClient *http.Client

	creds  CredentialStore
	notify Notifier
	nav    Navigator
}

// New creates a client for the given base URL. The credential store,
// notifier and navigator are injected collaborators.
func New(baseURL string, creds CredentialStore, notify Notifier, nav Navigator) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		LoginPath:  "/login",
		Timeout:    DefaultTimeout,
		HTTPClient: &http.Client{},
		creds:      creds,
		notify:     notify,
		nav:        nav,
	}
}

func (c *Client) Get(ctx context.Context, path string, out interface{}, opts *RequestOptions) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts)
}

func (c *Client) Post(ctx context.Context, path string, body, out interface{}, opts *RequestOptions) error {
	return c.do(ctx, http.MethodPost, path, body, out, opts)
}

func (c *Client) Put(ctx context.Context, path string, body, out interface{}, opts *RequestOptions) error {
	return c.do(ctx, http.MethodPut, path, body, out, opts)
}

func (c *Client) Patch(ctx context.Context, path string, body, out interface{}, opts *RequestOptions) error {
	return c.do(ctx, http.MethodPatch, path, body, out, opts)
}

func (c *Client) Delete(ctx context.Context, path string, out interface{}, opts *RequestOptions) error {
	return c.do(ctx, http.MethodDelete, path, nil, out, opts)
}

// errorBody is the shape servers are expected to (optionally) return on
// non-2xx responses.
type errorBody struct {
	Message string `json:"message"`
	Code    string `json:"code"`
}

func (c *Client) do(ctx context.Context, method, path string, body, out interface{}, opts *RequestOptions) error {
	if opts == nil {
		opts = &RequestOptions{}
	}

	timeout := c.Timeout
	if opts.Timeout > 0 {
		timeout = opts.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token := c.creds.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range opts.ExtraHeaders {
		if strings.EqualFold(k, "Authorization") {
			continue
		}
		req.Header.Set(k, v)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.notify.NotifyError("Request timeout. Please try again.")
			return &APIError{Message: timeoutMessage, Status: StatusTimeout}
		}
		c.notify.NotifyError("Network error. Please check your connection.")
		return &APIError{Message: networkErrorMessage, Status: StatusNetworkError}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	// Session-expiry interceptor: runs exactly once per 401, regardless of
	// which verb triggered it. The redirect replaces any notification.
	if resp.StatusCode == http.StatusUnauthorized {
		c.creds.Clear()
		c.nav.RedirectTo(c.LoginPath)
		return &APIError{Message: "Authentication failed", Status: http.StatusUnauthorized}
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var eb errorBody
		_ = json.Unmarshal(raw, &eb)
		msg := eb.Message
		if msg == "" {
			msg = genericErrorMessage
		}
		c.notify.NotifyError(msg)
		return &APIError{Message: msg, Status: resp.StatusCode, Code: eb.Code}
	}

	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			c.notify.NotifyError("Network error. Please check your connection.")
			return &APIError{Message: networkErrorMessage, Status: StatusNetworkError}
		}
	}

	if opts.ShowSuccessNotification {
		msg := opts.SuccessMessage
		if msg == "" {
			msg = genericSuccessMessage
		}
		c.notify.NotifySuccess(msg)
	}

	return nil
}

// StaticCredentials is a CredentialStore holding a fixed token, e.g. a
// server-side gateway access token loaded from the environment.
type StaticCredentials struct {
	AccessToken string
	AccessRole  string
}

func (s *StaticCredentials) Token() string { return s.AccessToken }
func (s *StaticCredentials) Role() string  { return s.AccessRole }
func (s *StaticCredentials) Clear()        { s.AccessToken = "" }

// LogNotifier writes notifications to the standard logger. Used where no
// interactive surface exists, e.g. outbound gateway calls.
type LogNotifier struct{}

func (LogNotifier) NotifySuccess(message string) { log.Printf("notify success: %s", message) }
func (LogNotifier) NotifyError(message string)   { log.Printf("notify error: %s", message) }

// NopNavigator ignores redirects. Server-side callers have no navigation.
type NopNavigator struct{}

func (NopNavigator) RedirectTo(string) {}
