package apiclient

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCreds struct {
	token   string
	role    string
	cleared bool
}

func (f *fakeCreds) Token() string { return f.token }
func (f *fakeCreds) Role() string  { return f.role }
func (f *fakeCreds) Clear() {
	f.cleared = true
	f.token = ""
	f.role = ""
}

type fakeNotifier struct {
	successes []string
	errors    []string
}

func (f *fakeNotifier) NotifySuccess(message string) { f.successes = append(f.successes, message) }
func (f *fakeNotifier) NotifyError(message string)   { f.errors = append(f.errors, message) }

type fakeNavigator struct {
	redirects []string
}

func (f *fakeNavigator) RedirectTo(path string) { f.redirects = append(f.redirects, path) }

func newTestClient(baseURL string) (*Client, *fakeCreds, *fakeNotifier, *fakeNavigator) {
	creds := &fakeCreds{token: "tok-123", role: "customer"}
	notify := &fakeNotifier{}
	nav := &fakeNavigator{}
	return New(baseURL, creds, notify, nav), creds, notify, nav
}

func TestGet_Success(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"name":"Morning Brew"}`))
	}))
	defer srv.Close()

	client, _, notify, _ := newTestClient(srv.URL)

	var out struct {
		Name string `json:"name"`
	}
	err := client.Get(context.Background(), "/plans", &out, nil)
	require.NoError(t, err)
	assert.Equal(t, "Morning Brew", out.Name)
	assert.Empty(t, notify.errors)
	assert.Empty(t, notify.successes)
}

func TestPost_SuccessNotification(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, _, notify, _ := newTestClient(srv.URL)

	err := client.Post(context.Background(), "/redeem", map[string]int{"button_number": 1}, nil, &RequestOptions{
		ShowSuccessNotification: true,
		SuccessMessage:          "Redeem request created!",
	})
	require.NoError(t, err)
	require.Len(t, notify.successes, 1)
	assert.Equal(t, "Redeem request created!", notify.successes[0])
}

func TestPost_DefaultSuccessMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, _, notify, _ := newTestClient(srv.URL)

	err := client.Post(context.Background(), "/redeem", nil, nil, &RequestOptions{ShowSuccessNotification: true})
	require.NoError(t, err)
	require.Len(t, notify.successes, 1)
	assert.Equal(t, "Operation completed successfully!", notify.successes[0])
}

func TestTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	defer srv.Close()
	defer close(block)

	client, _, notify, _ := newTestClient(srv.URL)

	err := client.Get(context.Background(), "/slow", nil, &RequestOptions{Timeout: 50 * time.Millisecond})

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, StatusTimeout, apiErr.Status)
	assert.Equal(t, "Request timeout", apiErr.Message)
	// Exactly one error notification for the failed call.
	assert.Len(t, notify.errors, 1)
}

func TestNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing is listening anymore

	client, _, notify, _ := newTestClient(srv.URL)

	err := client.Get(context.Background(), "/plans", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, StatusNetworkError, apiErr.Status)
	assert.Len(t, notify.errors, 1)
}

func TestUnauthorized_ClearsCredentialsAndRedirects(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"message":"session expired"}`))
	}))
	defer srv.Close()

	client, creds, notify, nav := newTestClient(srv.URL)

	err := client.Get(context.Background(), "/profile", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusUnauthorized, apiErr.Status)

	assert.True(t, creds.cleared)
	assert.Empty(t, creds.token)
	require.Len(t, nav.redirects, 1)
	assert.Equal(t, "/login", nav.redirects[0])
	// The redirect replaces the notification.
	assert.Empty(t, notify.errors)
}

func TestServerError_WithCode(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"message":"Email already registered","code":"ERROR_CODE_ACCESS_DENIED"}`))
	}))
	defer srv.Close()

	client, _, notify, _ := newTestClient(srv.URL)

	err := client.Post(context.Background(), "/auth/signup", map[string]string{"email": "a@b.c"}, nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.Status)
	assert.Equal(t, CodeAccessDenied, apiErr.Code)
	assert.Equal(t, "Email already registered", apiErr.Message)

	require.Len(t, notify.errors, 1)
	assert.Equal(t, "Email already registered", notify.errors[0])
}

func TestServerError_FallbackMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client, _, notify, _ := newTestClient(srv.URL)

	err := client.Delete(context.Background(), "/subscriptions/1", nil, nil)

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "API request failed", apiErr.Message)
	require.Len(t, notify.errors, 1)
	assert.Equal(t, "API request failed", notify.errors[0])
}

func TestExtraHeaders_CannotOverrideAuthorization(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok-123", r.Header.Get("Authorization"))
		assert.Equal(t, "square-connect", r.Header.Get("X-Client"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, _, _, _ := newTestClient(srv.URL)

	err := client.Get(context.Background(), "/plans", nil, &RequestOptions{
		ExtraHeaders: map[string]string{
			"Authorization": "Bearer evil",
			"X-Client":      "square-connect",
		},
	})
	require.NoError(t, err)
}

func TestUnauthenticatedRequestOmitsHeader(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client, creds, _, _ := newTestClient(srv.URL)
	creds.token = ""

	require.NoError(t, client.Get(context.Background(), "/plans", nil, nil))
}

func TestErrorsDoNotAutoRetry(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client, _, _, _ := newTestClient(srv.URL)

	err := client.Get(context.Background(), "/plans", nil, nil)
	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestAPIErrorString(t *testing.T) {
	err := &APIError{Message: "boom", Status: 400, Code: "ERR"}
	assert.Contains(t, err.Error(), "status=400")
	assert.Contains(t, err.Error(), "code=ERR")
	assert.True(t, errors.As(error(err), new(*APIError)))
}
