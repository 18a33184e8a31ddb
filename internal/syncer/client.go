package syncer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"time"

	"github.com/yourname/habittracker/internal"
)

// Client is the network boundary consumed by the Reconciler. Errors are
// categorized with internal.ErrUnauthenticated, ErrNetwork and ErrServer so
// callers can tell an expected offline state from a reportable failure.
type Client interface {
	Pull(ctx context.Context) (*internal.SyncPayload, error)
	Push(ctx context.Context, payload *internal.SyncPayload) error
	// CurrentUser returns the signed-in email, or "" when no session is
	// active. Only transport failures are errors.
	CurrentUser(ctx context.Context) (string, error)
}

// HTTPClient talks to the sync server over JSON HTTP, carrying the session
// cookie issued at login.
type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string) *HTTPClient {
	jar, _ := cookiejar.New(nil)
	return &HTTPClient{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second, Jar: jar},
	}
}

// The server wraps every body in {data, meta, error}.
type envelope[T any] struct {
	Data T `json:"data"`
}

type meResponse struct {
	User *struct {
		Email string `json:"email"`
	} `json:"user"`
}

func (c *HTTPClient) Pull(ctx context.Context) (*internal.SyncPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/sync/pull", nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: pull: %v", internal.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if err := checkStatus(resp.StatusCode, "pull"); err != nil {
		return nil, err
	}
	var body envelope[internal.SyncPayload]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: pull: decode: %v", internal.ErrServer, err)
	}
	return &body.Data, nil
}

func (c *HTTPClient) Push(ctx context.Context, payload *internal.SyncPayload) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/sync/replace", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: push: %v", internal.ErrNetwork, err)
	}
	defer resp.Body.Close()
	return checkStatus(resp.StatusCode, "push")
}

func (c *HTTPClient) CurrentUser(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/auth/me", nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: me: %v", internal.ErrNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil
	}
	var body envelope[meResponse]
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", nil
	}
	if body.Data.User == nil {
		return "", nil
	}
	return body.Data.User.Email, nil
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login establishes a session; the cookie jar keeps it for later calls.
func (c *HTTPClient) Login(ctx context.Context, email, password string) error {
	return c.postCredentials(ctx, "/api/auth/login", email, password)
}

// Register creates an account and signs it in.
func (c *HTTPClient) Register(ctx context.Context, email, password string) error {
	return c.postCredentials(ctx, "/api/auth/register", email, password)
}

func (c *HTTPClient) postCredentials(ctx context.Context, path, email, password string) error {
	body, err := json.Marshal(credentials{Email: email, Password: password})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", internal.ErrNetwork, path, err)
	}
	defer resp.Body.Close()
	return checkStatus(resp.StatusCode, path)
}

func checkStatus(code int, op string) error {
	switch {
	case code >= 200 && code < 300:
		return nil
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", internal.ErrUnauthenticated, op)
	default:
		return fmt.Errorf("%w: %s: status %d", internal.ErrServer, op, code)
	}
}

var _ Client = (*HTTPClient)(nil)
