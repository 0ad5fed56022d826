package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"regress/internal/config"
)

const (
	LoginPath  = "/authenticate/login"
	LogoutPath = "/logout"
)

// ErrLoginFailed is returned when the application rejects the credentials
var ErrLoginFailed = errors.New("login failed")

// TestClient is a cookie-keeping HTTP client for the application's API
type TestClient struct {
	base        *url.URL
	http        *http.Client
	Credentials *config.LoginCredentials
}

// NewTestClient creates a client for the application at baseURL
func NewTestClient(baseURL string, creds *config.LoginCredentials) (*TestClient, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse application url: %w", err)
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}
	return &TestClient{
		base:        u,
		http:        &http.Client{Jar: jar, Timeout: 60 * time.Second},
		Credentials: creds,
	}, nil
}

// BaseURL returns the application address
func (c *TestClient) BaseURL() string {
	return c.base.String()
}

// Login posts the attached credentials to the login form
func (c *TestClient) Login(ctx context.Context) error {
	if !c.Credentials.Complete() {
		return fmt.Errorf("%w: credentials are not configured", ErrLoginFailed)
	}
	form := url.Values{
		"email":    {c.Credentials.Username},
		"password": {c.Credentials.Password},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.resolve(LoginPath), strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("post login form: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	// a rejected login lands back on the login page
	if resp.StatusCode >= 400 || strings.Contains(resp.Request.URL.Path, "/login") {
		return fmt.Errorf("%w: %s for %s", ErrLoginFailed, resp.Status, c.Credentials.Username)
	}
	return nil
}

// Logout ends the session
func (c *TestClient) Logout(ctx context.Context) error {
	resp, err := c.Get(ctx, LogoutPath)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

// Get issues a GET request against a path of the application
func (c *TestClient) Get(ctx context.Context, path string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve(path), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-Requested-With", "XMLHttpRequest")
	return c.http.Do(req)
}

// GetJSON decodes the JSON body of a GET request into v
func (c *TestClient) GetJSON(ctx context.Context, path string, v any) error {
	resp, err := c.Get(ctx, path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: %s", path, resp.Status)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}

func (c *TestClient) resolve(path string) string {
	return c.base.String() + "/" + strings.TrimLeft(path, "/")
}
