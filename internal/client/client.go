// Package client is a Go client for the storefront API. A Client holds the
// bearer token and the signed-in profile as owned state and tells
// subscribers whenever either changes.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/geocoder89/storefront/internal/pubsub"
)

// Profile is the signed-in user as the API reports it.
type Profile struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email"`
	IsAdmin bool   `json:"isAdmin"`
}

// State is what subscribers receive. User is nil when signed out.
type State struct {
	Token string
	User  *Profile
}

func (s State) Authenticated() bool {
	return s.Token != "" && s.User != nil
}

// APIError is a non-2xx response decoded from the error envelope.
type APIError struct {
	Status    int
	Code      string
	Message   string
	RequestID string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("storefront api: status %d", e.Status)
	}
	return fmt.Sprintf("storefront api: %d %s", e.Status, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client

	mu    sync.Mutex
	token string
	user  *Profile
	subs  pubsub.List[State]
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithToken restores a previously saved token. Call Refresh to load the
// profile behind it.
func WithToken(token string) Option {
	return func(c *Client) { c.token = token }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      Profile   `json:"user"`
}

func (c *Client) Login(ctx context.Context, email, password string) (Profile, error) {
	var s session
	err := c.do(ctx, http.MethodPost, "/api/users/login", map[string]string{
		"email":    email,
		"password": password,
	}, &s)
	if err != nil {
		return Profile{}, err
	}
	c.setSession(s.Token, &s.User)
	return s.User, nil
}

type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	IsAdmin  bool   `json:"isAdmin,omitempty"`
}

func (c *Client) Register(ctx context.Context, in RegisterInput) (Profile, error) {
	var s session
	if err := c.do(ctx, http.MethodPost, "/api/users/register", in, &s); err != nil {
		return Profile{}, err
	}
	c.setSession(s.Token, &s.User)
	return s.User, nil
}

func (c *Client) Logout() {
	c.setSession("", nil)
}

// Refresh re-reads the profile for the held token. A token the server
// rejects is discarded; transport failures leave state alone.
func (c *Client) Refresh(ctx context.Context) error {
	if c.Token() == "" {
		return nil
	}

	var p Profile
	err := c.do(ctx, http.MethodGet, "/api/users/profile", nil, &p)
	if err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusNotFound) {
			c.setSession("", nil)
		}
		return err
	}

	c.mu.Lock()
	c.user = &p
	c.unlockAndPublish()
	return nil
}

func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

func (c *Client) User() (Profile, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return Profile{}, false
	}
	return *c.user, true
}

func (c *Client) IsAdmin() bool {
	u, ok := c.User()
	return ok && u.IsAdmin
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stateLocked()
}

// Subscribe registers fn for session changes; subscribers run in the order
// they subscribed.
func (c *Client) Subscribe(fn func(State)) (unsubscribe func()) {
	return c.subs.Subscribe(fn)
}

func (c *Client) setSession(token string, user *Profile) {
	c.mu.Lock()
	c.token = token
	if user != nil {
		u := *user
		c.user = &u
	} else {
		c.user = nil
	}
	c.unlockAndPublish()
}

func (c *Client) stateLocked() State {
	s := State{Token: c.token}
	if c.user != nil {
		u := *c.user
		s.User = &u
	}
	return s
}

// unlockAndPublish must be called with c.mu held.
func (c *Client) unlockAndPublish() {
	st := c.stateLocked()
	c.mu.Unlock()

	c.subs.Publish(st)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if tok := c.Token(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response) error {
	apiErr := &APIError{Status: resp.StatusCode}

	var env struct {
		Error struct {
			Code      string `json:"code"`
			Message   string `json:"message"`
			RequestID string `json:"requestId"`
		} `json:"error"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	if json.Unmarshal(raw, &env) == nil {
		apiErr.Code = env.Error.Code
		apiErr.Message = env.Error.Message
		apiErr.RequestID = env.Error.RequestID
	}
	return apiErr
}
