// Package client is a thin Go client for the TodoKeeper HTTP API used by
// cmd/client.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/atinyakov/TodoKeeper/internal/models"
	"github.com/atinyakov/TodoKeeper/internal/validation"
)

// APIError is a non-2xx response decoded from the server's error body.
type APIError struct {
	Status  int
	Kind    string `json:"error"`
	Message string `json:"message"`
	Field   string `json:"field"`
}

func (e *APIError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%d %s (%s): %s", e.Status, e.Kind, e.Field, e.Message)
	}
	return fmt.Sprintf("%d %s: %s", e.Status, e.Kind, e.Message)
}

// Client calls the API at BaseURL, authenticating with Token when set.
type Client struct {
	BaseURL string
	Token   string
	HTTP    *http.Client
}

// New returns a Client for baseURL using hc, or a default client with a 10s timeout.
func New(baseURL string, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), HTTP: hc}
}

// Register creates an account.
func (c *Client) Register(ctx context.Context, r validation.Registration) (models.User, error) {
	var u models.User
	err := c.doJSON(ctx, http.MethodPost, "/auth/register", r, &u)
	return u, err
}

// Login exchanges credentials for an access token and stores it on c.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{"username": {username}, "password": {password}}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tr struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.send(req, &tr); err != nil {
		return "", err
	}
	c.Token = tr.AccessToken
	return tr.AccessToken, nil
}

// ListTodos returns the caller's todos.
func (c *Client) ListTodos(ctx context.Context) ([]models.Todo, error) {
	var todos []models.Todo
	err := c.doJSON(ctx, http.MethodGet, "/todos", nil, &todos)
	return todos, err
}

// GetTodo returns one of the caller's todos.
func (c *Client) GetTodo(ctx context.Context, id int64) (models.Todo, error) {
	var t models.Todo
	err := c.doJSON(ctx, http.MethodGet, todoPath(id), nil, &t)
	return t, err
}

// CreateTodo adds a todo.
func (c *Client) CreateTodo(ctx context.Context, in validation.TodoInput) (models.Todo, error) {
	var t models.Todo
	err := c.doJSON(ctx, http.MethodPost, "/todos", in, &t)
	return t, err
}

// UpdateTodo replaces the fields of todo id.
func (c *Client) UpdateTodo(ctx context.Context, id int64, in validation.TodoInput) error {
	return c.doJSON(ctx, http.MethodPut, todoPath(id), in, nil)
}

// DeleteTodo removes todo id.
func (c *Client) DeleteTodo(ctx context.Context, id int64) error {
	return c.doJSON(ctx, http.MethodDelete, todoPath(id), nil, nil)
}

// Profile returns the caller's profile.
func (c *Client) Profile(ctx context.Context) (models.User, error) {
	var u models.User
	err := c.doJSON(ctx, http.MethodGet, "/user/profile", nil, &u)
	return u, err
}

// ChangePassword replaces the caller's password.
func (c *Client) ChangePassword(ctx context.Context, in validation.PasswordChange) error {
	return c.doJSON(ctx, http.MethodPut, "/user/password", in, nil)
}

// ChangePhone replaces the caller's phone number.
func (c *Client) ChangePhone(ctx context.Context, in validation.PhoneChange) error {
	return c.doJSON(ctx, http.MethodPut, "/user/phone", in, nil)
}

func todoPath(id int64) string {
	return "/todos/" + strconv.FormatInt(id, 10)
}

func (c *Client) doJSON(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		rdr = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &APIError{Status: resp.StatusCode}
		data, _ := io.ReadAll(resp.Body)
		if json.Unmarshal(data, apiErr) != nil || apiErr.Kind == "" {
			apiErr.Kind = http.StatusText(resp.StatusCode)
			apiErr.Message = strings.TrimSpace(string(data))
		}
		return apiErr
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
