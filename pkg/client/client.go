// Package client is a small HTTP client for the ZippyBoards API.
// It uses raw HTTP calls and implements board.Remote so a board.Manager can
// run against a live server.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/zippyboards/backend/internal/model"
	"github.com/zippyboards/backend/pkg/auth"
)

// APIError is a non-2xx response.
type APIError struct {
	Status  int
	Message string
	Code    ErrorCode
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("api: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("api: %d %s", e.Status, e.Message)
}

// ErrNotLoggedIn is returned by Login when the server set no session cookie.
var ErrNotLoggedIn = errors.New("client: no session in login response")

// RealClient talks to a ZippyBoards server.
type RealClient struct {
	BaseURL    string
	Token      string
	httpClient *http.Client
}

// NewClient returns a client for baseURL authenticating with token.
func NewClient(baseURL, token string) *RealClient {
	return &RealClient{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		Token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *RealClient) do(ctx context.Context, method, path string, in, out any) (*http.Response, error) {
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return nil, err
		}
		body = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return nil, err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.Token != "" {
		req.Header.Set("Authorization", "Bearer "+c.Token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		var e struct {
			Error string            `json:"error"`
			Code  ErrorCode `json:"code"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		return resp, &APIError{Status: resp.StatusCode, Message: e.Error, Code: e.Code}
	}
	if out != nil && resp.StatusCode != http.StatusNoContent {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp, fmt.Errorf("decode %s %s: %w", method, path, err)
		}
	}
	return resp, nil
}

// Login signs in with email and password and keeps the session token for
// later calls. The token is returned so callers can persist it.
func (c *RealClient) Login(ctx context.Context, email, password string) (string, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, nil)
	if err != nil {
		return "", err
	}
	for _, ck := range resp.Cookies() {
		if ck.Name == auth.SessionCookieName() && ck.Value != "" {
			c.Token = ck.Value
			return ck.Value, nil
		}
	}
	return "", ErrNotLoggedIn
}

// Me returns the signed-in user.
func (c *RealClient) Me(ctx context.Context) (*model.User, error) {
	var u model.User
	if _, err := c.do(ctx, http.MethodGet, "/api/me", nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// ListProjects returns the projects the caller belongs to.
func (c *RealClient) ListProjects(ctx context.Context) ([]*model.Project, error) {
	var ps []*model.Project
	if _, err := c.do(ctx, http.MethodGet, "/api/projects", nil, &ps); err != nil {
		return nil, err
	}
	return ps, nil
}

// CreateProject creates a project owned by the caller.
func (c *RealClient) CreateProject(ctx context.Context, name, description string) (*model.Project, error) {
	var p model.Project
	in := map[string]string{"name": name, "description": description}
	if _, err := c.do(ctx, http.MethodPost, "/api/projects", in, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ListTasks returns every task of a project.
func (c *RealClient) ListTasks(ctx context.Context, projectID string) ([]*model.Task, error) {
	var ts []*model.Task
	if _, err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(projectID)+"/tasks", nil, &ts); err != nil {
		return nil, err
	}
	return ts, nil
}

// UpdateTaskStatus moves a task to another lane.
func (c *RealClient) UpdateTaskStatus(ctx context.Context, taskID string, status model.Lane) (*model.Task, error) {
	var t model.Task
	in := map[string]string{"status": string(status)}
	if _, err := c.do(ctx, http.MethodPatch, "/api/tasks/"+url.PathEscape(taskID)+"/status", in, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ListMembers returns the members of a project.
func (c *RealClient) ListMembers(ctx context.Context, projectID string) ([]*model.MemberView, error) {
	var ms []*model.MemberView
	if _, err := c.do(ctx, http.MethodGet, "/api/projects/"+url.PathEscape(projectID)+"/members", nil, &ms); err != nil {
		return nil, err
	}
	return ms, nil
}

// AddMember adds the user with email to a project.
func (c *RealClient) AddMember(ctx context.Context, projectID, email string) (ActionResult, error) {
	return c.action(ctx, http.MethodPost, "/api/projects/"+url.PathEscape(projectID)+"/members", map[string]string{"email": email})
}

// RemoveMember removes a user from a project.
func (c *RealClient) RemoveMember(ctx context.Context, projectID, userID string) (ActionResult, error) {
	return c.action(ctx, http.MethodDelete, "/api/projects/"+url.PathEscape(projectID)+"/members/"+url.PathEscape(userID), nil)
}

// action decodes an ActionResult from both success and failure responses.
// Only transport failures are returned as errors.
func (c *RealClient) action(ctx context.Context, method, path string, in any) (ActionResult, error) {
	var res ActionResult
	_, err := c.do(ctx, method, path, in, &res)
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return ActionResult{Error: apiErr.Message, Code: apiErr.Code}, nil
	}
	if err != nil {
		return ActionResult{}, err
	}
	return res, nil
}
