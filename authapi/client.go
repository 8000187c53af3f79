package authapi

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

	"github.com/MrEthical07/hrauth/permission"
)

const maxBodyBytes = 1 << 20

// Endpoint paths.
const (
	LoginPath       = "/auth/login"
	PermissionsPath = "/roles/permissions"
	RolesPath       = "/roles"
)

// Role is the wire shape of a role definition.
type Role struct {
	RoleID      string   `json:"role_id,omitempty"`
	RoleName    string   `json:"role_name"`
	Permissions []string `json:"permission_keys"`
}

// TokenSource supplies the bearer token for authenticated calls.
type TokenSource interface {
	Get(ctx context.Context) (string, bool, error)
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces http.DefaultClient.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTokenSource attaches bearer tokens to role and catalog requests.
func WithTokenSource(ts TokenSource) Option {
	return func(c *Client) {
		c.tokens = ts
	}
}

// Client talks to the remote API rooted at a base URL.
type Client struct {
	base   *url.URL
	http   *http.Client
	tokens TokenSource
}

// NewClient parses baseURL and applies opts.
func NewClient(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("parse base url: unsupported scheme %q", u.Scheme)
	}
	c := &Client{base: u, http: http.DefaultClient}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func (c *Client) endpoint(p string) string {
	return c.base.String() + p
}

// Login exchanges credentials for a bearer token. Every failure is an
// *AuthenticationError.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	form := url.Values{}
	form.Set("username", username)
	form.Set("password", password)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(LoginPath), strings.NewReader(form.Encode()))
	if err != nil {
		return "", &AuthenticationError{Err: err}
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", &AuthenticationError{Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", &AuthenticationError{Status: resp.StatusCode, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AuthenticationError{Status: resp.StatusCode, Detail: parseDetail(body)}
	}

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.Unmarshal(body, &out); err != nil || out.AccessToken == "" {
		return "", &AuthenticationError{Status: resp.StatusCode, Detail: "response did not include an access token"}
	}
	return out.AccessToken, nil
}

// Permissions fetches the permission catalog in server order.
func (c *Client) Permissions(ctx context.Context) ([]permission.Entry, error) {
	var out []permission.Entry
	if err := c.do(ctx, http.MethodGet, PermissionsPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Catalog fetches the permission catalog and freezes it.
func (c *Client) Catalog(ctx context.Context) (*permission.Catalog, error) {
	entries, err := c.Permissions(ctx)
	if err != nil {
		return nil, err
	}
	return permission.CatalogFromEntries(entries)
}

// ListRoles returns every role.
func (c *Client) ListRoles(ctx context.Context) ([]Role, error) {
	var out []Role
	if err := c.do(ctx, http.MethodGet, RolesPath, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetRole returns one role.
func (c *Client) GetRole(ctx context.Context, roleID string) (Role, error) {
	var out Role
	err := c.do(ctx, http.MethodGet, RolesPath+"/"+url.PathEscape(roleID), nil, &out)
	return out, err
}

// CreateRole creates role and returns the stored version.
func (c *Client) CreateRole(ctx context.Context, role Role) (Role, error) {
	var out Role
	err := c.do(ctx, http.MethodPost, RolesPath, role, &out)
	return out, err
}

// UpdateRole replaces the role identified by role.RoleID.
func (c *Client) UpdateRole(ctx context.Context, role Role) (Role, error) {
	if role.RoleID == "" {
		return Role{}, errors.New("update role: empty role id")
	}
	id := role.RoleID
	role.RoleID = ""
	var out Role
	err := c.do(ctx, http.MethodPut, RolesPath+"/"+url.PathEscape(id), role, &out)
	return out, err
}

// DeleteRole removes a role.
func (c *Client) DeleteRole(ctx context.Context, roleID string) error {
	return c.do(ctx, http.MethodDelete, RolesPath+"/"+url.PathEscape(roleID), nil, nil)
}

func (c *Client) do(ctx context.Context, method, p string, in, out any) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, p, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(p), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.tokens != nil {
		token, ok, err := c.tokens.Get(ctx)
		if err != nil {
			return fmt.Errorf("%s %s: read token: %w", method, p, err)
		}
		if ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, p, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return fmt.Errorf("%s %s: read body: %w", method, p, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Method: method, Path: p, Status: resp.StatusCode, Detail: parseDetail(data)}
	}
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrUnexpectedResponse, method, p, err)
	}
	return nil
}
