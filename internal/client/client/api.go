// Package client is a thin typed wrapper around the textify HTTP API.
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

	"github.com/dmitrijs2005/textify/internal/common"
	"github.com/dmitrijs2005/textify/internal/server/models"
)

// ErrUnavailable wraps transport failures: the server could not be reached
// or did not answer in time.
var ErrUnavailable = errors.New("server unavailable")

// ErrNotLoggedIn is returned by calls that need a token when none is set.
var ErrNotLoggedIn = errors.New("not logged in")

// APIError is a non-2xx answer. Detail is the server's message.
type APIError struct {
	Status int
	Detail string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, http.StatusText(e.Status), e.Detail)
}

// Unauthorized reports whether err is a 401 from the server.
func Unauthorized(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized
}

// HTTPClient talks to one server and remembers the access token obtained by
// Login. It is not safe for concurrent use.
type HTTPClient struct {
	baseURL     string
	http        *http.Client
	accessToken string
}

func NewHTTPClient(baseURL string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) SetAccessToken(token string) { c.accessToken = token }

func (c *HTTPClient) AccessToken() string { return c.accessToken }

// Register creates an account; it does not log in.
func (c *HTTPClient) Register(ctx context.Context, userName, email, password string) (*models.PublicUser, error) {
	var u models.PublicUser
	body := models.Registration{UserName: userName, Email: email, Password: password}
	if err := c.do(ctx, http.MethodPost, "/auth/register", false, body, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *HTTPClient) Login(ctx context.Context, userName, password string) error {
	form := url.Values{"username": {userName}, "password": {password}}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/token", strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	var tok struct {
		AccessToken string `json:"access_token"`
		TokenType   string `json:"token_type"`
	}
	if err := c.send(req, &tok); err != nil {
		return err
	}

	c.accessToken = tok.AccessToken
	return nil
}

func (c *HTTPClient) Logout() { c.accessToken = "" }

func (c *HTTPClient) Me(ctx context.Context) (*models.PublicUser, error) {
	var u models.PublicUser
	if err := c.do(ctx, http.MethodGet, "/auth/users/me", true, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func (c *HTTPClient) ListDocuments(ctx context.Context) ([]models.Document, error) {
	var docs []models.Document
	if err := c.do(ctx, http.MethodGet, "/user/documents", true, nil, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (c *HTTPClient) GetDocument(ctx context.Context, id string) (*models.Document, error) {
	var d models.Document
	if err := c.do(ctx, http.MethodGet, "/user/documents/"+url.PathEscape(id), true, nil, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *HTTPClient) CreateDocument(ctx context.Context, title, content string) (*models.Document, error) {
	var d models.Document
	body := models.DocumentInput{Title: title, Content: content}
	if err := c.do(ctx, http.MethodPost, "/user/documents", true, body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateDocument sends only the non-nil fields.
func (c *HTTPClient) UpdateDocument(ctx context.Context, id string, title, content *string) (*models.Document, error) {
	body := map[string]string{}
	if title != nil {
		body["title"] = *title
	}
	if content != nil {
		body["content"] = *content
	}

	var d models.Document
	if err := c.do(ctx, http.MethodPut, "/user/documents/"+url.PathEscape(id), true, body, &d); err != nil {
		return nil, err
	}
	return &d, nil
}

func (c *HTTPClient) DeleteDocument(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/user/documents/"+url.PathEscape(id), true, nil, nil)
}

func (c *HTTPClient) GetProfile(ctx context.Context) (*models.PublicUser, error) {
	var u models.PublicUser
	if err := c.do(ctx, http.MethodGet, "/user/profile", true, nil, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// UpdateProfile sends fields as given, so the server's rules on allowed
// members apply unchanged.
func (c *HTTPClient) UpdateProfile(ctx context.Context, fields map[string]any) (*models.PublicUser, error) {
	var u models.PublicUser
	if err := c.do(ctx, http.MethodPut, "/user/profile", true, fields, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

// DeleteProfile removes the account and forgets the token.
func (c *HTTPClient) DeleteProfile(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/user/profile", true, nil, nil); err != nil {
		return err
	}
	c.accessToken = ""
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, authed bool, in, out any) error {
	if authed && c.accessToken == "" {
		return ErrNotLoggedIn
	}

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
	if authed {
		req.Header.Set(common.AuthorizationHeaderName, common.BearerScheme+" "+c.accessToken)
	}

	return c.send(req, out)
}

func (c *HTTPClient) send(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Detail string `json:"detail"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&e)
		if e.Detail == "" {
			e.Detail = http.StatusText(resp.StatusCode)
		}
		return &APIError{Status: resp.StatusCode, Detail: e.Detail}
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
