package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vedantshetti/infyair-frontend/internal/client/models"
)

const defaultTimeout = 10 * time.Second

// Client is the concrete HTTP implementation of Authenticator and Catalog.
type Client struct {
	baseURL    string
	httpClient *http.Client

	mu        sync.RWMutex
	authToken string
}

// NewClient builds a client for the given base URL. A non-positive timeout
// falls back to the 10s default.
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// SetAuthToken sets the bearer token attached to subsequent requests.
// An empty token removes the Authorization header.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.authToken = token
	c.mu.Unlock()
}

// envelope is the backend's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body, err := json.Marshal(map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode login request: %w", err)
	}

	env, status, err := c.do(ctx, http.MethodPost, "/auth/login", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = http.StatusText(status)
		}
		return nil, fmt.Errorf("%w: %s", ErrAuthRejected, msg)
	}

	var result LoginResult
	if err := json.Unmarshal(env.Data, &result); err != nil {
		return nil, fmt.Errorf("failed to decode login response: %w", err)
	}
	return &result, nil
}

func (c *Client) Validate(ctx context.Context) (bool, error) {
	env, _, err := c.do(ctx, http.MethodGet, "/auth/validate", nil)
	if err != nil {
		return false, err
	}
	return env.Success, nil
}

func (c *Client) Products(ctx context.Context) ([]models.Product, error) {
	env, _, err := c.do(ctx, http.MethodGet, "/products", nil)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("failed to load products: %s", env.Error)
	}

	var products []models.Product
	if err := json.Unmarshal(env.Data, &products); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	return products, nil
}

func (c *Client) ProductByID(ctx context.Context, id string) (*models.Product, error) {
	env, status, err := c.do(ctx, http.MethodGet, "/products/"+id, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound {
		return nil, fmt.Errorf("%w: product %s", ErrNotFound, id)
	}
	if !env.Success {
		return nil, fmt.Errorf("failed to load product %s: %s", id, env.Error)
	}

	var product models.Product
	if err := json.Unmarshal(env.Data, &product); err != nil {
		return nil, fmt.Errorf("failed to decode product: %w", err)
	}
	return &product, nil
}

func (c *Client) Geography(ctx context.Context) ([]models.GeoRecord, error) {
	env, _, err := c.do(ctx, http.MethodGet, "/geography", nil)
	if err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, fmt.Errorf("failed to load geography: %s", env.Error)
	}

	var records []models.GeoRecord
	if err := json.Unmarshal(env.Data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode geography: %w", err)
	}
	return records, nil
}

// do performs a request and parses the response envelope. Non-2xx statuses
// are not errors here; the envelope (or the status) tells the caller what
// the server decided.
func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*envelope, int, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Request-Id", uuid.NewString())

	c.mu.RLock()
	token := c.authToken
	c.mu.RUnlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}

	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to decode response (status %d): %w", resp.StatusCode, err)
	}
	return &env, resp.StatusCode, nil
}
