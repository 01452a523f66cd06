package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Client is a Go SDK for the box-office API
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// Option configures the client
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout sets the client timeout
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new box-office client
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError is a failed call reported through the response envelope
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error %d: %s - %s", e.Status, e.Code, e.Message)
}

// IsInvalidCategory reports whether err is the server rejecting a category slug
func IsInvalidCategory(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == "invalid_category"
}

// Category is one selectable view
type Category struct {
	Slug    string `json:"slug"`
	Label   string `json:"label"`
	Default bool   `json:"default"`
}

// Movie is a movie as returned in a view
type Movie struct {
	Name          string           `json:"name"`
	ReleaseYear   string           `json:"releaseYear"`
	Description   string           `json:"description"`
	Cost          string           `json:"cost"`
	BoxOffice     string           `json:"boxOffice"`
	Tags          []string         `json:"tags,omitempty"`
	PosterImage   string           `json:"posterImage"`
	ReferenceLink string           `json:"referenceLink"`
	Profit        *decimal.Decimal `json:"profit,omitempty"`
	Loss          *decimal.Decimal `json:"loss,omitempty"`
	Unparseable   []string         `json:"unparseable,omitempty"`
}

// View is the ordered movie list of one category
type View struct {
	Category string  `json:"category"`
	Label    string  `json:"label"`
	Movies   []Movie `json:"movies"`
	Total    int     `json:"total"`
}

// State describes the catalog the server is serving
type State struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Loaded   bool      `json:"loaded"`
	Error    string    `json:"error,omitempty"`
	Count    int       `json:"count"`
	LoadedAt time.Time `json:"loaded_at"`
}

// ListCategories retrieves the available categories in display order
func (c *Client) ListCategories(ctx context.Context) ([]Category, error) {
	var data struct {
		Categories []Category `json:"categories"`
		Total      int        `json:"total"`
	}
	if err := c.get(ctx, "/api/v1/categories", &data); err != nil {
		return nil, err
	}
	return data.Categories, nil
}

// GetView retrieves the view of a category; an empty category asks for the server default
func (c *Client) GetView(ctx context.Context, category string) (*View, error) {
	path := "/api/v1/movies"
	if category != "" {
		path = "/api/v1/categories/" + url.PathEscape(category) + "/movies"
	}

	var view View
	if err := c.get(ctx, path, &view); err != nil {
		return nil, err
	}
	return &view, nil
}

// GetState retrieves the current catalog state summary
func (c *Client) GetState(ctx context.Context) (*State, error) {
	var state State
	if err := c.get(ctx, "/api/v1/state", &state); err != nil {
		return nil, err
	}
	return &state, nil
}

// Health checks if the service is healthy
func (c *Client) Health(ctx context.Context) error {
	return c.get(ctx, "/health", nil)
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *APIError       `json:"error"`
}

// get performs a GET and decodes the envelope data into out
func (c *Client) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		if resp.StatusCode >= 400 {
			return fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
		}
		return fmt.Errorf("failed to unmarshal response: %w", err)
	}

	if !env.Success || resp.StatusCode >= 400 {
		apiErr := env.Error
		if apiErr == nil {
			apiErr = &APIError{Code: "unknown", Message: http.StatusText(resp.StatusCode)}
		}
		apiErr.Status = resp.StatusCode
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("failed to unmarshal data: %w", err)
	}
	return nil
}
