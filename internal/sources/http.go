package sources

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/terra-clan/box-office/internal/models"
)

// maxPayloadBytes bounds the dataset body read from a remote source
const maxPayloadBytes = 16 << 20

// HTTPSource fetches the dataset with a single GET
type HTTPSource struct {
	BaseSource
	url        string
	httpClient *http.Client
	maxBytes   int64
}

// NewHTTPSource creates a new HTTP source
func NewHTTPSource(url string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &HTTPSource{
		BaseSource: BaseSource{sourceType: "http"},
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxPayloadBytes,
	}
}

// Fetch downloads and decodes the JSON array
func (s *HTTPSource) Fetch(ctx context.Context) ([]models.MovieRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch dataset: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > s.maxBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrPayloadTooLarge, s.maxBytes)
	}

	records, err := Decode(body, FormatJSON)
	if err != nil {
		return nil, err
	}

	slog.Debug("dataset downloaded", "url", s.url, "records", len(records), "bytes", len(body))
	return records, nil
}

// HealthCheck issues a HEAD request against the dataset URL
func (s *HTTPSource) HealthCheck(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.url, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dataset url unreachable: %w", err)
	}
	resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}
	return nil
}
