package sources

import (
	"context"
	"errors"

	"github.com/terra-clan/box-office/internal/models"
)

// Common errors
var (
	ErrUnexpectedStatus  = errors.New("unexpected response status")
	ErrEmptyPayload      = errors.New("empty movie payload")
	ErrUnsupportedFormat = errors.New("unsupported dataset format")
	ErrNotFound          = errors.New("dataset not found")
	ErrPayloadTooLarge   = errors.New("dataset payload too large")
)

// Source delivers the full list of movie records in one read
type Source interface {
	// Fetch reads every record, in the order the source stores them
	Fetch(ctx context.Context) ([]models.MovieRecord, error)

	// Type returns the source type name
	Type() string

	// HealthCheck checks if the source is reachable
	HealthCheck(ctx context.Context) error
}

// BaseSource provides common functionality for sources
type BaseSource struct {
	sourceType string
}

// Type returns the source type
func (s *BaseSource) Type() string {
	return s.sourceType
}
