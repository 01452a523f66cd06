package sources

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/terra-clan/box-office/internal/models"
)

// FileSource reads the dataset from a local JSON or YAML file
type FileSource struct {
	BaseSource
	path   string
	format Format
}

// NewFileSource creates a file source; the format follows the extension
func NewFileSource(path string) (*FileSource, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	return &FileSource{
		BaseSource: BaseSource{sourceType: "file"},
		path:       path,
		format:     format,
	}, nil
}

// Path returns the dataset file path
func (s *FileSource) Path() string {
	return s.path
}

// Fetch reads and decodes the whole file
func (s *FileSource) Fetch(ctx context.Context) ([]models.MovieRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, s.path)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	records, err := Decode(data, s.format)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", s.path, err)
	}

	slog.Debug("dataset file read", "path", s.path, "format", s.format, "records", len(records))
	return records, nil
}

// HealthCheck verifies the file is still there
func (s *FileSource) HealthCheck(ctx context.Context) error {
	if _, err := os.Stat(s.path); err != nil {
		return fmt.Errorf("dataset file unavailable: %w", err)
	}
	return nil
}
