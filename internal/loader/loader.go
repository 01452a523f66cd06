// Package loader performs the one-shot catalog load and optional file-triggered reloads.
package loader

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/terra-clan/box-office/internal/catalog"
	"github.com/terra-clan/box-office/internal/sources"
)

// DefaultTimeout bounds a load when none is configured
const DefaultTimeout = 30 * time.Second

// Loader reads the full dataset from a source into a catalog.State
type Loader struct {
	source  sources.Source
	timeout time.Duration
}

// NewLoader creates a new loader
func NewLoader(source sources.Source, timeout time.Duration) *Loader {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Loader{
		source:  source,
		timeout: timeout,
	}
}

// Load fetches every record once. It never returns nil: on failure the
// state is empty and carries an error wrapping catalog.ErrLoadFailed.
func (l *Loader) Load(ctx context.Context) *catalog.State {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	start := time.Now()
	records, err := l.source.Fetch(ctx)
	if err != nil {
		err = fmt.Errorf("%w: %s source: %w", catalog.ErrLoadFailed, l.source.Type(), err)
		slog.Error("catalog load failed",
			"source", l.source.Type(),
			"duration", time.Since(start),
			"error", err,
		)
		return catalog.FailedState(l.source.Type(), err)
	}

	state := catalog.NewState(l.source.Type(), records)
	slog.Info("catalog loaded",
		"source", l.source.Type(),
		"state_id", state.ID,
		"records", state.Len(),
		"duration", time.Since(start),
	)
	return state
}
