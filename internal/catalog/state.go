package catalog

import (
	"errors"
	"slices"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/terra-clan/box-office/internal/models"
)

// ErrLoadFailed wraps any failure to obtain the movie records
var ErrLoadFailed = errors.New("failed to load movies")

// State is one loaded copy of the catalog. It is never modified after
// creation; a reload produces a new State.
type State struct {
	ID       string
	Source   string
	LoadedAt time.Time
	Err      error

	records []models.MovieRecord
}

// NewState creates a loaded state owning a copy of records
func NewState(source string, records []models.MovieRecord) *State {
	return &State{
		ID:       uuid.New().String(),
		Source:   source,
		LoadedAt: time.Now().UTC(),
		records:  slices.Clone(records),
	}
}

// FailedState creates an empty state that remembers why loading failed
func FailedState(source string, err error) *State {
	return &State{
		ID:       uuid.New().String(),
		Source:   source,
		LoadedAt: time.Now().UTC(),
		Err:      err,
	}
}

// Loaded reports whether the records were obtained
func (s *State) Loaded() bool {
	return s != nil && s.Err == nil
}

// Records returns the records in ingestion order. Callers must not modify them.
func (s *State) Records() []models.MovieRecord {
	if s == nil {
		return nil
	}
	return s.records
}

// Len returns the number of records
func (s *State) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Summary describes the state for status endpoints
type Summary struct {
	ID       string    `json:"id"`
	Source   string    `json:"source"`
	Loaded   bool      `json:"loaded"`
	Error    string    `json:"error,omitempty"`
	Count    int       `json:"count"`
	LoadedAt time.Time `json:"loaded_at"`
}

// Summary returns a serializable description of the state
func (s *State) Summary() Summary {
	if s == nil {
		return Summary{}
	}
	sum := Summary{
		ID:       s.ID,
		Source:   s.Source,
		Loaded:   s.Loaded(),
		Count:    s.Len(),
		LoadedAt: s.LoadedAt,
	}
	if s.Err != nil {
		sum.Error = s.Err.Error()
	}
	return sum
}

// Store holds the current state and lets a reload replace it atomically
type Store struct {
	current atomic.Pointer[State]
}

// NewStore creates a store holding initial
func NewStore(initial *State) *Store {
	s := &Store{}
	s.current.Store(initial)
	return s
}

// Current returns the state in use
func (s *Store) Current() *State {
	return s.current.Load()
}

// Swap installs next and returns the previous state
func (s *Store) Swap(next *State) *State {
	return s.current.Swap(next)
}

// View computes a category view over the current state
func (e *Engine) View(state *State, category Category) (*View, error) {
	return e.Compute(state.Records(), category)
}
