package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/box-office/internal/catalog"
	"github.com/terra-clan/box-office/internal/models"
	"github.com/terra-clan/box-office/internal/sources"
)

type stubSource struct {
	records []models.MovieRecord
	err     error
	block   bool
}

func (s *stubSource) Type() string { return "stub" }

func (s *stubSource) Fetch(ctx context.Context) ([]models.MovieRecord, error) {
	if s.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return s.records, s.err
}

func (s *stubSource) HealthCheck(ctx context.Context) error { return s.err }

func TestLoadSuccess(t *testing.T) {
	src := &stubSource{records: []models.MovieRecord{{Name: "Titanic"}, {Name: "Rocky"}}}

	state := NewLoader(src, time.Second).Load(context.Background())

	require.True(t, state.Loaded())
	assert.Equal(t, "stub", state.Source)
	assert.Equal(t, 2, state.Len())
	assert.NotEmpty(t, state.ID)
}

func TestLoadFailureIsEmptyState(t *testing.T) {
	cause := errors.New("connection refused")
	src := &stubSource{err: cause}

	state := NewLoader(src, time.Second).Load(context.Background())

	require.False(t, state.Loaded())
	assert.Zero(t, state.Len())
	assert.ErrorIs(t, state.Err, catalog.ErrLoadFailed)
	assert.ErrorIs(t, state.Err, cause)
}

func TestLoadTimeout(t *testing.T) {
	src := &stubSource{block: true}

	state := NewLoader(src, 20*time.Millisecond).Load(context.Background())

	require.False(t, state.Loaded())
	assert.ErrorIs(t, state.Err, context.DeadlineExceeded)
}

const oneMovie = `[{"name": "Titanic", "cost": "US$ 200 milhões", "boxOffice": "US$ 2,26 bilhões"}]`

const twoMovies = `[
	{"name": "Titanic", "cost": "US$ 200 milhões", "boxOffice": "US$ 2,26 bilhões"},
	{"name": "Rocky", "cost": "US$ 1 milhão", "boxOffice": "US$ 225 milhões"}
]`

func newFileLoader(t *testing.T, content string) (*Loader, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "informacoes.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	src, err := sources.NewFileSource(path)
	require.NoError(t, err)
	return NewLoader(src, time.Second), path
}

func TestReloadKeepsPreviousStateOnFailure(t *testing.T) {
	l, path := newFileLoader(t, oneMovie)
	store := catalog.NewStore(l.Load(context.Background()))
	first := store.Current()
	w := NewWatcher(l, store, path, 10*time.Millisecond)

	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	assert.False(t, w.Reload(context.Background()))
	assert.Same(t, first, store.Current())

	require.NoError(t, os.WriteFile(path, []byte(twoMovies), 0o644))
	assert.True(t, w.Reload(context.Background()))
	assert.Equal(t, 2, store.Current().Len())
	assert.NotEqual(t, first.ID, store.Current().ID)
}

func TestWatcherReloadsOnWrite(t *testing.T) {
	l, path := newFileLoader(t, oneMovie)
	store := catalog.NewStore(l.Load(context.Background()))

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWatcher(l, store, path, 20*time.Millisecond)
	require.NoError(t, w.Start(ctx))

	require.NoError(t, os.WriteFile(path, []byte(twoMovies), 0o644))

	assert.Eventually(t, func() bool {
		return store.Current().Len() == 2
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	w.Wait()
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	l, path := newFileLoader(t, oneMovie)
	store := catalog.NewStore(l.Load(context.Background()))
	first := store.Current()

	ctx, cancel := context.WithCancel(context.Background())
	w := NewWatcher(l, store, path, 10*time.Millisecond)
	require.NoError(t, w.Start(ctx))

	other := filepath.Join(filepath.Dir(path), "notes.json")
	require.NoError(t, os.WriteFile(other, []byte(twoMovies), 0o644))

	time.Sleep(100 * time.Millisecond)
	assert.Same(t, first, store.Current())

	cancel()
	w.Wait()
}

func TestShippedDataset(t *testing.T) {
	src, err := sources.NewFileSource(filepath.Join("..", "..", "data", "informacoes.json"))
	require.NoError(t, err)

	state := NewLoader(src, time.Second).Load(context.Background())
	require.True(t, state.Loaded(), "%v", state.Err)
	assert.Equal(t, 10, state.Len())

	engine := catalog.NewEngine(catalog.EngineOptions{})
	for _, c := range catalog.Categories() {
		view, err := engine.View(state, c)
		require.NoError(t, err)
		assert.Zero(t, view.UnparseableCount(), c)
	}

	top, err := engine.View(state, catalog.TopGrossing)
	require.NoError(t, err)
	assert.Equal(t, "Avatar", top.Movies[0].Name)

	losses, err := engine.View(state, catalog.Unprofitable)
	require.NoError(t, err)
	assert.Equal(t, "A Ilha da Garganta Cortada", losses.Movies[0].Name)
}
