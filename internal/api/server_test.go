package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/box-office/internal/catalog"
	"github.com/terra-clan/box-office/internal/config"
	"github.com/terra-clan/box-office/internal/health"
	"github.com/terra-clan/box-office/internal/models"
	"github.com/terra-clan/box-office/internal/render"
	"github.com/terra-clan/box-office/internal/sources"
)

type fakeSource struct {
	err error
}

func (f *fakeSource) Fetch(ctx context.Context) ([]models.MovieRecord, error) { return nil, f.err }
func (f *fakeSource) Type() string                                           { return "fake" }
func (f *fakeSource) HealthCheck(ctx context.Context) error                  { return f.err }

func testRecords() []models.MovieRecord {
	return []models.MovieRecord{
		{Name: "Titanic", ReleaseYear: "1997", Cost: "US$ 200 milhões", BoxOffice: "US$ 2,26 bilhões", Tags: []string{"aclamado"}},
		{Name: "Waterworld", ReleaseYear: "1995", Cost: "US$ 175 milhões", BoxOffice: "US$ 264 milhões", Tags: []string{"prejuizo_notorio"}},
		{Name: "Cutthroat Island", ReleaseYear: "1995", Cost: "US$ 98 milhões", BoxOffice: "US$ 10 milhões", Tags: []string{"prejuizo_notorio"}},
		{Name: "Avatar", ReleaseYear: "2009", Cost: "US$ 237 milhões", BoxOffice: "US$ 2,9 bilhões"},
		{Name: "Sem Dados", Cost: "?", BoxOffice: "n/d"},
	}
}

func newTestServer(t *testing.T, state *catalog.State, source sources.Source) (*Server, *catalog.Store) {
	t.Helper()

	renderer, err := render.NewHTMLRenderer()
	require.NoError(t, err)

	registry := sources.NewRegistry()
	if source != nil {
		registry.Register(source.Type(), source)
	}

	store := catalog.NewStore(state)
	srv := NewServer(
		config.ServerConfig{Host: "127.0.0.1", Port: 8080},
		store,
		catalog.NewEngine(catalog.EngineOptions{}),
		renderer,
		health.NewMonitor(registry, time.Hour),
		catalog.Profitable,
	)
	return srv, store
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *apiError       `json:"error"`
}

func doGet(t *testing.T, srv *Server, path string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	var env envelope
	if strings.HasPrefix(rec.Header().Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	}
	return rec, env
}

type viewBody struct {
	Category string `json:"category"`
	Label    string `json:"label"`
	Total    int    `json:"total"`
	Movies   []struct {
		Name        string   `json:"name"`
		Profit      string   `json:"profit"`
		Loss        string   `json:"loss"`
		Unparseable []string `json:"unparseable"`
	} `json:"movies"`
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t, catalog.NewState("fake", nil), nil)

	rec, env := doGet(t, srv, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)
}

func TestReady(t *testing.T) {
	srv, _ := newTestServer(t, catalog.NewState("fake", testRecords()), &fakeSource{})
	rec, env := doGet(t, srv, "/ready")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	failed := catalog.FailedState("fake", catalog.ErrLoadFailed)
	srv, _ = newTestServer(t, failed, &fakeSource{})
	rec, env = doGet(t, srv, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "not_ready", env.Error.Code)

	srv, _ = newTestServer(t, catalog.NewState("fake", testRecords()), &fakeSource{err: errors.New("down")})
	rec, _ = doGet(t, srv, "/ready")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestListCategories(t *testing.T) {
	srv, _ := newTestServer(t, catalog.NewState("fake", testRecords()), nil)

	rec, env := doGet(t, srv, "/api/v1/categories")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Categories []CategoryInfo `json:"categories"`
		Total      int            `json:"total"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &body))
	assert.Equal(t, len(catalog.Categories()), body.Total)

	defaults := 0
	for _, c := range body.Categories {
		assert.Equal(t, c.Slug.Label(), c.Label)
		if c.Default {
			defaults++
			assert.Equal(t, catalog.Profitable, c.Slug)
		}
	}
	assert.Equal(t, 1, defaults)
}

func TestListMoviesDefaultsToProfitable(t *testing.T) {
	srv, _ := newTestServer(t, catalog.NewState("fake", testRecords()), nil)

	rec, env := doGet(t, srv, "/api/v1/movies")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(stateHeader))

	var view viewBody
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Equal(t, "profitable", view.Category)
	require.Equal(t, 3, view.Total)
	assert.Equal(t, "Avatar", view.Movies[0].Name)
	assert.Equal(t, "Titanic", view.Movies[1].Name)
	assert.Equal(t, "Waterworld", view.Movies[2].Name)
	assert.Equal(t, "2663000000", view.Movies[0].Profit)
}

func TestCategoryMovies(t *testing.T) {
	srv, _ := newTestServer(t, catalog.NewState("fake", testRecords()), nil)

	rec, env := doGet(t, srv, "/api/v1/categories/unprofitable/movies")
	require.Equal(t, http.StatusOK, rec.Code)

	var view viewBody
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view.Movies, 2)
	assert.Equal(t, "Cutthroat Island", view.Movies[0].Name)
	assert.Equal(t, "-88000000", view.Movies[0].Loss)
	assert.Equal(t, "Waterworld", view.Movies[1].Name)

	rec, env = doGet(t, srv, "/api/v1/movies?category=top-grossing")
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(env.Data, &view))
	require.Len(t, view.Movies, 5)
	assert.Equal(t, "Sem Dados", view.Movies[4].Name)
	assert.Equal(t, []string{"boxOffice"}, view.Movies[4].Unparseable)
}

func TestUnknownCategory(t *testing.T) {
	srv, _ := newTestServer(t, catalog.NewState("fake", testRecords()), nil)

	for _, path := range []string{"/api/v1/movies?category=cult", "/api/v1/categories/cult/movies"} {
		rec, env := doGet(t, srv, path)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		require.NotNil(t, env.Error, path)
		assert.Equal(t, "invalid_category", env.Error.Code, path)
		assert.False(t, env.Success, path)
	}

	rec, _ := doGet(t, srv, "/categories/cult")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetState(t *testing.T) {
	state := catalog.FailedState("http", errors.New("failed to load movies: boom"))
	srv, _ := newTestServer(t, state, nil)

	rec, env := doGet(t, srv, "/api/v1/state")
	require.Equal(t, http.StatusOK, rec.Code)

	var sum catalog.Summary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.Equal(t, state.ID, sum.ID)
	assert.False(t, sum.Loaded)
	assert.Equal(t, "http", sum.Source)
	assert.Contains(t, sum.Error, "boom")
	assert.Zero(t, sum.Count)
}

func TestFailedLoadShowsEmptyViews(t *testing.T) {
	srv, _ := newTestServer(t, catalog.FailedState("file", catalog.ErrLoadFailed), nil)

	rec, env := doGet(t, srv, "/api/v1/categories/all/movies")
	require.Equal(t, http.StatusOK, rec.Code)

	var view viewBody
	require.NoError(t, json.Unmarshal(env.Data, &view))
	assert.Zero(t, view.Total)

	rec, _ = doGet(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), render.EmptyMessage)
}

func TestIndexPage(t *testing.T) {
	srv, _ := newTestServer(t, catalog.NewState("fake", testRecords()), nil)

	rec, _ := doGet(t, srv, "/")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))

	body := rec.Body.String()
	assert.Contains(t, body, "<h2>Avatar (2009)</h2>")
	assert.Contains(t, body, "Lucro: US$ 2,66 bilhões")
	assert.Less(t, strings.Index(body, "Avatar (2009)"), strings.Index(body, "Titanic (1997)"))

	rec, _ = doGet(t, srv, "/categories/unprofitable")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Prejuízo: US$ 88,0 milhões")
	assert.Contains(t, rec.Body.String(), `class="active">Maiores Prejuízos</a>`)
}

func TestRequestsSeeLatestState(t *testing.T) {
	srv, store := newTestServer(t, catalog.NewState("fake", testRecords()), nil)
	first := store.Current()

	store.Swap(catalog.NewState("fake", testRecords()[:1]))

	rec, env := doGet(t, srv, "/api/v1/state")
	require.Equal(t, http.StatusOK, rec.Code)
	var sum catalog.Summary
	require.NoError(t, json.Unmarshal(env.Data, &sum))
	assert.NotEqual(t, first.ID, sum.ID)
	assert.Equal(t, 1, sum.Count)
}

func dialWS(t *testing.T, srv *Server) (*websocket.Conn, func()) {
	t.Helper()
	ts := httptest.NewServer(srv.Router())
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil && resp.Body != nil {
		io.Copy(io.Discard, resp.Body)
	}
	return conn, func() {
		conn.Close()
		ts.Close()
	}
}

func readMessage(t *testing.T, conn *websocket.Conn) PageMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg PageMessage
	require.NoError(t, conn.ReadJSON(&msg))
	return msg
}

func TestPageSession(t *testing.T) {
	srv, store := newTestServer(t, catalog.NewState("fake", testRecords()), nil)
	pinned := store.Current()

	conn, closeAll := dialWS(t, srv)
	defer closeAll()

	msg := readMessage(t, conn)
	assert.Equal(t, MessageConnected, msg.Type)
	require.NotNil(t, msg.State)
	assert.Equal(t, pinned.ID, msg.State.ID)

	msg = readMessage(t, conn)
	assert.Equal(t, MessageView, msg.Type)
	assert.Equal(t, catalog.Profitable, msg.Category)
	require.NotNil(t, msg.Page)
	assert.Len(t, msg.Page.Cards, 3)

	// A reload does not change what the open session sees
	store.Swap(catalog.NewState("fake", nil))

	require.NoError(t, conn.WriteJSON(PageMessage{Type: MessageSelect, Category: catalog.TopGrossing}))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageView, msg.Type)
	assert.Equal(t, catalog.TopGrossing, msg.Category)
	require.NotNil(t, msg.Page)
	assert.Len(t, msg.Page.Cards, 5)

	require.NoError(t, conn.WriteJSON(PageMessage{Type: MessageSelect, Category: "cult"}))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
	assert.Contains(t, msg.Message, "unknown category")

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)

	require.NoError(t, conn.WriteJSON(PageMessage{Type: "resize"}))
	msg = readMessage(t, conn)
	assert.Equal(t, MessageError, msg.Type)
}
