package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/terra-clan/box-office/internal/models"
)

var seedRecords = []models.MovieRecord{
	{
		Name:        "Titanic",
		ReleaseYear: "1997",
		Cost:        "US$ 200 milhões",
		BoxOffice:   "US$ 2,26 bilhões",
		Tags:        []string{"aclamado"},
	},
	{
		Name:      "Rocky",
		Cost:      "US$ 1 milhão",
		BoxOffice: "US$ 225 milhões",
	},
}

func newMockRepository(t *testing.T) (*PostgresRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return newPostgresRepository(mock), mock
}

func TestReplaceMoviesStoresDatasetOrder(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM movies").WillReturnResult(pgxmock.NewResult("DELETE", 7))
	mock.ExpectExec("INSERT INTO movies").
		WithArgs(0, "Titanic", sql.NullString{String: "1997", Valid: true}, sql.NullString{},
			"US$ 200 milhões", "US$ 2,26 bilhões", []string{"aclamado"}, sql.NullString{}, sql.NullString{}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO movies").
		WithArgs(1, "Rocky", sql.NullString{}, sql.NullString{},
			"US$ 1 milhão", "US$ 225 milhões", []string{}, sql.NullString{}, sql.NullString{}).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, repo.ReplaceMovies(context.Background(), seedRecords))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceMoviesRollsBackOnInsertError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM movies").WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectExec("INSERT INTO movies").
		WithArgs(0, "Titanic", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectExec("INSERT INTO movies").
		WithArgs(1, "Rocky", pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New("value too long for type character varying"))
	mock.ExpectRollback()

	err := repo.ReplaceMovies(context.Background(), seedRecords)
	require.Error(t, err)
	assert.ErrorContains(t, err, `failed to insert movie "Rocky"`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceMoviesRollsBackOnDeleteError(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM movies").WillReturnError(errors.New("permission denied"))
	mock.ExpectRollback()

	err := repo.ReplaceMovies(context.Background(), seedRecords)
	assert.ErrorContains(t, err, "failed to clear movies")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCountMovies(t *testing.T) {
	repo, mock := newMockRepository(t)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM movies")).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(10))

	count, err := repo.CountMovies(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 10, count)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func writeMigrations(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		"001_create_movies.sql": "CREATE TABLE movies (id SERIAL PRIMARY KEY);",
		"002_add_index.sql":     "CREATE INDEX idx_movies_name ON movies (name);",
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestRunMigrationsAppliesPending(t *testing.T) {
	dir := writeMigrations(t)
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectQuery("SELECT name FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"name"}).AddRow("001_create_movies.sql"))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE INDEX idx_movies_name ON movies (name);")).
		WillReturnResult(pgxmock.NewResult("CREATE INDEX", 0))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO schema_migrations (name) VALUES ($1)")).
		WithArgs("002_add_index.sql").
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	require.NoError(t, RunMigrations(context.Background(), mock, dir))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsRollsBackFailedMigration(t *testing.T) {
	dir := writeMigrations(t)
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnResult(pgxmock.NewResult("CREATE TABLE", 0))
	mock.ExpectQuery("SELECT name FROM schema_migrations").
		WillReturnRows(pgxmock.NewRows([]string{"name"}))
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("CREATE TABLE movies")).
		WillReturnError(errors.New(`relation "movies" already exists`))
	mock.ExpectRollback()

	err = RunMigrations(context.Background(), mock, dir)
	assert.ErrorContains(t, err, "failed to execute migration 001_create_movies.sql")
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRunMigrationsTableError(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS schema_migrations").
		WillReturnError(errors.New("connection refused"))

	err = RunMigrations(context.Background(), mock, t.TempDir())
	assert.ErrorContains(t, err, "failed to create migrations table")
}
