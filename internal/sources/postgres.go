package sources

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/lib/pq"

	"github.com/terra-clan/box-office/internal/models"
)

const selectMoviesSQL = `
	SELECT name, release_year, description, cost, box_office, tags, poster_image, reference_link
	FROM movies
	ORDER BY position, id
`

// PostgresSource reads the dataset from the movies table
type PostgresSource struct {
	BaseSource
	db *sql.DB
}

// NewPostgresSource opens the database and checks connectivity
func NewPostgresSource(ctx context.Context, dsn string) (*PostgresSource, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping postgres: %w", err)
	}

	return newPostgresSource(db), nil
}

func newPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{
		BaseSource: BaseSource{sourceType: "postgres"},
		db:         db,
	}
}

// Fetch selects every movie in catalog order
func (s *PostgresSource) Fetch(ctx context.Context) ([]models.MovieRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectMoviesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query movies: %w", err)
	}
	defer rows.Close()

	var records []models.MovieRecord
	for rows.Next() {
		var m models.MovieRecord
		var releaseYear, description, poster, link sql.NullString
		var tags []string

		if err := rows.Scan(
			&m.Name,
			&releaseYear,
			&description,
			&m.Cost,
			&m.BoxOffice,
			pq.Array(&tags),
			&poster,
			&link,
		); err != nil {
			return nil, fmt.Errorf("failed to scan movie: %w", err)
		}

		m.ReleaseYear = models.ReleaseYear(releaseYear.String)
		m.Description = description.String
		m.PosterImage = poster.String
		m.ReferenceLink = link.String
		if len(tags) > 0 {
			m.Tags = tags
		}

		records = append(records, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate movies: %w", err)
	}

	slog.Debug("dataset read from postgres", "records", len(records))
	return records, nil
}

// HealthCheck verifies PostgreSQL connectivity
func (s *PostgresSource) HealthCheck(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database handle
func (s *PostgresSource) Close() error {
	return s.db.Close()
}
