package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/terra-clan/box-office/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db DB
}

// PostgresConfig holds PostgreSQL connection configuration
type PostgresConfig struct {
	DSN          string
	MaxOpenConns int32
	MaxIdleConns int32
	MaxLifetime  time.Duration
}

// NewPostgresRepository creates a new PostgreSQL repository
func NewPostgresRepository(ctx context.Context, cfg PostgresConfig) (*PostgresRepository, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to parse DSN: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		poolConfig.MaxConns = cfg.MaxOpenConns
	} else {
		poolConfig.MaxConns = 5
	}

	if cfg.MaxIdleConns > 0 {
		poolConfig.MinConns = cfg.MaxIdleConns
	}

	if cfg.MaxLifetime > 0 {
		poolConfig.MaxConnLifetime = cfg.MaxLifetime
	} else {
		poolConfig.MaxConnLifetime = 30 * time.Minute
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return newPostgresRepository(pool), nil
}

func newPostgresRepository(db DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Close closes the database connection pool
func (r *PostgresRepository) Close() error {
	r.db.Close()
	return nil
}

// ReplaceMovies deletes every movie and inserts records in one transaction.
// The slice index becomes the position column read back by the postgres source.
func (r *PostgresRepository) ReplaceMovies(ctx context.Context, records []models.MovieRecord) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := insertMovies(ctx, tx, records); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			slog.Warn("failed to roll back movies", "error", rbErr)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit movies: %w", err)
	}

	slog.Info("movies table replaced", "records", len(records))
	return nil
}

func insertMovies(ctx context.Context, tx pgx.Tx, records []models.MovieRecord) error {
	if _, err := tx.Exec(ctx, `DELETE FROM movies`); err != nil {
		return fmt.Errorf("failed to clear movies: %w", err)
	}

	for i, m := range records {
		if _, err := tx.Exec(ctx, insertMovieSQL, movieArgs(i, m)...); err != nil {
			return fmt.Errorf("failed to insert movie %q: %w", m.Name, err)
		}
	}
	return nil
}

// CountMovies returns the number of stored movies
func (r *PostgresRepository) CountMovies(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM movies`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count movies: %w", err)
	}
	return count, nil
}

const insertMovieSQL = `
	INSERT INTO movies (position, name, release_year, description, cost, box_office, tags, poster_image, reference_link)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`

func movieArgs(position int, m models.MovieRecord) []any {
	tags := m.Tags
	if tags == nil {
		tags = []string{}
	}
	return []any{
		position,
		m.Name,
		nullString(m.ReleaseYear.String()),
		nullString(m.Description),
		m.Cost,
		m.BoxOffice,
		tags,
		nullString(m.PosterImage),
		nullString(m.ReferenceLink),
	}
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
