package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/terra-clan/box-office/internal/models"
)

// Repository defines the interface for catalog persistence
type Repository interface {
	// ReplaceMovies swaps the whole catalog for records, keeping their order
	ReplaceMovies(ctx context.Context, records []models.MovieRecord) error
	CountMovies(ctx context.Context) (int, error)
	Close() error
}

// DB is the part of *pgxpool.Pool used by the repository and the migrations
type DB interface {
	Begin(ctx context.Context) (pgx.Tx, error)
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Close()
}
