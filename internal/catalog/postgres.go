package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	_ "embed"

	"github.com/schemebot/schemebot/internal/models"
	_ "github.com/lib/pq"
)

// Connection pool settings for the Postgres catalog store.
const (
	DefaultMaxOpenConns    = 25
	DefaultMaxIdleConns    = 5
	DefaultConnMaxLifetime = 5 * time.Minute
)

//go:embed migrations_postgres.sql
var postgresMigrations string

// PostgresStore reads the scheme catalog from a PostgreSQL database.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a new PostgreSQL catalog store with the given DSN.
func NewPostgresStore(opts ...Option) (*PostgresStore, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}
	slog.Debug("PostgresStore.NewPostgresStore invoked", "DSN_set", cfg.DSN != "")

	if cfg.DSN == "" {
		slog.Error("PostgresStore DSN not set")
		return nil, fmt.Errorf("database DSN not set")
	}

	db, err := sql.Open("postgres", cfg.DSN)
	if err != nil {
		slog.Error("PostgresStore: failed to open PostgreSQL connection", "error", err)
		return nil, fmt.Errorf("failed to open PostgreSQL connection: %w", err)
	}

	db.SetMaxOpenConns(DefaultMaxOpenConns)
	db.SetMaxIdleConns(DefaultMaxIdleConns)
	db.SetConnMaxLifetime(DefaultConnMaxLifetime)

	if err := db.Ping(); err != nil {
		slog.Error("PostgresStore: ping failed", "error", err)
		return nil, fmt.Errorf("failed to ping PostgreSQL: %w", err)
	}
	if _, err := db.Exec(postgresMigrations); err != nil {
		slog.Error("PostgresStore: failed to run migrations", "error", err)
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	slog.Debug("PostgresStore ready")
	return &PostgresStore{db: db}, nil
}

// LoadSchemes reads all scheme rows from the database.
func (s *PostgresStore) LoadSchemes(ctx context.Context) ([]models.Scheme, error) {
	rows, err := s.db.QueryContext(ctx, selectSchemesSQL)
	if err != nil {
		return nil, fmt.Errorf("failed to query schemes: %w", err)
	}
	defer rows.Close()

	return scanSchemes(rows)
}

// Close releases the database connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}
