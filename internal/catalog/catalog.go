package catalog

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/schemebot/schemebot/internal/models"
)

// Store loads raw scheme records from a static source.
type Store interface {
	LoadSchemes(ctx context.Context) ([]models.Scheme, error)
}

// Opts holds configuration for catalog store construction.
type Opts struct {
	// DSN is a database connection string (postgres:// URL or SQLite file path).
	DSN string
	// File is a path to a JSON catalog file.
	File string
}

// Option configures catalog store construction.
type Option func(*Opts)

// WithDSN sets the database DSN for SQL-backed stores.
func WithDSN(dsn string) Option {
	return func(o *Opts) { o.DSN = dsn }
}

// WithFile sets the JSON catalog file path.
func WithFile(path string) Option {
	return func(o *Opts) { o.File = path }
}

// NewStore builds a catalog store from options. A JSON file path takes
// precedence; otherwise the DSN decides the backend (postgres:// URLs go to
// Postgres, anything else is treated as an SQLite file path).
func NewStore(opts ...Option) (Store, error) {
	var cfg Opts
	for _, opt := range opts {
		opt(&cfg)
	}

	switch {
	case cfg.File != "":
		slog.Debug("catalog.NewStore: using JSON file store", "file", cfg.File)
		return NewFileStore(cfg.File), nil
	case strings.HasPrefix(cfg.DSN, "postgres://") || strings.HasPrefix(cfg.DSN, "postgresql://"):
		slog.Debug("catalog.NewStore: using Postgres store")
		return NewPostgresStore(opts...)
	case cfg.DSN != "":
		slog.Debug("catalog.NewStore: using SQLite store", "dsn", cfg.DSN)
		return NewSQLiteStore(opts...)
	default:
		return nil, fmt.Errorf("catalog source not configured: set a schemes file or DSN")
	}
}

// Catalog is the immutable, preprocessed scheme catalog shared across
// sessions. It is loaded once at service start and is safe for concurrent
// reads.
type Catalog struct {
	schemes []models.Scheme
	byID    map[string]models.Scheme
}

// Load reads all schemes from the store and derives eligibility criteria.
// A load failure degrades to an empty catalog so recommendation requests
// answer "no matches" instead of crashing.
func Load(ctx context.Context, st Store) *Catalog {
	schemes, err := st.LoadSchemes(ctx)
	if err != nil {
		slog.Error("Catalog.Load: failed to load schemes, continuing with empty catalog", "error", err)
		schemes = nil
	}
	Preprocess(schemes)

	byID := make(map[string]models.Scheme, len(schemes))
	for _, s := range schemes {
		if s.ID != "" {
			byID[s.ID] = s
		}
	}

	slog.Info("Catalog.Load: catalog ready", "schemes", len(schemes))
	return &Catalog{schemes: schemes, byID: byID}
}

// Schemes returns the preprocessed schemes in catalog order. Callers must
// not mutate the returned slice.
func (c *Catalog) Schemes() []models.Scheme {
	return c.schemes
}

// SchemeByID looks up a scheme by its identifier.
func (c *Catalog) SchemeByID(id string) (models.Scheme, bool) {
	s, ok := c.byID[id]
	return s, ok
}

// Len reports the number of schemes in the catalog.
func (c *Catalog) Len() int {
	return len(c.schemes)
}
