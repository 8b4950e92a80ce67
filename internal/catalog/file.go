package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/schemebot/schemebot/internal/models"
)

// FileStore reads the scheme catalog from a JSON file containing an array
// of scheme records.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by a JSON catalog file.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// LoadSchemes reads and decodes the catalog file.
func (s *FileStore) LoadSchemes(ctx context.Context) ([]models.Scheme, error) {
	slog.Debug("FileStore.LoadSchemes: reading catalog file", "path", s.path)

	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read schemes file %s: %w", s.path, err)
	}

	var schemes []models.Scheme
	if err := json.Unmarshal(data, &schemes); err != nil {
		return nil, fmt.Errorf("failed to parse schemes file %s: %w", s.path, err)
	}

	slog.Debug("FileStore.LoadSchemes: catalog file parsed", "schemes", len(schemes))
	return schemes, nil
}
