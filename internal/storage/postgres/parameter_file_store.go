package postgres

import (
	"context"
	"fmt"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

// ParameterFileStore implements storage.ParameterFileStore using PostgreSQL.
type ParameterFileStore struct {
	pool *Pool
}

// NewParameterFileStore creates a new ParameterFileStore.
func NewParameterFileStore(pool *Pool) *ParameterFileStore {
	return &ParameterFileStore{pool: pool}
}

// Compile-time interface check.
var _ storage.ParameterFileStore = (*ParameterFileStore)(nil)

// Save appends a snapshot of the raw parameter file and fills in its
// assigned ID and timestamp.
func (s *ParameterFileStore) Save(ctx context.Context, snapshot *domain.ParameterFileSnapshot) error {
	if snapshot == nil || snapshot.Content == "" {
		return storage.ErrInvalidInput
	}

	query := `
		INSERT INTO parameter_files (name, content)
		VALUES ($1, $2)
		RETURNING id, loaded_at
	`

	row := s.pool.QueryRow(ctx, query, snapshot.Name, snapshot.Content)
	if err := row.Scan(&snapshot.ID, &snapshot.LoadedAt); err != nil {
		return fmt.Errorf("save parameter file: %w", err)
	}
	return nil
}

// GetLatest retrieves the most recently saved snapshot.
func (s *ParameterFileStore) GetLatest(ctx context.Context) (*domain.ParameterFileSnapshot, error) {
	query := `
		SELECT id, name, content, loaded_at
		FROM parameter_files
		ORDER BY id DESC
		LIMIT 1
	`

	var snap domain.ParameterFileSnapshot
	row := s.pool.QueryRow(ctx, query)
	if err := row.Scan(&snap.ID, &snap.Name, &snap.Content, &snap.LoadedAt); err != nil {
		if isNotFoundError(err) {
			return nil, storage.ErrNotFound
		}
		return nil, fmt.Errorf("get latest parameter file: %w", err)
	}
	return &snap, nil
}
