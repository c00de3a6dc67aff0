package postgres

import (
	"context"
	"fmt"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

// NoteParameterStore implements storage.NoteParameterStore using PostgreSQL.
type NoteParameterStore struct {
	pool *Pool
}

// NewNoteParameterStore creates a new NoteParameterStore.
func NewNoteParameterStore(pool *Pool) *NoteParameterStore {
	return &NoteParameterStore{pool: pool}
}

// Compile-time interface check.
var _ storage.NoteParameterStore = (*NoteParameterStore)(nil)

// UpsertBulk writes note parameters keyed by (year, protection_level).
func (s *NoteParameterStore) UpsertBulk(ctx context.Context, params []*domain.NoteParameters) error {
	if len(params) == 0 {
		return nil
	}
	for _, p := range params {
		if p == nil || p.Year <= 0 || !p.NoteType.Valid() {
			return storage.ErrInvalidInput
		}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `
		INSERT INTO note_parameters (year, protection_level, participation_rate, note_type)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (year, protection_level) DO UPDATE SET
			participation_rate = EXCLUDED.participation_rate,
			note_type = EXCLUDED.note_type
	`

	for _, p := range params {
		_, err := tx.Exec(ctx, query, p.Year, p.ProtectionLevel, p.ParticipationRate, string(p.NoteType))
		if err != nil {
			return fmt.Errorf("upsert note parameters: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetAll retrieves every row ordered by year, protection_level ASC.
func (s *NoteParameterStore) GetAll(ctx context.Context) ([]*domain.NoteParameters, error) {
	query := `
		SELECT year, protection_level, participation_rate, note_type
		FROM note_parameters
		ORDER BY year ASC, protection_level ASC
	`

	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("get all note parameters: %w", err)
	}
	defer rows.Close()

	var params []*domain.NoteParameters
	for rows.Next() {
		var p domain.NoteParameters
		var noteType string
		if err := rows.Scan(&p.Year, &p.ProtectionLevel, &p.ParticipationRate, &noteType); err != nil {
			return nil, fmt.Errorf("scan note parameters row: %w", err)
		}
		p.NoteType = domain.NoteType(noteType)
		params = append(params, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate note parameters rows: %w", err)
	}
	return params, nil
}
