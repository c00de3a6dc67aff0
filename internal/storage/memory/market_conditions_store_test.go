package memory

import (
	"context"
	"errors"
	"testing"

	"portfolio-note-lab/internal/domain"
	"portfolio-note-lab/internal/storage"
)

func TestMarketConditionsStore_UpsertBulkAndGetAll(t *testing.T) {
	store := NewMarketConditionsStore()
	ctx := context.Background()

	records := []*domain.YearlyMarketRecord{
		{Year: 1990, EquityReturn: -0.03, RiskFreeRate: 0.08},
		{Year: 1980, EquityReturn: 0.25, RiskFreeRate: 0.11},
	}
	if err := store.UpsertBulk(ctx, records); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}

	got, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(got) != 2 || got[0].Year != 1980 || got[1].Year != 1990 {
		t.Errorf("expected records ordered by year, got %+v", got)
	}
}

func TestMarketConditionsStore_UpsertReplaces(t *testing.T) {
	store := NewMarketConditionsStore()
	ctx := context.Background()

	if err := store.UpsertBulk(ctx, []*domain.YearlyMarketRecord{{Year: 1980, EquityReturn: 0.25}}); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}
	if err := store.UpsertBulk(ctx, []*domain.YearlyMarketRecord{{Year: 1980, EquityReturn: 0.30}}); err != nil {
		t.Fatalf("repeated UpsertBulk must succeed: %v", err)
	}

	got, _ := store.GetAll(ctx)
	if len(got) != 1 || got[0].EquityReturn != 0.30 {
		t.Errorf("expected replacement, got %+v", got)
	}
}

func TestMarketConditionsStore_InvalidInput(t *testing.T) {
	store := NewMarketConditionsStore()

	err := store.UpsertBulk(context.Background(), []*domain.YearlyMarketRecord{{Year: 0}})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestNoteParameterStore_UpsertBulkAndGetAll(t *testing.T) {
	store := NewNoteParameterStore()
	ctx := context.Background()

	params := []*domain.NoteParameters{
		{Year: 1980, ProtectionLevel: 0.20, ParticipationRate: 0.95, NoteType: domain.NoteTypeBuffered},
		{Year: 1980, ProtectionLevel: 0.10, ParticipationRate: 1.15, NoteType: domain.NoteTypeBuffered},
	}
	if err := store.UpsertBulk(ctx, params); err != nil {
		t.Fatalf("UpsertBulk failed: %v", err)
	}

	got, err := store.GetAll(ctx)
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if len(got) != 2 || got[0].ProtectionLevel != 0.10 {
		t.Errorf("expected rows ordered by protection within year, got %+v", got)
	}
}

func TestNoteParameterStore_RejectsUnknownNoteType(t *testing.T) {
	store := NewNoteParameterStore()

	err := store.UpsertBulk(context.Background(), []*domain.NoteParameters{
		{Year: 1980, ProtectionLevel: 0.10, NoteType: "capped"},
	})
	if !errors.Is(err, storage.ErrInvalidInput) {
		t.Errorf("Expected ErrInvalidInput, got %v", err)
	}
}

func TestParameterFileStore_SaveAndGetLatest(t *testing.T) {
	store := NewParameterFileStore()
	ctx := context.Background()

	if _, err := store.GetLatest(ctx); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("Expected ErrNotFound on empty store, got %v", err)
	}

	first := &domain.ParameterFileSnapshot{Name: "params.yaml", Content: "a: 1"}
	if err := store.Save(ctx, first); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second := &domain.ParameterFileSnapshot{Name: "params.yaml", Content: "a: 2"}
	if err := store.Save(ctx, second); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	latest, err := store.GetLatest(ctx)
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if latest.Content != "a: 2" {
		t.Errorf("expected latest snapshot, got %q", latest.Content)
	}
	if latest.ID <= first.ID {
		t.Errorf("expected monotonically increasing IDs, got %d then %d", first.ID, latest.ID)
	}
}
