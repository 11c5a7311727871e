package memory

import (
	"context"
	"maps"
	"sync"

	"github.com/riskibarqy/nhl-pickem/internal/domain/outcome"
)

type OutcomeRepository struct {
	mu    sync.RWMutex
	items map[string]outcome.Record
}

func NewOutcomeRepository() *OutcomeRepository {
	return &OutcomeRepository{items: make(map[string]outcome.Record)}
}

func (r *OutcomeRepository) Get(_ context.Context, gameID string) (outcome.Record, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	record, ok := r.items[gameID]
	if !ok {
		return outcome.Record{}, false, nil
	}
	return cloneRecord(record), true, nil
}

// Upsert replaces the winner and merges metadata keys into the stored record.
func (r *OutcomeRepository) Upsert(_ context.Context, record outcome.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	next := cloneRecord(record)
	if current, ok := r.items[record.GameID]; ok {
		merged := maps.Clone(current.Metadata)
		if merged == nil {
			merged = make(map[string]string, len(record.Metadata))
		}
		maps.Copy(merged, record.Metadata)
		next.Metadata = merged
	}
	r.items[record.GameID] = next
	return nil
}

func cloneRecord(record outcome.Record) outcome.Record {
	copied := record
	if record.Winner != nil {
		winner := *record.Winner
		copied.Winner = &winner
	}
	copied.Metadata = maps.Clone(record.Metadata)
	return copied
}
