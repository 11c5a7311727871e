package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/riskibarqy/nhl-pickem/internal/domain/pick"
)

type PickRepository struct {
	mu    sync.RWMutex
	items map[string]pick.PickSet
}

func NewPickRepository() *PickRepository {
	return &PickRepository{items: make(map[string]pick.PickSet)}
}

func (r *PickRepository) Get(_ context.Context, weekID, userID string) (pick.PickSet, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set, ok := r.items[pick.Key(weekID, userID)]
	if !ok {
		return pick.PickSet{}, false, nil
	}
	return set.Clone(), true, nil
}

func (r *PickRepository) Upsert(_ context.Context, set pick.PickSet) error {
	if err := set.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	key := set.Key()
	current, ok := r.items[key]
	if !ok {
		current = pick.PickSet{WeekID: set.WeekID, UserID: set.UserID}
	}
	merged := current.Merge(set.Picks)
	merged.UpdatedAt = set.UpdatedAt
	r.items[key] = merged
	return nil
}

// ListByWeek returns sets ordered by user id.
func (r *PickRepository) ListByWeek(_ context.Context, weekID string) ([]pick.PickSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.PickSet, 0)
	for _, set := range r.items {
		if set.WeekID == weekID {
			out = append(out, set.Clone())
		}
	}
	sortPickSets(out)
	return out, nil
}

// ListAll returns sets ordered by week then user id.
func (r *PickRepository) ListAll(_ context.Context) ([]pick.PickSet, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]pick.PickSet, 0, len(r.items))
	for _, set := range r.items {
		out = append(out, set.Clone())
	}
	sortPickSets(out)
	return out, nil
}

func sortPickSets(sets []pick.PickSet) {
	sort.Slice(sets, func(i, j int) bool {
		if sets[i].WeekID != sets[j].WeekID {
			return sets[i].WeekID < sets[j].WeekID
		}
		return sets[i].UserID < sets[j].UserID
	})
}
