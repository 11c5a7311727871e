package memory

import (
	"context"
	"sync"

	"github.com/riskibarqy/nhl-pickem/internal/domain/profile"
)

type ProfileRepository struct {
	mu    sync.RWMutex
	items map[string]profile.Profile
}

func NewProfileRepository(seed ...profile.Profile) *ProfileRepository {
	items := make(map[string]profile.Profile, len(seed))
	for _, p := range seed {
		items[p.UserID] = p
	}
	return &ProfileRepository{items: items}
}

func (r *ProfileRepository) GetByUserID(_ context.Context, userID string) (profile.Profile, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[userID]
	return p, ok, nil
}

func (r *ProfileRepository) CreateIfAbsent(_ context.Context, p profile.Profile) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[p.UserID]; ok {
		return false, nil
	}
	r.items[p.UserID] = p
	return true, nil
}
