package cache

import (
	"context"
	"time"

	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pickweek"
	"github.com/riskibarqy/nhl-pickem/internal/domain/profile"
	basecache "github.com/riskibarqy/nhl-pickem/internal/platform/cache"
)

const (
	profileKeyPrefix  = "profile:user:"
	scheduleKeyPrefix = "schedule:"
)

// ProfileRepository caches profile lookups, including misses. A created profile
// replaces its cached miss.
type ProfileRepository struct {
	next  profile.Repository
	cache *basecache.Store
}

var _ profile.Repository = (*ProfileRepository)(nil)

func NewProfileRepository(next profile.Repository, cache *basecache.Store) *ProfileRepository {
	return &ProfileRepository{next: next, cache: cache}
}

type cachedProfile struct {
	value  profile.Profile
	exists bool
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (profile.Profile, bool, error) {
	cached, err := basecache.Load(ctx, r.cache, profileKeyPrefix+userID, func(ctx context.Context) (cachedProfile, error) {
		item, exists, err := r.next.GetByUserID(ctx, userID)
		if err != nil {
			return cachedProfile{}, err
		}
		return cachedProfile{value: item, exists: exists}, nil
	})
	if err != nil {
		return profile.Profile{}, false, err
	}
	return cached.value, cached.exists, nil
}

func (r *ProfileRepository) CreateIfAbsent(ctx context.Context, p profile.Profile) (bool, error) {
	created, err := r.next.CreateIfAbsent(ctx, p)
	if err != nil {
		return false, err
	}
	r.cache.Delete(ctx, profileKeyPrefix+p.UserID)
	return created, nil
}

// ScheduleSource caches schedule reads per date range. Callers get their own copy of
// the cached slice.
type ScheduleSource struct {
	next  game.Source
	cache *basecache.Store
}

var _ game.Source = (*ScheduleSource)(nil)

func NewScheduleSource(next game.Source, cache *basecache.Store) *ScheduleSource {
	return &ScheduleSource{next: next, cache: cache}
}

func (s *ScheduleSource) ListByDateRange(ctx context.Context, start, end time.Time) ([]game.Game, error) {
	key := scheduleKeyPrefix + pickweek.FormatDate(start) + ":" + pickweek.FormatDate(end)
	items, err := basecache.Load(ctx, s.cache, key, func(ctx context.Context) ([]game.Game, error) {
		return s.next.ListByDateRange(ctx, start, end)
	})
	if err != nil {
		return nil, err
	}
	return append([]game.Game(nil), items...), nil
}

func (s *ScheduleSource) ListByDate(ctx context.Context, date time.Time) ([]game.Game, error) {
	key := scheduleKeyPrefix + pickweek.FormatDate(date)
	items, err := basecache.Load(ctx, s.cache, key, func(ctx context.Context) ([]game.Game, error) {
		return s.next.ListByDate(ctx, date)
	})
	if err != nil {
		return nil, err
	}
	return append([]game.Game(nil), items...), nil
}

// Invalidate drops every cached schedule read, e.g. after an import.
func (s *ScheduleSource) Invalidate(ctx context.Context) {
	s.cache.DeletePrefix(ctx, scheduleKeyPrefix)
}
