package memory

import (
	"context"
	"sync"
	"time"

	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pickweek"
)

// ScheduleRepository is a static schedule table held in memory.
type ScheduleRepository struct {
	mu    sync.RWMutex
	games map[string]game.Game
}

func NewScheduleRepository(games []game.Game) *ScheduleRepository {
	repo := &ScheduleRepository{games: make(map[string]game.Game, len(games))}
	for _, g := range games {
		repo.games[g.ID] = g
	}
	return repo
}

func (r *ScheduleRepository) ListByDateRange(_ context.Context, start, end time.Time) ([]game.Game, error) {
	from := pickweek.FormatDate(start)
	to := pickweek.FormatDate(end)

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]game.Game, 0)
	for _, g := range r.games {
		day := pickweek.FormatDate(g.Date)
		if day >= from && day <= to {
			out = append(out, g)
		}
	}
	game.SortByDate(out)
	return out, nil
}

func (r *ScheduleRepository) ListByDate(ctx context.Context, date time.Time) ([]game.Game, error) {
	return r.ListByDateRange(ctx, date, date)
}

func (r *ScheduleRepository) GetByID(_ context.Context, gameID string) (game.Game, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.games[gameID]
	return g, ok, nil
}

func (r *ScheduleRepository) UpsertGames(_ context.Context, games []game.Game) error {
	for _, g := range games {
		if err := g.Validate(); err != nil {
			return err
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, g := range games {
		r.games[g.ID] = g
	}
	return nil
}
