package game

import (
	"context"
	"time"
)

// Source returns scheduled games. Dates are calendar days, both bounds inclusive.
type Source interface {
	ListByDateRange(ctx context.Context, start, end time.Time) ([]Game, error)
	ListByDate(ctx context.Context, date time.Time) ([]Game, error)
}

// Lookup finds a single game by id. Only table-backed sources implement it.
type Lookup interface {
	GetByID(ctx context.Context, gameID string) (Game, bool, error)
}

// Writer stores schedule rows for table-backed sources.
type Writer interface {
	UpsertGames(ctx context.Context, games []Game) error
}
