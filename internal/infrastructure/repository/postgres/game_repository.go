package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pickweek"
	qb "github.com/riskibarqy/nhl-pickem/internal/platform/querybuilder"
)

const gameUpsertSuffix = `ON CONFLICT (id)
DO UPDATE SET
    game_date = EXCLUDED.game_date,
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    status = EXCLUDED.status,
    home_score = EXCLUDED.home_score,
    away_score = EXCLUDED.away_score,
    updated_at = NOW()`

// gameUpsertBatch keeps each insert under the postgres bind parameter limit.
const gameUpsertBatch = 500

// GameRepository is the schedule table used in manual-outcome mode.
type GameRepository struct {
	db *sqlx.DB
}

var (
	_ game.Source = (*GameRepository)(nil)
	_ game.Lookup = (*GameRepository)(nil)
	_ game.Writer = (*GameRepository)(nil)
)

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func gameBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select(qb.Columns(gameTableModel{})...).From("games")
}

func (r *GameRepository) ListByDateRange(ctx context.Context, start, end time.Time) ([]game.Game, error) {
	query, args, err := gameBaseSelectBuilder().
		Where(qb.Between("game_date", pickweek.FormatDate(start), pickweek.FormatDate(end))).
		OrderBy("game_date", "id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list games %s..%s: %w", pickweek.FormatDate(start), pickweek.FormatDate(end), err)
	}

	out := make([]game.Game, 0, len(rows))
	for _, row := range rows {
		out = append(out, gameFromRow(row))
	}
	return out, nil
}

func (r *GameRepository) ListByDate(ctx context.Context, date time.Time) ([]game.Game, error) {
	return r.ListByDateRange(ctx, date, date)
}

func (r *GameRepository) GetByID(ctx context.Context, gameID string) (game.Game, bool, error) {
	query, args, err := gameBaseSelectBuilder().
		Where(qb.Eq("id", gameID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return game.Game{}, false, fmt.Errorf("build get game query: %w", err)
	}

	var row gameTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return game.Game{}, false, nil
		}
		return game.Game{}, false, fmt.Errorf("get game=%s: %w", gameID, err)
	}
	return gameFromRow(row), true, nil
}

// UpsertGames writes all games in one transaction.
func (r *GameRepository) UpsertGames(ctx context.Context, games []game.Game) error {
	rows := make([]gameTableModel, 0, len(games))
	for _, g := range games {
		if err := g.Validate(); err != nil {
			return err
		}
		rows = append(rows, gameToRow(g))
	}
	if len(rows) == 0 {
		return nil
	}

	return withTx(ctx, r.db, "upsert games", func(tx *sqlx.Tx) error {
		for start := 0; start < len(rows); start += gameUpsertBatch {
			end := min(start+gameUpsertBatch, len(rows))
			query, args, err := qb.InsertModels("games", rows[start:end], gameUpsertSuffix)
			if err != nil {
				return fmt.Errorf("build upsert games query: %w", err)
			}
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("upsert games batch=%d: %w", start/gameUpsertBatch, err)
			}
		}
		return nil
	})
}

func gameToRow(g game.Game) gameTableModel {
	return gameTableModel{
		ID:        g.ID,
		GameDate:  g.Date,
		HomeTeam:  g.HomeTeam,
		AwayTeam:  g.AwayTeam,
		Status:    game.NormalizeStatus(g.Status),
		HomeScore: nullInt32FromPtr(g.HomeScore),
		AwayScore: nullInt32FromPtr(g.AwayScore),
	}
}

func gameFromRow(row gameTableModel) game.Game {
	return game.Game{
		ID:        row.ID,
		Date:      pickweek.Date(row.GameDate, nil),
		HomeTeam:  row.HomeTeam,
		AwayTeam:  row.AwayTeam,
		Status:    game.NormalizeStatus(row.Status),
		HomeScore: nullInt32ToPtr(row.HomeScore),
		AwayScore: nullInt32ToPtr(row.AwayScore),
	}
}
