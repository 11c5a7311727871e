package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pick"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pickweek"
	qb "github.com/riskibarqy/nhl-pickem/internal/platform/querybuilder"
)

const pickUpsertSuffix = `ON CONFLICT (week_id, user_id, game_id)
DO UPDATE SET
    game_date = EXCLUDED.game_date,
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    choice = EXCLUDED.choice,
    updated_at = EXCLUDED.updated_at`

// PickRepository stores one row per (week, user, game). A pick set is the group of rows
// sharing week and user.
type PickRepository struct {
	db *sqlx.DB
}

var _ pick.Repository = (*PickRepository)(nil)

func NewPickRepository(db *sqlx.DB) *PickRepository {
	return &PickRepository{db: db}
}

func pickBaseSelectBuilder() *qb.SelectBuilder {
	return qb.Select(qb.Columns(pickTableModel{})...).From("picks")
}

func (r *PickRepository) Get(ctx context.Context, weekID, userID string) (pick.PickSet, bool, error) {
	query, args, err := pickBaseSelectBuilder().
		Where(qb.Eq("week_id", weekID), qb.Eq("user_id", userID)).
		OrderBy("game_date", "game_id").
		ToSQL()
	if err != nil {
		return pick.PickSet{}, false, fmt.Errorf("build get picks query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return pick.PickSet{}, false, fmt.Errorf("get picks week=%s user=%s: %w", weekID, userID, err)
	}
	if len(rows) == 0 {
		return pick.PickSet{}, false, nil
	}
	return groupPickRows(rows)[0], true, nil
}

// Upsert inserts or replaces each incoming pick. Rows for other games are untouched,
// which gives merge semantics without reading the current set.
func (r *PickRepository) Upsert(ctx context.Context, set pick.PickSet) error {
	if err := set.Validate(); err != nil {
		return err
	}
	if len(set.Picks) == 0 {
		return nil
	}

	rows := make([]pickTableModel, 0, len(set.Picks))
	for _, p := range set.Picks {
		rows = append(rows, pickTableModel{
			WeekID:    set.WeekID,
			UserID:    set.UserID,
			GameID:    p.GameID,
			GameDate:  p.GameDate,
			HomeTeam:  p.HomeTeam,
			AwayTeam:  p.AwayTeam,
			Choice:    p.Choice,
			UpdatedAt: set.UpdatedAt,
		})
	}

	query, args, err := qb.InsertModels("picks", rows, pickUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert picks query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert picks week=%s user=%s: %w", set.WeekID, set.UserID, err)
	}
	return nil
}

func (r *PickRepository) ListByWeek(ctx context.Context, weekID string) ([]pick.PickSet, error) {
	query, args, err := pickBaseSelectBuilder().
		Where(qb.Eq("week_id", weekID)).
		OrderBy("user_id", "game_date", "game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list picks by week query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list picks week=%s: %w", weekID, err)
	}
	return groupPickRows(rows), nil
}

func (r *PickRepository) ListAll(ctx context.Context) ([]pick.PickSet, error) {
	query, args, err := pickBaseSelectBuilder().
		OrderBy("week_id", "user_id", "game_date", "game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list all picks query: %w", err)
	}

	var rows []pickTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list all picks: %w", err)
	}
	return groupPickRows(rows), nil
}

// groupPickRows folds rows ordered by (week, user) into pick sets. UpdatedAt is the
// latest row timestamp of the set.
func groupPickRows(rows []pickTableModel) []pick.PickSet {
	out := make([]pick.PickSet, 0)
	for _, row := range rows {
		last := len(out) - 1
		if last < 0 || out[last].WeekID != row.WeekID || out[last].UserID != row.UserID {
			out = append(out, pick.PickSet{WeekID: row.WeekID, UserID: row.UserID, Picks: []pick.Pick{}})
			last++
		}
		set := &out[last]
		set.Picks = append(set.Picks, pick.Pick{
			GameID:   row.GameID,
			GameDate: pickweek.Date(row.GameDate, nil),
			HomeTeam: row.HomeTeam,
			AwayTeam: row.AwayTeam,
			Choice:   row.Choice,
		})
		if row.UpdatedAt.After(set.UpdatedAt) {
			set.UpdatedAt = row.UpdatedAt.UTC()
		}
	}
	for i := range out {
		pick.SortPicks(out[i].Picks)
	}
	return out
}
