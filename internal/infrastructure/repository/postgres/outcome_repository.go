package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nhl-pickem/internal/domain/outcome"
	qb "github.com/riskibarqy/nhl-pickem/internal/platform/querybuilder"
)

// Metadata keys are merged into the stored jsonb document; the winner is replaced.
const outcomeUpsertSuffix = `ON CONFLICT (game_id)
DO UPDATE SET
    winner = EXCLUDED.winner,
    metadata = game_outcomes.metadata || EXCLUDED.metadata,
    updated_at = EXCLUDED.updated_at`

type OutcomeRepository struct {
	db *sqlx.DB
}

var _ outcome.Repository = (*OutcomeRepository)(nil)

func NewOutcomeRepository(db *sqlx.DB) *OutcomeRepository {
	return &OutcomeRepository{db: db}
}

func (r *OutcomeRepository) Get(ctx context.Context, gameID string) (outcome.Record, bool, error) {
	query, args, err := qb.Select(qb.Columns(outcomeTableModel{})...).
		From("game_outcomes").
		Where(qb.Eq("game_id", gameID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return outcome.Record{}, false, fmt.Errorf("build get outcome query: %w", err)
	}

	var row outcomeTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return outcome.Record{}, false, nil
		}
		return outcome.Record{}, false, fmt.Errorf("get outcome game=%s: %w", gameID, err)
	}

	record, err := outcomeFromRow(row)
	if err != nil {
		return outcome.Record{}, false, err
	}
	return record, true, nil
}

func (r *OutcomeRepository) Upsert(ctx context.Context, record outcome.Record) error {
	if err := record.Validate(); err != nil {
		return err
	}

	row, err := outcomeToRow(record)
	if err != nil {
		return err
	}
	query, args, err := qb.InsertModel("game_outcomes", row, outcomeUpsertSuffix)
	if err != nil {
		return fmt.Errorf("build upsert outcome query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert outcome game=%s: %w", record.GameID, err)
	}
	return nil
}

func outcomeToRow(record outcome.Record) (outcomeTableModel, error) {
	metadata := record.Metadata
	if metadata == nil {
		metadata = map[string]string{}
	}
	encoded, err := sonic.MarshalString(metadata)
	if err != nil {
		return outcomeTableModel{}, fmt.Errorf("encode outcome metadata game=%s: %w", record.GameID, err)
	}
	return outcomeTableModel{
		GameID:    record.GameID,
		Winner:    nullStringFromPtr(record.Winner),
		Metadata:  encoded,
		UpdatedAt: record.UpdatedAt,
	}, nil
}

func outcomeFromRow(row outcomeTableModel) (outcome.Record, error) {
	metadata := map[string]string{}
	if raw := strings.TrimSpace(row.Metadata); raw != "" {
		if err := sonic.UnmarshalString(raw, &metadata); err != nil {
			return outcome.Record{}, fmt.Errorf("decode outcome metadata game=%s: %w", row.GameID, err)
		}
	}
	return outcome.Record{
		GameID:    row.GameID,
		Winner:    nullStringToPtr(row.Winner),
		Metadata:  metadata,
		UpdatedAt: row.UpdatedAt.UTC(),
	}, nil
}
