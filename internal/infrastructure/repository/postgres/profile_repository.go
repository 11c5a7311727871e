package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/riskibarqy/nhl-pickem/internal/domain/profile"
	qb "github.com/riskibarqy/nhl-pickem/internal/platform/querybuilder"
)

type ProfileRepository struct {
	db *sqlx.DB
}

var _ profile.Repository = (*ProfileRepository)(nil)

func NewProfileRepository(db *sqlx.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) GetByUserID(ctx context.Context, userID string) (profile.Profile, bool, error) {
	query, args, err := qb.Select(qb.Columns(profileTableModel{})...).
		From("profiles").
		Where(qb.Eq("user_id", userID)).
		Limit(1).
		ToSQL()
	if err != nil {
		return profile.Profile{}, false, fmt.Errorf("build get profile query: %w", err)
	}

	var row profileTableModel
	if err := r.db.GetContext(ctx, &row, query, args...); err != nil {
		if isNotFound(err) {
			return profile.Profile{}, false, nil
		}
		return profile.Profile{}, false, fmt.Errorf("get profile user=%s: %w", userID, err)
	}

	return profile.Profile{
		UserID:      row.UserID,
		DisplayName: row.DisplayName,
		CreatedAt:   row.CreatedAt.UTC(),
	}, true, nil
}

// CreateIfAbsent relies on ON CONFLICT DO NOTHING; zero affected rows means the
// profile already existed.
func (r *ProfileRepository) CreateIfAbsent(ctx context.Context, p profile.Profile) (bool, error) {
	if err := p.Validate(); err != nil {
		return false, err
	}

	query, args, err := qb.InsertModel("profiles", profileTableModel{
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
	}, "ON CONFLICT (user_id) DO NOTHING")
	if err != nil {
		return false, fmt.Errorf("build insert profile query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return false, nil
		}
		return false, fmt.Errorf("insert profile user=%s: %w", p.UserID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("profile rows affected: %w", err)
	}
	return affected > 0, nil
}
