package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
	"github.com/riskibarqy/nhl-pickem/internal/domain/outcome"
	"github.com/riskibarqy/nhl-pickem/internal/platform/logging"
)

// OutcomeService records game results by hand for schedules that carry no scores.
type OutcomeService struct {
	repo   outcome.Repository
	games  game.Lookup
	logger *logging.Logger
	now    func() time.Time
}

type SetOutcomeInput struct {
	GameID   string
	Winner   *string
	Metadata map[string]string
}

// NewOutcomeService accepts a nil games lookup, in which case winners are not checked
// against the schedule.
func NewOutcomeService(repo outcome.Repository, games game.Lookup, logger *logging.Logger) *OutcomeService {
	if logger == nil {
		logger = logging.Default()
	}
	return &OutcomeService{
		repo:   repo,
		games:  games,
		logger: logger,
		now:    time.Now,
	}
}

// SetOutcome upserts the result for a game. A nil or blank winner marks it undecided.
func (s *OutcomeService) SetOutcome(ctx context.Context, input SetOutcomeInput) (record outcome.Record, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.OutcomeService.SetOutcome")
	defer func() { endSpan(span, err) }()

	gameID := strings.TrimSpace(input.GameID)
	if gameID == "" {
		return outcome.Record{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	var winner *string
	if input.Winner != nil {
		if value := strings.TrimSpace(*input.Winner); value != "" {
			winner = &value
		}
	}

	if winner != nil && s.games != nil {
		g, exists, err := s.games.GetByID(ctx, gameID)
		if err != nil {
			return outcome.Record{}, fmt.Errorf("get game=%s: %w", gameID, err)
		}
		if !exists {
			return outcome.Record{}, fmt.Errorf("%w: game=%s", ErrNotFound, gameID)
		}
		if !g.HasTeam(*winner) {
			return outcome.Record{}, fmt.Errorf("%w: winner %q is not playing in game %s", ErrInvalidInput, *winner, gameID)
		}
	}

	metadata := make(map[string]string, len(input.Metadata))
	for key, value := range input.Metadata {
		if key = strings.TrimSpace(key); key != "" {
			metadata[key] = value
		}
	}

	record = outcome.Record{
		GameID:    gameID,
		Winner:    winner,
		Metadata:  metadata,
		UpdatedAt: s.now().UTC(),
	}
	if err := record.Validate(); err != nil {
		return outcome.Record{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	if err := s.repo.Upsert(ctx, record); err != nil {
		return outcome.Record{}, fmt.Errorf("upsert outcome game=%s: %w", gameID, err)
	}

	s.logger.InfoContext(ctx, "outcome recorded", "game_id", gameID, "decided", winner != nil)
	return record, nil
}

func (s *OutcomeService) GetOutcome(ctx context.Context, gameID string) (outcome.Outcome, error) {
	gameID = strings.TrimSpace(gameID)
	if gameID == "" {
		return outcome.Outcome{}, fmt.Errorf("%w: game id is required", ErrInvalidInput)
	}

	record, exists, err := s.repo.Get(ctx, gameID)
	if err != nil {
		return outcome.Outcome{}, fmt.Errorf("get outcome game=%s: %w", gameID, err)
	}
	if !exists {
		return outcome.Undecided(gameID), nil
	}
	return record.Outcome(), nil
}
