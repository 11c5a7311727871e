package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pick"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pickweek"
	"github.com/riskibarqy/nhl-pickem/internal/platform/logging"
)

type PickService struct {
	pickRepo pick.Repository
	schedule game.Source
	location *time.Location
	logger   *logging.Logger
	now      func() time.Time
}

// WeekBoard is everything a user needs to make picks for the open week.
type WeekBoard struct {
	Window pickweek.Window
	Games  []game.Game
	Picks  pick.PickSet
}

type SavePicksInput struct {
	UserID  string
	Choices map[string]string
}

func NewPickService(pickRepo pick.Repository, schedule game.Source, location *time.Location, logger *logging.Logger) *PickService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &PickService{
		pickRepo: pickRepo,
		schedule: schedule,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// SetClock replaces the wall clock used to find the current week.
func (s *PickService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *PickService) today() time.Time {
	return pickweek.Date(s.now(), s.location)
}

// CurrentWeek returns the pick week and the week in progress.
func (s *PickService) CurrentWeek() (picks pickweek.Window, scoring pickweek.Window) {
	today := s.today()
	return pickweek.PickWindow(today), pickweek.ScoringWindow(today)
}

// CurrentBoard lists the games of the pick week alongside the user's saved picks. A
// week without games returns an empty list.
func (s *PickService) CurrentBoard(ctx context.Context, userID string) (board WeekBoard, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.CurrentBoard")
	defer func() { endSpan(span, err) }()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return WeekBoard{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}

	window := pickweek.PickWindow(s.today())
	span.SetAttributes(attribute.String("week_id", window.WeekID))

	games, err := s.weekGames(ctx, window)
	if err != nil {
		return WeekBoard{}, err
	}

	set, err := s.loadPicks(ctx, window.WeekID, userID)
	if err != nil {
		return WeekBoard{}, err
	}

	return WeekBoard{Window: window, Games: games, Picks: set}, nil
}

// GetPicks loads a user's pick set for any week. Missing sets come back empty.
func (s *PickService) GetPicks(ctx context.Context, weekID, userID string) (pick.PickSet, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.GetPicks", attribute.String("week_id", weekID))
	defer span.End()

	weekID = strings.TrimSpace(weekID)
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return pick.PickSet{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if _, err := pickweek.ParseWeekID(weekID); err != nil {
		return pick.PickSet{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	return s.loadPicks(ctx, weekID, userID)
}

// SavePicks merges the submitted choices into the user's set for the open pick week.
// Picks for games not in the submission are kept.
func (s *PickService) SavePicks(ctx context.Context, input SavePicksInput) (saved pick.PickSet, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PickService.SavePicks", attribute.Int("choices", len(input.Choices)))
	defer func() { endSpan(span, err) }()

	userID := strings.TrimSpace(input.UserID)
	if userID == "" {
		return pick.PickSet{}, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	if len(input.Choices) == 0 {
		return pick.PickSet{}, fmt.Errorf("%w: at least one pick is required", ErrInvalidInput)
	}

	now := s.now()
	window := pickweek.PickWindow(pickweek.Date(now, s.location))
	if !window.EditingOpen {
		return pick.PickSet{}, fmt.Errorf("%w: picks for week %s are locked", ErrPickWindowClosed, window.WeekID)
	}

	games, err := s.weekGames(ctx, window)
	if err != nil {
		return pick.PickSet{}, err
	}
	byID := make(map[string]game.Game, len(games))
	for _, g := range games {
		byID[g.ID] = g
	}

	incoming := make([]pick.Pick, 0, len(input.Choices))
	for gameID, choice := range input.Choices {
		gameID = strings.TrimSpace(gameID)
		g, ok := byID[gameID]
		if !ok {
			return pick.PickSet{}, fmt.Errorf("%w: game %s is not scheduled in week %s", ErrInvalidInput, gameID, window.WeekID)
		}
		p := pick.FromGame(g, choice)
		if err := p.Validate(); err != nil {
			return pick.PickSet{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		incoming = append(incoming, p)
	}
	pick.SortPicks(incoming)

	current, err := s.loadPicks(ctx, window.WeekID, userID)
	if err != nil {
		return pick.PickSet{}, err
	}

	// The store merges by game id too; the merged copy is what the caller sees.
	saved = current.Merge(incoming)
	saved.UpdatedAt = now.UTC()
	if err := saved.Validate(); err != nil {
		return pick.PickSet{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	if err := s.pickRepo.Upsert(ctx, pick.PickSet{
		WeekID:    window.WeekID,
		UserID:    userID,
		Picks:     incoming,
		UpdatedAt: saved.UpdatedAt,
	}); err != nil {
		return pick.PickSet{}, fmt.Errorf("save picks week=%s user=%s: %w", window.WeekID, userID, err)
	}

	s.logger.InfoContext(ctx, "picks saved",
		"week_id", window.WeekID,
		"user_id", userID,
		"submitted", len(incoming),
		"total", len(saved.Picks),
	)

	return saved, nil
}

func (s *PickService) weekGames(ctx context.Context, window pickweek.Window) ([]game.Game, error) {
	games, err := s.schedule.ListByDateRange(ctx, window.Start, window.End)
	if err != nil {
		return nil, fmt.Errorf("%w: list games for week %s: %w", ErrLookupFailure, window.WeekID, err)
	}
	game.SortByDate(games)
	return games, nil
}

func (s *PickService) loadPicks(ctx context.Context, weekID, userID string) (pick.PickSet, error) {
	set, exists, err := s.pickRepo.Get(ctx, weekID, userID)
	if err != nil {
		return pick.PickSet{}, fmt.Errorf("load picks week=%s user=%s: %w", weekID, userID, err)
	}
	if !exists {
		return pick.PickSet{WeekID: weekID, UserID: userID, Picks: []pick.Pick{}}, nil
	}
	return set, nil
}
