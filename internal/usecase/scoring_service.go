package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/riskibarqy/nhl-pickem/internal/domain/outcome"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pick"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pickweek"
	"github.com/riskibarqy/nhl-pickem/internal/domain/profile"
	"github.com/riskibarqy/nhl-pickem/internal/domain/scoring"
	"github.com/riskibarqy/nhl-pickem/internal/platform/logging"
)

const (
	LeaderboardScopeWeekly  = "weekly"
	LeaderboardScopeAllTime = "all-time"
)

// ScoringService grades stored picks against resolved outcomes. Nothing it computes is
// persisted.
type ScoringService struct {
	pickRepo    pick.Repository
	profileRepo profile.Repository
	resolver    outcome.Resolver
	location    *time.Location
	logger      *logging.Logger
	now         func() time.Time
}

type LeaderboardQuery struct {
	Scope  string
	WeekID string
}

type Leaderboard struct {
	Scope  string
	Week   *pickweek.Window
	Scores []scoring.UserScore
}

func NewScoringService(
	pickRepo pick.Repository,
	profileRepo profile.Repository,
	resolver outcome.Resolver,
	location *time.Location,
	logger *logging.Logger,
) *ScoringService {
	if location == nil {
		location = time.UTC
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ScoringService{
		pickRepo:    pickRepo,
		profileRepo: profileRepo,
		resolver:    resolver,
		location:    location,
		logger:      logger,
		now:         time.Now,
	}
}

// WeeklyScores scores every pick set of weekID. Scores keep retrieval order.
// SetClock replaces the wall clock used to find the current week.
func (s *ScoringService) SetClock(now func() time.Time) {
	if now != nil {
		s.now = now
	}
}

func (s *ScoringService) WeeklyScores(ctx context.Context, weekID string) (scores []scoring.UserScore, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.WeeklyScores", attribute.String("week_id", weekID))
	defer func() { endSpan(span, err) }()

	weekID = strings.TrimSpace(weekID)
	if _, err := pickweek.ParseWeekID(weekID); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	sets, err := s.pickRepo.ListByWeek(ctx, weekID)
	if err != nil {
		return nil, fmt.Errorf("list picks for week=%s: %w", weekID, err)
	}
	return s.score(ctx, sets)
}

// AllTimeScores sums every user's pick sets across all weeks.
func (s *ScoringService) AllTimeScores(ctx context.Context) (scores []scoring.UserScore, err error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.ScoringService.AllTimeScores")
	defer func() { endSpan(span, err) }()

	sets, err := s.pickRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all picks: %w", err)
	}
	return s.score(ctx, sets)
}

// Leaderboard returns scores sorted by correct picks. A weekly query without a week id
// uses the week in progress.
func (s *ScoringService) Leaderboard(ctx context.Context, query LeaderboardQuery) (Leaderboard, error) {
	scope := strings.ToLower(strings.TrimSpace(query.Scope))
	switch scope {
	case "", LeaderboardScopeWeekly:
		today := pickweek.Date(s.now(), s.location)
		window := pickweek.ScoringWindow(today)
		if weekID := strings.TrimSpace(query.WeekID); weekID != "" {
			var err error
			window, err = pickweek.WindowFor(weekID, today)
			if err != nil {
				return Leaderboard{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
			}
		}

		scores, err := s.WeeklyScores(ctx, window.WeekID)
		if err != nil {
			return Leaderboard{}, err
		}
		scoring.SortByCorrect(scores)
		return Leaderboard{Scope: LeaderboardScopeWeekly, Week: &window, Scores: scores}, nil
	case LeaderboardScopeAllTime:
		scores, err := s.AllTimeScores(ctx)
		if err != nil {
			return Leaderboard{}, err
		}
		scoring.SortByCorrect(scores)
		return Leaderboard{Scope: LeaderboardScopeAllTime, Scores: scores}, nil
	default:
		return Leaderboard{}, fmt.Errorf("%w: unknown leaderboard scope %q", ErrInvalidInput, query.Scope)
	}
}

func (s *ScoringService) score(ctx context.Context, sets []pick.PickSet) ([]scoring.UserScore, error) {
	tally := scoring.NewTally()
	refs := make([]outcome.GameRef, 0)
	seenGames := make(map[string]struct{})
	for _, set := range sets {
		tally.Register(set.UserID)
		for _, p := range set.Picks {
			if _, ok := seenGames[p.GameID]; ok {
				continue
			}
			seenGames[p.GameID] = struct{}{}
			refs = append(refs, outcome.GameRef{GameID: p.GameID, GameDate: p.GameDate})
		}
	}
	if len(sets) == 0 {
		return []scoring.UserScore{}, nil
	}

	outcomes, err := s.resolver.Resolve(ctx, refs)
	if err != nil {
		return nil, fmt.Errorf("resolve outcomes: %w", err)
	}

	for _, set := range sets {
		for _, p := range set.Picks {
			grade := scoring.GradePick(p, outcomes[p.GameID])
			if grade == scoring.GradeInvalid {
				s.logger.WarnContext(ctx, "ignoring pick with unknown team",
					"week_id", set.WeekID,
					"user_id", set.UserID,
					"game_id", p.GameID,
					"choice", p.Choice,
				)
			}
			tally.Record(set.UserID, grade)
		}
	}

	for _, userID := range tally.UserIDs() {
		tally.SetDisplayName(userID, s.displayName(ctx, userID))
	}

	return tally.Scores(), nil
}

// displayName never fails the scoring pass; the user id stands in for a missing profile.
func (s *ScoringService) displayName(ctx context.Context, userID string) string {
	if s.profileRepo == nil {
		return userID
	}
	p, exists, err := s.profileRepo.GetByUserID(ctx, userID)
	if err != nil {
		s.logger.WarnContext(ctx, "profile lookup failed, using user id", "user_id", userID, "error", err)
		return userID
	}
	if !exists {
		return userID
	}
	return p.NameOrID(userID)
}
