package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/nhl-pickem/internal/domain/pickweek"
	"github.com/riskibarqy/nhl-pickem/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/nhl-pickem/internal/platform/logging"
)

// 2025-01-11 is a Saturday; picks apply to the week of 2025-01-12.
var (
	openSaturday = time.Date(2025, 1, 11, 15, 0, 0, 0, time.UTC)
	upcomingWeek = time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
)

func newPickServiceAt(now time.Time) (*PickService, *memory.PickRepository, *memory.ScheduleRepository) {
	picks := memory.NewPickRepository()
	schedule := memory.NewScheduleRepository(memory.SeedGames(upcomingWeek))
	service := NewPickService(picks, schedule, time.UTC, logging.NewNop())
	service.now = func() time.Time { return now }
	return service, picks, schedule
}

func TestPickService_SavePicks_OnSaturdayIsRetrievable(t *testing.T) {
	t.Parallel()

	service, _, schedule := newPickServiceAt(openSaturday)
	start, end := pickweek.WeekDateRange(upcomingWeek)
	games, err := schedule.ListByDateRange(t.Context(), start, end)
	if err != nil {
		t.Fatalf("list games: %v", err)
	}

	saved, err := service.SavePicks(t.Context(), SavePicksInput{
		UserID: "user-a",
		Choices: map[string]string{
			games[0].ID: games[0].AwayTeam,
			games[1].ID: games[1].HomeTeam,
		},
	})
	if err != nil {
		t.Fatalf("save picks: %v", err)
	}
	if saved.WeekID != "2025-01-12" {
		t.Fatalf("expected picks for upcoming week, got %s", saved.WeekID)
	}

	loaded, err := service.GetPicks(t.Context(), "2025-01-12", "user-a")
	if err != nil {
		t.Fatalf("get picks: %v", err)
	}
	if len(loaded.Picks) != 2 {
		t.Fatalf("expected 2 stored picks, got %d", len(loaded.Picks))
	}
	if p, ok := loaded.Find(games[0].ID); !ok || p.Choice != games[0].AwayTeam || p.HomeTeam != games[0].HomeTeam {
		t.Fatalf("unexpected stored pick: %+v", p)
	}
}

func TestPickService_SavePicks_MergesWithEarlierSubmission(t *testing.T) {
	t.Parallel()

	service, _, _ := newPickServiceAt(openSaturday)
	games := memory.SeedGames(upcomingWeek)

	if _, err := service.SavePicks(t.Context(), SavePicksInput{UserID: "user-a", Choices: map[string]string{
		games[0].ID: games[0].HomeTeam,
		games[1].ID: games[1].HomeTeam,
	}}); err != nil {
		t.Fatalf("first save: %v", err)
	}

	saved, err := service.SavePicks(t.Context(), SavePicksInput{UserID: "user-a", Choices: map[string]string{
		games[0].ID: games[0].AwayTeam,
	}})
	if err != nil {
		t.Fatalf("second save: %v", err)
	}
	if len(saved.Picks) != 2 {
		t.Fatalf("expected merge to keep 2 picks, got %d", len(saved.Picks))
	}
	if p, _ := saved.Find(games[0].ID); p.Choice != games[0].AwayTeam {
		t.Fatalf("expected game 0 replaced, got %q", p.Choice)
	}
	if p, _ := saved.Find(games[1].ID); p.Choice != games[1].HomeTeam {
		t.Fatalf("expected game 1 kept, got %q", p.Choice)
	}
}

func TestPickService_SavePicks_LockedOutsideSaturday(t *testing.T) {
	t.Parallel()

	for offset := 1; offset <= 6; offset++ {
		now := openSaturday.AddDate(0, 0, offset)
		service, _, _ := newPickServiceAt(now)
		games := memory.SeedGames(upcomingWeek)

		_, err := service.SavePicks(t.Context(), SavePicksInput{UserID: "user-a", Choices: map[string]string{
			games[0].ID: games[0].HomeTeam,
		}})
		if !errors.Is(err, ErrPickWindowClosed) {
			t.Fatalf("%s: expected ErrPickWindowClosed, got %v", now.Weekday(), err)
		}
	}
}

func TestPickService_SavePicks_Validation(t *testing.T) {
	t.Parallel()

	service, _, _ := newPickServiceAt(openSaturday)
	games := memory.SeedGames(upcomingWeek)

	cases := map[string]SavePicksInput{
		"missing user":     {Choices: map[string]string{games[0].ID: games[0].HomeTeam}},
		"no choices":       {UserID: "user-a"},
		"unknown game":     {UserID: "user-a", Choices: map[string]string{"does-not-exist": "Boston Bruins"}},
		"team not playing": {UserID: "user-a", Choices: map[string]string{games[0].ID: "Seattle Kraken"}},
		"blank choice":     {UserID: "user-a", Choices: map[string]string{games[0].ID: " "}},
	}
	for name, input := range cases {
		if _, err := service.SavePicks(t.Context(), input); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestPickService_CurrentBoard(t *testing.T) {
	t.Parallel()

	service, _, _ := newPickServiceAt(openSaturday)
	board, err := service.CurrentBoard(t.Context(), "user-a")
	if err != nil {
		t.Fatalf("current board: %v", err)
	}
	if !board.Window.EditingOpen || board.Window.WeekID != "2025-01-12" {
		t.Fatalf("unexpected window: %+v", board.Window)
	}
	if len(board.Games) != 7 {
		t.Fatalf("expected 7 games, got %d", len(board.Games))
	}
	if len(board.Picks.Picks) != 0 || board.Picks.UserID != "user-a" {
		t.Fatalf("expected empty pick set for new user, got %+v", board.Picks)
	}

	// The following Saturday rolls to a week with no seeded games.
	service.now = func() time.Time { return openSaturday.AddDate(0, 0, 7) }
	empty, err := service.CurrentBoard(t.Context(), "user-a")
	if err != nil {
		t.Fatalf("current board next week: %v", err)
	}
	if len(empty.Games) != 0 {
		t.Fatalf("expected no games, got %d", len(empty.Games))
	}
}

func TestPickService_CurrentWeek(t *testing.T) {
	t.Parallel()

	service, _, _ := newPickServiceAt(openSaturday)
	picks, scoring := service.CurrentWeek()
	if picks.WeekID != "2025-01-12" || !picks.EditingOpen {
		t.Fatalf("unexpected pick week: %+v", picks)
	}
	if scoring.WeekID != "2025-01-05" || scoring.EditingOpen {
		t.Fatalf("unexpected scoring week: %+v", scoring)
	}
}
