package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/riskibarqy/nhl-pickem/internal/domain/game"
	"github.com/riskibarqy/nhl-pickem/internal/domain/outcome"
	gamemock "github.com/riskibarqy/nhl-pickem/internal/mocks/domain/game"
	outcomemock "github.com/riskibarqy/nhl-pickem/internal/mocks/domain/outcome"
)

func score(v int) *int { return &v }

func TestFeedOutcomeResolver_FetchesEachDateOnce(t *testing.T) {
	t.Parallel()

	day1 := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	day2 := day1.AddDate(0, 0, 1)

	source := gamemock.NewSource(t)
	source.
		On("ListByDate", mock.Anything, day1).
		Return([]game.Game{
			{ID: "1", Date: day1, HomeTeam: "Lions", AwayTeam: "Tigers", Status: "Final", HomeScore: score(3), AwayScore: score(1)},
			{ID: "2", Date: day1, HomeTeam: "Bears", AwayTeam: "Wolves", Status: "Final", HomeScore: score(2), AwayScore: score(2)},
			{ID: "9", Date: day1, HomeTeam: "Cats", AwayTeam: "Dogs", Status: "Final", HomeScore: score(0), AwayScore: score(5)},
		}, nil).
		Once()
	source.
		On("ListByDate", mock.Anything, day2).
		Return([]game.Game{
			{ID: "3", Date: day2, HomeTeam: "Hawks", AwayTeam: "Owls", Status: "In Progress", HomeScore: score(1), AwayScore: score(0)},
		}, nil).
		Once()

	resolver := NewFeedOutcomeResolver(source, 2)
	got, err := resolver.Resolve(t.Context(), []outcome.GameRef{
		{GameID: "1", GameDate: day1},
		{GameID: "2", GameDate: day1},
		{GameID: "3", GameDate: day2},
		{GameID: "4", GameDate: day2},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if got["1"] != outcome.Decided("1", "Lions") {
		t.Fatalf("unexpected outcome for 1: %+v", got["1"])
	}
	if got["2"].Decided {
		t.Fatalf("expected tie to be undecided")
	}
	if got["3"].Decided {
		t.Fatalf("expected in-progress game to be undecided")
	}
	if got["4"].Decided || got["4"].GameID != "4" {
		t.Fatalf("expected game missing from feed to be undecided, got %+v", got["4"])
	}
	if _, ok := got["9"]; ok {
		t.Fatalf("did not expect unrequested game in result")
	}
}

func TestFeedOutcomeResolver_PropagatesLookupFailure(t *testing.T) {
	t.Parallel()

	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	source := gamemock.NewSource(t)
	source.
		On("ListByDate", mock.Anything, day).
		Return(nil, errors.New("feed timeout")).
		Once()

	_, err := NewFeedOutcomeResolver(source, 1).Resolve(t.Context(), []outcome.GameRef{{GameID: "1", GameDate: day}})
	if !errors.Is(err, ErrLookupFailure) {
		t.Fatalf("expected ErrLookupFailure, got %v", err)
	}
}

func TestManualOutcomeResolver_ResolvesEachGameOnce(t *testing.T) {
	t.Parallel()

	winner := "Lions"
	repo := outcomemock.NewRepository(t)
	repo.
		On("Get", mock.Anything, "101").
		Return(outcome.Record{GameID: "101", Winner: &winner}, true, nil).
		Once()
	repo.
		On("Get", mock.Anything, "102").
		Return(outcome.Record{GameID: "102"}, true, nil).
		Once()
	repo.
		On("Get", mock.Anything, "103").
		Return(outcome.Record{}, false, nil).
		Once()

	day := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	got, err := NewManualOutcomeResolver(repo, 2).Resolve(t.Context(), []outcome.GameRef{
		{GameID: "101", GameDate: day},
		{GameID: "101", GameDate: day},
		{GameID: "102", GameDate: day},
		{GameID: "103", GameDate: day},
	})
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got["101"] != outcome.Decided("101", "Lions") {
		t.Fatalf("unexpected outcome for 101: %+v", got["101"])
	}
	if got["102"].Decided || got["103"].Decided {
		t.Fatalf("expected missing winner and missing record to be undecided")
	}
}

func TestManualOutcomeResolver_FailsFast(t *testing.T) {
	t.Parallel()

	repo := outcomemock.NewRepository(t)
	repo.
		On("Get", mock.Anything, "101").
		Return(outcome.Record{}, false, errors.New("store unreachable")).
		Maybe()

	_, err := NewManualOutcomeResolver(repo, 1).Resolve(t.Context(), []outcome.GameRef{{GameID: "101"}})
	if !errors.Is(err, ErrLookupFailure) {
		t.Fatalf("expected ErrLookupFailure, got %v", err)
	}
}
