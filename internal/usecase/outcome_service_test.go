package usecase

import (
	"errors"
	"testing"
	"time"

	"github.com/riskibarqy/nhl-pickem/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/nhl-pickem/internal/platform/logging"
)

func TestOutcomeService_SetAndGet(t *testing.T) {
	t.Parallel()

	sunday := time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC)
	games := memory.SeedGames(sunday)
	service := NewOutcomeService(memory.NewOutcomeRepository(), memory.NewScheduleRepository(games), logging.NewNop())
	fixed := time.Date(2025, 1, 13, 4, 0, 0, 0, time.UTC)
	service.now = func() time.Time { return fixed }

	winner := games[0].AwayTeam
	record, err := service.SetOutcome(t.Context(), SetOutcomeInput{
		GameID:   games[0].ID,
		Winner:   &winner,
		Metadata: map[string]string{"recorded_by": "admin", " ": "dropped"},
	})
	if err != nil {
		t.Fatalf("set outcome: %v", err)
	}
	if !record.UpdatedAt.Equal(fixed) || len(record.Metadata) != 1 {
		t.Fatalf("unexpected record: %+v", record)
	}

	got, err := service.GetOutcome(t.Context(), games[0].ID)
	if err != nil {
		t.Fatalf("get outcome: %v", err)
	}
	if !got.Decided || got.Winner != winner {
		t.Fatalf("unexpected outcome: %+v", got)
	}

	if _, err := service.SetOutcome(t.Context(), SetOutcomeInput{GameID: games[0].ID}); err != nil {
		t.Fatalf("reset outcome: %v", err)
	}
	got, _ = service.GetOutcome(t.Context(), games[0].ID)
	if got.Decided {
		t.Fatalf("expected cleared winner to be undecided")
	}
}

func TestOutcomeService_Validation(t *testing.T) {
	t.Parallel()

	games := memory.SeedGames(time.Date(2025, 1, 12, 0, 0, 0, 0, time.UTC))
	service := NewOutcomeService(memory.NewOutcomeRepository(), memory.NewScheduleRepository(games), logging.NewNop())

	stranger := "Seattle Kraken"
	if _, err := service.SetOutcome(t.Context(), SetOutcomeInput{GameID: games[0].ID, Winner: &stranger}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for team not playing, got %v", err)
	}
	if _, err := service.SetOutcome(t.Context(), SetOutcomeInput{GameID: "missing", Winner: &stranger}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown game, got %v", err)
	}
	if _, err := service.SetOutcome(t.Context(), SetOutcomeInput{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for missing game id, got %v", err)
	}

	got, err := service.GetOutcome(t.Context(), "never-recorded")
	if err != nil || got.Decided {
		t.Fatalf("expected undecided for unrecorded game, got %+v err=%v", got, err)
	}
}
