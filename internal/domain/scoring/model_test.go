package scoring

import (
	"testing"
	"time"

	"github.com/riskibarqy/nhl-pickem/internal/domain/outcome"
	"github.com/riskibarqy/nhl-pickem/internal/domain/pick"
)

func lionsPick(choice string) pick.Pick {
	return pick.Pick{
		GameID:   "101",
		GameDate: time.Date(2025, 1, 11, 0, 0, 0, 0, time.UTC),
		HomeTeam: "Lions",
		AwayTeam: "Tigers",
		Choice:   choice,
	}
}

func TestGradePick(t *testing.T) {
	t.Parallel()

	if got := GradePick(lionsPick("Lions"), outcome.Decided("101", "Lions")); got != GradeCorrect {
		t.Fatalf("expected correct, got %v", got)
	}
	if got := GradePick(lionsPick("Tigers"), outcome.Decided("101", "Lions")); got != GradeIncorrect {
		t.Fatalf("expected incorrect, got %v", got)
	}
	if got := GradePick(lionsPick("Lions"), outcome.Undecided("101")); got != GradeUndecided {
		t.Fatalf("expected undecided, got %v", got)
	}
	if got := GradePick(lionsPick("Bears"), outcome.Decided("101", "Bears")); got != GradeInvalid {
		t.Fatalf("expected invalid, got %v", got)
	}
}

func TestTally_CountsAndZeroRows(t *testing.T) {
	t.Parallel()

	tally := NewTally()
	tally.Record("a", GradeCorrect)
	tally.Record("b", GradeIncorrect)
	tally.Record("a", GradeUndecided)
	tally.Record("a", GradeInvalid)
	tally.Register("c")

	scores := tally.Scores()
	if len(scores) != 3 {
		t.Fatalf("expected 3 users, got %d", len(scores))
	}
	if scores[0].UserID != "a" || scores[0].Correct != 1 || scores[0].Graded != 1 {
		t.Fatalf("unexpected score for a: %+v", scores[0])
	}
	if scores[1].Correct != 0 || scores[1].Graded != 1 {
		t.Fatalf("unexpected score for b: %+v", scores[1])
	}
	if scores[2].UserID != "c" || scores[2].Graded != 0 || scores[2].DisplayName != "c" {
		t.Fatalf("expected zero row for c, got %+v", scores[2])
	}
}

func TestSortByCorrect_Stable(t *testing.T) {
	t.Parallel()

	scores := []UserScore{
		{UserID: "B", Correct: 3},
		{UserID: "A", Correct: 5},
		{UserID: "C", Correct: 3},
	}
	SortByCorrect(scores)

	if scores[0].UserID != "A" {
		t.Fatalf("expected A first, got %s", scores[0].UserID)
	}
	if scores[1].UserID != "B" || scores[2].UserID != "C" {
		t.Fatalf("expected tied rows to keep input order, got %s %s", scores[1].UserID, scores[2].UserID)
	}
}

func TestAccuracy(t *testing.T) {
	t.Parallel()

	if got := (UserScore{}).Accuracy(); got != 0 {
		t.Fatalf("expected 0 accuracy without graded picks, got %v", got)
	}
	if got := (UserScore{Correct: 1, Graded: 4}).Accuracy(); got != 25 {
		t.Fatalf("expected 25, got %v", got)
	}
}
